// Package registry unions all per-source NormalizedSymbols,
// deterministically assigns 16-bit ids by sorted canonical name, and builds
// the reverse map (see DESIGN.md on why sorted-name rather than
// arrival-order assignment was chosen).
package registry

import (
	"sort"

	"pairdiscovery/logger"
	"pairdiscovery/model"
)

type builder struct {
	name        string
	sourceNames [model.NumSources]*string
	attributes  [model.NumSources]model.Attributes
}

// Build consumes the eight (possibly empty) per-source NormalizedSymbol
// slices, keyed by SourceId, and emits a Registry plus the count of
// distinct canonical names truncated by the MaxSymbols overflow policy.
func Build(perSource [model.NumSources][]model.NormalizedSymbol) (*model.Registry, int) {
	log := logger.GetLogger().WithComponent("registry")

	builders := make(map[string]*builder)
	order := make([]string, 0)

	for _, source := range model.AllSources() {
		seen := make(map[string]bool)
		for _, sym := range perSource[source] {
			if seen[sym.CanonicalName] {
				log.WithFields(logger.Fields{"source": source.String(), "name": sym.CanonicalName}).
					Warn("duplicate (source, canonical_name) pair, keeping first")
				continue
			}
			seen[sym.CanonicalName] = true

			b, ok := builders[sym.CanonicalName]
			if !ok {
				b = &builder{name: sym.CanonicalName}
				builders[sym.CanonicalName] = b
				order = append(order, sym.CanonicalName)
			}
			exchangeSymbol := sym.ExchangeSymbol
			b.sourceNames[source] = &exchangeSymbol
			b.attributes[source] = sym.Attributes
		}
	}

	sort.Strings(order)

	truncated := 0
	if len(order) > model.MaxSymbols {
		truncated = len(order) - model.MaxSymbols
		log.WithFields(logger.Fields{"total": len(order), "kept": model.MaxSymbols, "truncated": truncated}).
			Warn("registry overflow: truncating high end of sorted canonical names")
		order = order[:model.MaxSymbols]
	}

	reg := model.NewRegistry()
	for _, name := range order {
		b := builders[name]
		reg.AddRecord(model.SymbolRecord{
			CanonicalName: b.name,
			SourceNames:   b.sourceNames,
			Attributes:    b.attributes,
		})
	}

	return reg, truncated
}
