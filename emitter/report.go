package emitter

import (
	"bytes"
	"fmt"
	"sort"

	"pairdiscovery/logger"
	"pairdiscovery/model"
)

const maxInvalidListed = 20

// symbolsText renders a tab-separated human mirror of the registry,
// sorted by id, one line per record.
func symbolsText(reg *model.Registry) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "id\tcanonical_name\tbinance_spot\tbinance_futures\tbybit_spot\tbybit_futures\tmexc_spot\tmexc_futures\tokx_spot\tokx_futures")
	for _, rec := range reg.Records {
		fmt.Fprintf(&buf, "%d\t%s", rec.Id, rec.CanonicalName)
		for _, s := range model.AllSources() {
			if sym := rec.SourceNames[s]; sym != nil {
				fmt.Fprintf(&buf, "\t%s", *sym)
			} else {
				fmt.Fprint(&buf, "\t-")
			}
		}
		fmt.Fprintln(&buf)
	}
	return buf.Bytes()
}

// directionsText renders a tab-separated human mirror of the direction
// records, one line per direction plus its member count.
func directionsText(records []model.DirectionRecord) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "id\tname\tspot_source\tfuture_source\tsymbol_count")
	for _, rec := range records {
		fmt.Fprintf(&buf, "%d\t%s\t%s\t%s\t%d\n", rec.Id, rec.Name, rec.SpotSource, rec.FutureSource, len(rec.Symbols))
	}
	return buf.Bytes()
}

// validationReportText renders the per-source valid/invalid summary,
// truncating each source's invalid listing at maxInvalidListed entries
// with an "and N more" suffix.
func validationReportText(results [model.NumSources]*model.ValidationResult) []byte {
	var buf bytes.Buffer
	for _, source := range model.AllSources() {
		r := results[source]
		if r == nil {
			fmt.Fprintf(&buf, "%s: no output\n", source)
			continue
		}
		fmt.Fprintf(&buf, "%s: %d valid, %d invalid (of %d attempted)\n", source, len(r.Valid), len(r.Invalid), r.Total)

		sorted := make([]model.InvalidPair, len(r.Invalid))
		copy(sorted, r.Invalid)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].ExchangeSymbol < sorted[j].ExchangeSymbol })

		shown := sorted
		truncated := 0
		if len(shown) > maxInvalidListed {
			truncated = len(shown) - maxInvalidListed
			shown = shown[:maxInvalidListed]
		}
		for _, ip := range shown {
			fmt.Fprintf(&buf, "  %s\t%s\n", ip.ExchangeSymbol, ip.Reason)
		}
		if truncated > 0 {
			fmt.Fprintf(&buf, "  ...and %d more\n", truncated)
		}
	}

	counters := logger.Snapshot()
	fmt.Fprintln(&buf, "recoverable errors:")
	fmt.Fprintf(&buf, "  fetch:    %d warnings, %d errors\n", counters.FetchWarns, counters.FetchErrors)
	fmt.Fprintf(&buf, "  validate: %d warnings, %d errors\n", counters.ValidateWarns, counters.ValidateErrors)
	fmt.Fprintf(&buf, "  other:    %d warnings, %d errors\n", counters.OtherWarns, counters.OtherErrors)

	return buf.Bytes()
}
