package model

import "fmt"

// SymbolRecord is one global instrument. The id is its index in the
// Registry's Records slice. Invariant: at least one SourceNames slot is
// populated; the canonical name is consistent across all populated slots.
type SymbolRecord struct {
	Id            uint16
	CanonicalName string
	SourceNames   [NumSources]*string // original exchange symbol per source, nil = not listed
	Attributes    [NumSources]Attributes
}

// Populated reports whether source has a listing for this record.
func (r *SymbolRecord) Populated(source SourceId) bool {
	return r.SourceNames[source] != nil
}

// reverseKey identifies one (source, exchange_symbol) reverse-map entry.
type reverseKey struct {
	Source SourceId
	Symbol string
}

// Registry is the full collection produced by the registry builder and
// pruned by the validator. Invariants: ids form a contiguous range [0, N);
// the reverse map is total over populated slots; enumeration order from
// identical inputs is identical across runs.
type Registry struct {
	Records []SymbolRecord
	reverse map[reverseKey]uint16
}

// NewRegistry constructs an empty Registry ready for AddRecord.
func NewRegistry() *Registry {
	return &Registry{reverse: make(map[reverseKey]uint16)}
}

// AddRecord appends rec, assigns it rec.Id = next contiguous index, and
// indexes its populated slots in the reverse map. Callers must add records
// in final id order (ascending canonical name).
func (r *Registry) AddRecord(rec SymbolRecord) {
	rec.Id = uint16(len(r.Records))
	r.Records = append(r.Records, rec)
	r.reindex(len(r.Records) - 1)
}

func (r *Registry) reindex(idx int) {
	rec := &r.Records[idx]
	for _, s := range AllSources() {
		if sym := rec.SourceNames[s]; sym != nil {
			r.reverse[reverseKey{s, *sym}] = rec.Id
		}
	}
}

// Resolve looks up the symbol id for a (source, exchange_symbol) pair.
func (r *Registry) Resolve(source SourceId, exchangeSymbol string) (uint16, bool) {
	id, ok := r.reverse[reverseKey{source, exchangeSymbol}]
	return id, ok
}

// ClearSlot removes source's listing for id: the SourceNames/Attributes
// entry is cleared and the reverse-map entry for the cleared exchange
// symbol is removed. This is a "slot-clear, retain record" pruning policy —
// the record itself is only dropped by Compact when every slot has been
// cleared.
func (r *Registry) ClearSlot(id uint16, source SourceId) {
	rec := &r.Records[id]
	if sym := rec.SourceNames[source]; sym != nil {
		delete(r.reverse, reverseKey{source, *sym})
	}
	rec.SourceNames[source] = nil
	rec.Attributes[source] = Attributes{}
}

// Compact drops every record whose every source slot has been cleared,
// preserving the relative order and re-contiguating ids. Returns the
// mapping from old id to new id for records that survive, so callers
// holding id sets from before compaction can remap them; a record that did
// not survive has no entry.
func (r *Registry) Compact() map[uint16]uint16 {
	remap := make(map[uint16]uint16, len(r.Records))
	kept := r.Records[:0]
	newReverse := make(map[reverseKey]uint16, len(r.reverse))
	for _, rec := range r.Records {
		anyPopulated := false
		for _, s := range AllSources() {
			if rec.SourceNames[s] != nil {
				anyPopulated = true
				break
			}
		}
		if !anyPopulated {
			continue
		}
		newId := uint16(len(kept))
		remap[rec.Id] = newId
		rec.Id = newId
		kept = append(kept, rec)
		for _, s := range AllSources() {
			if sym := rec.SourceNames[s]; sym != nil {
				newReverse[reverseKey{s, *sym}] = newId
			}
		}
	}
	r.Records = kept
	r.reverse = newReverse
	return remap
}

// Validate checks every record's canonical-name invariant: non-empty, base
// differs from USDT, at least one source slot populated. Returns the first
// violation found, if any.
func (r *Registry) Validate() error {
	for _, rec := range r.Records {
		if rec.CanonicalName == "" {
			return fmt.Errorf("symbol id %d: empty canonical name", rec.Id)
		}
		if rec.CanonicalName == "USDT-USDT" {
			return fmt.Errorf("symbol id %d: base asset is USDT", rec.Id)
		}
		anyPopulated := false
		for _, s := range AllSources() {
			if rec.SourceNames[s] != nil {
				anyPopulated = true
			}
		}
		if !anyPopulated {
			return fmt.Errorf("symbol id %d (%s): no populated source slots", rec.Id, rec.CanonicalName)
		}
	}
	return nil
}
