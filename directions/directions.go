// Package directions computes, for each configured direction, the
// intersection of instruments available on both referenced sources.
package directions

import (
	"sort"

	"pairdiscovery/model"
)

// Build produces one DirectionRecord per config, with Symbols sorted
// ascending by id. No network I/O occurs here.
func Build(reg *model.Registry, configs []model.DirectionConfig) []model.DirectionRecord {
	out := make([]model.DirectionRecord, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, model.DirectionRecord{
			Id:           cfg.Id,
			Name:         cfg.Name,
			SpotSource:   cfg.SpotSource,
			FutureSource: cfg.FutureSource,
			Symbols:      intersect(reg, cfg.SpotSource, cfg.FutureSource),
		})
	}
	return out
}

func intersect(reg *model.Registry, spot, future model.SourceId) []uint16 {
	var ids []uint16
	for _, rec := range reg.Records {
		if rec.Populated(spot) && rec.Populated(future) {
			ids = append(ids, rec.Id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Rebuild recomputes every DirectionRecord's Symbols from reg's current
// slot presence. Called after live validation has cleared invalidated slots
// and compacted the registry; by that point ClearSlot/Compact have already
// removed every invalidated or all-sources-invalid entry, so this is the
// same intersection Build uses.
func Rebuild(reg *model.Registry, records []model.DirectionRecord) []model.DirectionRecord {
	out := make([]model.DirectionRecord, len(records))
	for i, rec := range records {
		out[i] = model.DirectionRecord{
			Id:           rec.Id,
			Name:         rec.Name,
			SpotSource:   rec.SpotSource,
			FutureSource: rec.FutureSource,
			Symbols:      intersect(reg, rec.SpotSource, rec.FutureSource),
		}
	}
	return out
}
