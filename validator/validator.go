package validator

import (
	"context"
	"sync"

	"pairdiscovery/config"
	"pairdiscovery/logger"
	"pairdiscovery/metrics"
	"pairdiscovery/model"
)

// ErrValidationFailed is returned when fewer than minSources sources
// produced any validation output at all.
type ErrValidationFailed struct {
	Successes int
	Required  int
}

func (e *ErrValidationFailed) Error() string { return "validation failed: insufficient sources" }

// ValidateAll runs live validation across every source with a populated
// registry slot, concurrently (one goroutine per source), and returns the
// eight ValidationResults.
func ValidateAll(ctx context.Context, reg *model.Registry, exch *config.ExchangesConfig, minSources int, valCfg config.ValidationConfig) ([model.NumSources]*model.ValidationResult, error) {
	log := logger.GetLogger().WithComponent("validator")
	bySource := exch.BySource()

	var results [model.NumSources]*model.ValidationResult
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, source := range model.AllSources() {
		source := source
		entry, hasConfig := bySource[source]
		tasks := tasksForSource(reg, source)

		wg.Add(1)
		go func() {
			defer wg.Done()

			if !hasConfig || entry.WsURL == "" || len(tasks) == 0 {
				mu.Lock()
				results[source] = model.NewValidationResult(source)
				mu.Unlock()
				return
			}

			batchSize := batchSizeFor(source, entry.BatchSize)
			var r *model.ValidationResult
			if source == model.BybitSpot || source == model.BybitFutures {
				r = runBybitSource(ctx, source, tasks, entry.WsURL, valCfg, batchSize)
			} else {
				r = runSource(ctx, source, tasks, sourceFor(source, entry.WsURL), valCfg, batchSize)
			}

			invalidByReason := map[string]int{}
			for _, ip := range r.Invalid {
				invalidByReason[ip.Reason.String()]++
			}
			metrics.AddValidationResult(source.String(), len(r.Valid), invalidByReason)

			mu.Lock()
			results[source] = r
			mu.Unlock()
		}()
	}
	wg.Wait()

	produced := 0
	for _, r := range results {
		if r != nil && r.ProducedOutput() {
			produced++
		}
	}

	if produced < minSources {
		return results, &ErrValidationFailed{Successes: produced, Required: minSources}
	}

	log.WithFields(logger.Fields{"sources_with_output": produced}).Info("validation pass complete")
	return results, nil
}

func sourceFor(source model.SourceId, url string) wsSource {
	switch source {
	case model.BinanceSpot, model.BinanceFutures:
		return binanceSource(url)
	case model.OkxSpot, model.OkxFutures:
		return okxSource(url)
	case model.MexcSpot:
		return mexcSource(url, false)
	case model.MexcFutures:
		return mexcSource(url, true)
	default:
		return wsSource{URL: url}
	}
}

// ApplyValidation prunes reg: clears every source slot whose validation
// outcome was invalid, then compacts the registry so any record left with
// zero populated slots is dropped entirely ("slot-clear, retain record").
// Returns the old-id to new-id remap produced by Compact; directions.Rebuild
// does not need it, since it recomputes from the compacted registry.
func ApplyValidation(reg *model.Registry, results [model.NumSources]*model.ValidationResult) map[uint16]uint16 {
	for _, source := range model.AllSources() {
		r := results[source]
		if r == nil {
			continue
		}
		for _, rec := range reg.Records {
			if !rec.Populated(source) {
				continue
			}
			if !r.IsValid(rec.Id) {
				reg.ClearSlot(rec.Id, source)
			}
		}
	}
	return reg.Compact()
}
