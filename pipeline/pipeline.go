// Package pipeline sequences inventory fetch, normalization, registry
// build, direction build, live validation, and publication end to end.
package pipeline

import (
	"context"

	"pairdiscovery/config"
	"pairdiscovery/directions"
	"pairdiscovery/emitter"
	"pairdiscovery/fetcher"
	"pairdiscovery/logger"
	"pairdiscovery/model"
	"pairdiscovery/normalizer"
	"pairdiscovery/registry"
	"pairdiscovery/validator"
)

// ExitCode maps a Run outcome to the process exit code.
type ExitCode int

const (
	ExitSuccess             ExitCode = 0
	ExitIOOrConfigError     ExitCode = 1
	ExitInsufficientSources ExitCode = 2
	ExitValidationFailed    ExitCode = 3
)

// Config bundles everything one run needs, loaded by cmd/pairdiscovery.
type Config struct {
	App           *config.AppConfig
	Exchanges     *config.ExchangesConfig
	Directions    []model.DirectionConfig
	ConfigVersion int64
	OutputDir     string
}

// Run executes every stage in sequence and returns the exit code to use.
func Run(ctx context.Context, cfg Config) ExitCode {
	log := logger.GetLogger().WithComponent("pipeline")
	minSources := cfg.App.General.MinSuccessfulSources

	log.Info("starting inventory fetch")
	fetchResult, err := fetcher.FetchAll(ctx, cfg.Exchanges, minSources, cfg.App.Retry)
	if err != nil {
		log.WithError(err).Error("fetch aborted: insufficient sources")
		return ExitInsufficientSources
	}

	log.Info("starting normalization")
	var perSource [model.NumSources][]model.NormalizedSymbol
	var listed [model.NumSources]int
	rejected := 0
	for _, source := range model.AllSources() {
		for _, raw := range fetchResult.PerSource[source] {
			ns, err := normalizer.Normalize(raw)
			if err != nil {
				rejected++
				continue
			}
			perSource[source] = append(perSource[source], ns)
		}
		listed[source] = len(perSource[source])
	}
	log.WithFields(logger.Fields{"rejected": rejected}).Info("normalization complete")

	log.Info("starting registry build")
	reg, truncated := registry.Build(perSource)
	if truncated > 0 {
		log.WithFields(logger.Fields{"truncated": truncated}).Warn("registry truncated at MaxSymbols")
	}
	if err := reg.Validate(); err != nil {
		log.WithError(err).Error("registry failed invariant validation")
		return ExitIOOrConfigError
	}

	log.Info("starting direction build")
	dirRecords := directions.Build(reg, cfg.Directions)

	log.Info("starting live validation")
	valResults, err := validator.ValidateAll(ctx, reg, cfg.Exchanges, minSources, cfg.App.Validation)
	if err != nil {
		log.WithError(err).Error("validation aborted: insufficient sources produced output")
		return ExitValidationFailed
	}

	// Rebuild reuses reg's post-compaction slot presence directly, so the
	// id remap ApplyValidation returns isn't needed here.
	validator.ApplyValidation(reg, valResults)
	dirRecords = directions.Rebuild(reg, dirRecords)

	log.Info("starting artifact publication")
	report := emitter.Report{
		ConfigVersion: cfg.ConfigVersion,
		Registry:      reg,
		Directions:    dirRecords,
		FetchResult: &emitter.FetchSummary{
			Succeeded: fetchResult.Succeeded,
			Listed:    listed,
		},
		Validation: valResults,
	}
	if err := emitter.Publish(ctx, cfg.OutputDir, cfg.App.S3, report); err != nil {
		log.WithError(err).Error("artifact publication failed")
		return ExitIOOrConfigError
	}

	if cfg.App.Monitoring.CloudWatchEnabled {
		publishCloudWatch(ctx, fetchResult, valResults)
	}

	log.WithFields(logger.Fields{
		"symbols":    len(reg.Records),
		"directions": len(dirRecords),
	}).Info("pair discovery run complete")
	return ExitSuccess
}

func publishCloudWatch(ctx context.Context, fr *fetcher.Result, valResults [model.NumSources]*model.ValidationResult) {
	fetchOK := make(map[string]bool, model.NumSources)
	validCounts := make(map[string]int, model.NumSources)
	invalidCounts := make(map[string]int, model.NumSources)
	for _, s := range model.AllSources() {
		fetchOK[s.String()] = fr.Succeeded[s]
		if r := valResults[s]; r != nil {
			validCounts[s.String()] = len(r.Valid)
			invalidCounts[s.String()] = len(r.Invalid)
		}
	}
	logger.PublishRunMetrics(ctx, fetchOK, validCounts, invalidCounts)
}
