package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	appconfig "pairdiscovery/config"
	"pairdiscovery/logger"
	"pairdiscovery/model"
)

// Artifacts names the files Publish writes under the configured generated
// directory.
const (
	SymbolsBinName    = "symbols.bin"
	DirectionsBinName = "directions.bin"
	MetadataName      = "metadata.json"
	SymbolsTextName   = "symbols.txt"
	DirectionsTextName = "directions.txt"
	ValidationReportName = "validation_report.txt"
)

// SourceStats is one source's contribution to metadata.json.
type SourceStats struct {
	FetchSucceeded bool `json:"fetch_succeeded"`
	Listed         int  `json:"listed"`
	ValidationRan  bool `json:"validation_ran"`
	Valid          int  `json:"valid"`
	Invalid        int  `json:"invalid"`
}

// DirectionStats is one direction's contribution to metadata.json.
type DirectionStats struct {
	Id          int    `json:"id"`
	Name        string `json:"name"`
	SymbolCount int    `json:"symbol_count"`
}

// Metadata is the run's metadata.json payload: nested per-source stats plus
// a run correlation id.
type Metadata struct {
	RunId         string                 `json:"run_id"`
	Timestamp     string                 `json:"timestamp"`
	ConfigVersion int64                  `json:"config_version"`
	SymbolCount   int                    `json:"symbol_count"`
	Sources       map[string]SourceStats `json:"sources"`
	Directions    []DirectionStats       `json:"directions"`
}

// Report bundles everything Publish needs to serialize a completed run.
type Report struct {
	ConfigVersion int64
	Registry      *model.Registry
	Directions    []model.DirectionRecord
	FetchResult   *FetchSummary
	Validation    [model.NumSources]*model.ValidationResult
}

// FetchSummary is the subset of fetcher.Result Publish needs, passed
// separately so this package does not import fetcher (keeping the
// dependency direction pipeline -> {fetcher,validator,emitter}).
type FetchSummary struct {
	Succeeded [model.NumSources]bool
	Listed    [model.NumSources]int
}

// Publish serializes and atomically installs symbols.bin/directions.bin/
// metadata.json into dir, writes best-effort text mirrors alongside them,
// and optionally mirrors everything to S3.
func Publish(ctx context.Context, dir string, cfg appconfig.S3MirrorConfig, r Report) error {
	log := logger.GetLogger().WithComponent("emitter")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating generated dir: %w", err)
	}

	symbolsBin := EncodeSymbols(r.Registry)
	directionsBin := EncodeDirections(r.Directions)
	metadata := buildMetadata(r)
	metadataJSON, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata.json: %w", err)
	}

	atomicFiles := map[string][]byte{
		SymbolsBinName:    symbolsBin,
		DirectionsBinName: directionsBin,
		MetadataName:      metadataJSON,
	}
	for name, data := range atomicFiles {
		if err := atomicWrite(filepath.Join(dir, name), data); err != nil {
			return fmt.Errorf("publishing %s: %w", name, err)
		}
	}
	log.WithFields(logger.Fields{"dir": dir, "run_id": metadata.RunId}).Info("published pair discovery artifacts")

	textFiles := map[string][]byte{
		SymbolsTextName:      symbolsText(r.Registry),
		DirectionsTextName:   directionsText(r.Directions),
		ValidationReportName: validationReportText(r.Validation),
	}
	for name, data := range textFiles {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.WithError(err).WithFields(logger.Fields{"file": name}).Warn("failed to write best-effort text mirror")
		}
	}

	all := make(map[string][]byte, len(atomicFiles)+len(textFiles))
	for k, v := range atomicFiles {
		all[k] = v
	}
	for k, v := range textFiles {
		all[k] = v
	}
	mirrorToS3(ctx, cfg, all)

	return nil
}

func buildMetadata(r Report) Metadata {
	sources := make(map[string]SourceStats, model.NumSources)
	for _, s := range model.AllSources() {
		st := SourceStats{}
		if r.FetchResult != nil {
			st.FetchSucceeded = r.FetchResult.Succeeded[s]
			st.Listed = r.FetchResult.Listed[s]
		}
		if vr := r.Validation[s]; vr != nil {
			st.ValidationRan = true
			st.Valid = len(vr.Valid)
			st.Invalid = len(vr.Invalid)
		}
		sources[s.String()] = st
	}

	directions := make([]DirectionStats, 0, len(r.Directions))
	for _, d := range r.Directions {
		directions = append(directions, DirectionStats{Id: d.Id, Name: d.Name, SymbolCount: len(d.Symbols)})
	}

	return Metadata{
		RunId:         uuid.NewString(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		ConfigVersion: r.ConfigVersion,
		SymbolCount:   len(r.Registry.Records),
		Sources:       sources,
		Directions:    directions,
	}
}

// atomicWrite writes to a temp file in the same directory as path, fsyncs
// it, renames over path, then fsyncs the containing directory so the rename
// itself is durable.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("fsyncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}

	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
