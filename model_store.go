// FILE: model_store.go
// Package main – Persisted training artifacts.
//
// Training writes two JSON files into the artifact directory:
//   • scaler.json – column order + per-column (min, max)
//   • model.json  – backend kind, window shape, run id and the backend state
//
// Writes go to a temp file and are renamed into place so a crashed run never
// leaves a half-written artifact. Loading dispatches on the stored kind.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	scalerFile = "scaler.json"
	modelFile  = "model.json"
)

// ModelArtifact is the on-disk envelope around a backend's state.
type ModelArtifact struct {
	Kind      string          `json:"kind"`
	RunID     string          `json:"run_id"`
	TrainedAt time.Time       `json:"trained_at"`
	Window    int             `json:"window"`
	Features  []string        `json:"features"`
	State     json.RawMessage `json:"state"`
}

// Artifacts bundles what a decision needs from training. Treat as read-only.
type Artifacts struct {
	Scaler ScalerParams
	Model  Forecaster
	Meta   ModelArtifact
}

func writeJSONAtomic(path string, v any) error {
	bs, err := json.MarshalIndent(v, "", " ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, bs, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// SaveArtifacts persists the scaler and model under dir.
func SaveArtifacts(dir string, p ScalerParams, f Forecaster, runID string, window int) error {
	if err := writeJSONAtomic(filepath.Join(dir, scalerFile), p); err != nil {
		return fmt.Errorf("save scaler: %w", err)
	}
	state, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	art := ModelArtifact{
		Kind:      f.Kind(),
		RunID:     runID,
		TrainedAt: time.Now().UTC(),
		Window:    window,
		Features:  append([]string(nil), p.Columns...),
		State:     state,
	}
	if err := writeJSONAtomic(filepath.Join(dir, modelFile), art); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	return nil
}

// LoadArtifacts reads what SaveArtifacts wrote.
func LoadArtifacts(dir string) (*Artifacts, error) {
	var p ScalerParams
	bs, err := os.ReadFile(filepath.Join(dir, scalerFile))
	if err != nil {
		return nil, fmt.Errorf("load scaler: %w", err)
	}
	if err := json.Unmarshal(bs, &p); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	if len(p.Columns) != len(p.Min) || len(p.Min) != len(p.Max) {
		return nil, &SchemaError{Field: scalerFile, Reason: "columns, min and max lengths differ"}
	}

	var art ModelArtifact
	bs, err = os.ReadFile(filepath.Join(dir, modelFile))
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if err := json.Unmarshal(bs, &art); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	f, err := NewForecaster(art.Kind, art.Window, len(art.Features))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(art.State, f); err != nil {
		return nil, fmt.Errorf("decode %s state: %w", art.Kind, err)
	}
	if len(art.Features) != p.Width() {
		return nil, &SchemaError{Field: modelFile, Reason: fmt.Sprintf("model has %d features, scaler %d", len(art.Features), p.Width())}
	}
	return &Artifacts{Scaler: p, Model: f, Meta: art}, nil
}
