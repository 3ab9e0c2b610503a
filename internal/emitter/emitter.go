// Package emitter defines the output interface for oswatch.
package emitter

import (
	"context"
	"time"

	"github.com/pzaremba/oswatch/types"
)

// Report is one collection result shipped downstream.
type Report struct {
	Kind        types.Kind     `json:"kind"`
	Region      string         `json:"region"`
	Revision    int64          `json:"revision"`
	CollectedAt time.Time      `json:"collected_at"`
	Records     []types.Record `json:"records"`
}

// Emitter outputs collection reports to a backend.
type Emitter interface {
	// Emit sends one report to the backend.
	Emit(ctx context.Context, report Report) error

	// Close cleans up resources.
	Close() error
}

// MultiEmitter fans out to multiple emitters.
type MultiEmitter struct {
	emitters []Emitter
}

// NewMultiEmitter creates an emitter that sends to multiple backends.
func NewMultiEmitter(emitters ...Emitter) *MultiEmitter {
	return &MultiEmitter{emitters: emitters}
}

// Emit sends to all emitters, returns first error.
func (m *MultiEmitter) Emit(ctx context.Context, report Report) error {
	for _, e := range m.emitters {
		if err := e.Emit(ctx, report); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all emitters.
func (m *MultiEmitter) Close() error {
	for _, e := range m.emitters {
		if err := e.Close(); err != nil {
			return err
		}
	}
	return nil
}
