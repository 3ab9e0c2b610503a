package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// WriterEmitter writes reports as JSON lines to an io.Writer.
type WriterEmitter struct {
	enc *json.Encoder
}

// NewWriterEmitter creates a JSON line emitter.
func NewWriterEmitter(w io.Writer) *WriterEmitter {
	return &WriterEmitter{enc: json.NewEncoder(w)}
}

// Emit writes one report as a single JSON line.
func (e *WriterEmitter) Emit(ctx context.Context, report Report) error {
	if err := e.enc.Encode(report); err != nil {
		return fmt.Errorf("encoding report for %s: %w", report.Kind, err)
	}
	return nil
}

// Close is a no-op; the writer's lifetime belongs to the caller.
func (e *WriterEmitter) Close() error {
	return nil
}
