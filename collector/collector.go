// Package collector resolves resource managers on a client holder and
// extracts flat attribute records from the raw instances they list.
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/pzaremba/oswatch/pathwalk"
	"github.com/pzaremba/oswatch/schema"
	"github.com/pzaremba/oswatch/telemetry"
	"github.com/pzaremba/oswatch/types"
)

// ResourceManager lists raw instances of one resource kind. Terminal
// objects reached through a schema's manager paths must implement it.
type ResourceManager interface {
	List(ctx context.Context) ([]any, error)
}

// ErrManagerUnavailable is returned when none of a schema's candidate
// manager paths resolve on the client holder.
var ErrManagerUnavailable = errors.New("no resource manager available")

// UpstreamError wraps a failed list call against the backing service.
// The cause is preserved unwrapped for errors.Is/As.
type UpstreamError struct {
	Kind types.Kind
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("listing %s instances: %v", e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ResolveManager walks the candidate paths in order and returns the
// first one that reaches a resource manager on holder. Candidates
// whose terminal object does not implement ResourceManager count as
// unresolved.
func ResolveManager(holder any, paths [][]string) (ResourceManager, error) {
	for _, path := range paths {
		v := pathwalk.Attr(holder, path)
		if types.IsAbsent(v) {
			continue
		}
		if mgr, ok := v.(ResourceManager); ok {
			return mgr, nil
		}
	}
	return nil, ErrManagerUnavailable
}

// Collector extracts records from a client holder per the schema
// registry.
type Collector struct {
	logger zerolog.Logger
}

// New creates a collector.
func New(logger zerolog.Logger) *Collector {
	return &Collector{logger: logger}
}

// Extract looks up the schema for kind, resolves its resource manager
// on holder, lists raw instances and extracts one flat record per
// instance, preserving list order. A failed list call aborts the run
// with no partial results; per-field absence is recorded via the
// absent sentinel.
func (c *Collector) Extract(ctx context.Context, holder any, kind types.Kind) ([]types.Record, error) {
	sch, err := schema.Lookup(kind)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.Tracer.Start(ctx, "collector.extract",
		trace.WithAttributes(attribute.String("resource.kind", string(kind))),
	)
	defer span.End()
	start := time.Now()

	mgr, err := ResolveManager(holder, sch.ManagerPaths)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resource manager unresolved")
		return nil, fmt.Errorf("resolving manager for %s: %w", kind, err)
	}

	instances, err := mgr.List(ctx)
	if err != nil {
		telemetry.ExtractionFailures.Add(ctx, 1,
			metric.WithAttributes(attribute.String("kind", string(kind))),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "list call failed")
		return nil, &UpstreamError{Kind: kind, Err: err}
	}

	records := make([]types.Record, 0, len(instances))
	for _, inst := range instances {
		records = append(records, extractRecord(sch, inst))
	}

	telemetry.RecordsExtracted.Add(ctx, int64(len(records)),
		metric.WithAttributes(attribute.String("kind", string(kind))),
	)
	telemetry.ExtractionDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("kind", string(kind))),
	)

	c.logger.Debug().
		Str("kind", string(kind)).
		Int("records", len(records)).
		Msg("extracted records")

	return records, nil
}

// extractRecord key-walks every schema attribute through the
// instance's mapping form.
func extractRecord(sch schema.Schema, inst any) types.Record {
	m := types.Normalize(inst)
	rec := make(types.Record, len(sch.Attrs))
	for name, path := range sch.Attrs {
		rec[name] = pathwalk.Value(m, path)
	}
	return rec
}
