// Package telemetry emits OpenTelemetry spans for each phase of a
// generator run (scan, extract, load, index, diff, assemble, write),
// tagged with a run ID so a single invocation's phases can be correlated
// in a trace backend.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry records one span per pipeline phase.
type Telemetry struct {
	tracer trace.Tracer
	runID  string
}

// New creates a Telemetry instance tagged with a fresh run ID.
func New() *Telemetry {
	return &Telemetry{
		tracer: otel.Tracer("makemigrations"),
		runID:  uuid.NewString(),
	}
}

// RunID returns the identifier stamped onto every span this instance
// records.
func (t *Telemetry) RunID() string { return t.runID }

// PhaseEvent describes one completed pipeline phase.
type PhaseEvent struct {
	Phase     string
	AppName   string
	ItemCount int
	Success   bool
	Err       error
	StartTime time.Time
	EndTime   time.Time
}

// RecordPhase records a complete phase's span.
func (t *Telemetry) RecordPhase(ctx context.Context, event PhaseEvent) {
	_, span := t.tracer.Start(ctx, event.Phase, trace.WithTimestamp(event.StartTime))
	defer span.End(trace.WithTimestamp(event.EndTime))

	span.SetAttributes(
		attribute.String("run.id", t.runID),
		attribute.String("phase.app_name", event.AppName),
		attribute.Int("phase.item_count", event.ItemCount),
		attribute.Bool("phase.success", event.Success),
	)
	if event.Err != nil {
		span.SetAttributes(attribute.String("phase.error", event.Err.Error()))
	}
}

// Phase runs fn, timing it and recording a PhaseEvent for its outcome. fn
// returns the number of items the phase produced (models scanned,
// operations diffed, files written), reported as phase.item_count.
func (t *Telemetry) Phase(ctx context.Context, name, appName string, fn func() (int, error)) error {
	start := time.Now()
	count, err := fn()
	t.RecordPhase(ctx, PhaseEvent{
		Phase:     name,
		AppName:   appName,
		ItemCount: count,
		Success:   err == nil,
		Err:       err,
		StartTime: start,
		EndTime:   time.Now(),
	})
	return err
}
