package telemetry

import (
	"context"
	"errors"
	"testing"
)

func TestNewAssignsDistinctRunIDs(t *testing.T) {
	a := New()
	b := New()
	if a.RunID() == "" {
		t.Fatal("RunID() is empty")
	}
	if a.RunID() == b.RunID() {
		t.Fatal("two Telemetry instances got the same run ID")
	}
}

func TestPhaseReturnsUnderlyingError(t *testing.T) {
	tel := New()
	want := errors.New("scan failed")

	err := tel.Phase(context.Background(), "scan", "blog", func() (int, error) {
		return 0, want
	})
	if !errors.Is(err, want) {
		t.Fatalf("Phase() error = %v, want %v", err, want)
	}
}

func TestPhaseReturnsNilOnSuccess(t *testing.T) {
	tel := New()

	err := tel.Phase(context.Background(), "extract", "blog", func() (int, error) {
		return 3, nil
	})
	if err != nil {
		t.Fatalf("Phase() error = %v, want nil", err)
	}
}

func TestRecordPhaseDoesNotPanicOnError(t *testing.T) {
	tel := New()
	tel.RecordPhase(context.Background(), PhaseEvent{
		Phase:     "diff",
		AppName:   "blog",
		ItemCount: 0,
		Success:   false,
		Err:       errors.New("boom"),
	})
}
