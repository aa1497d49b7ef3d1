package scheduler

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeRecalculator struct {
	calls int
	err   error
}

func (f *fakeRecalculator) RecalculateTiers(ctx context.Context) (int64, error) {
	f.calls++
	return 3, f.err
}

func TestScheduleTierRecalculation(t *testing.T) {
	s, err := New(zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	defer func() { _ = s.Stop() }()

	if err := s.ScheduleTierRecalculation("0 4 * * *", &fakeRecalculator{}); err != nil {
		t.Fatalf("ScheduleTierRecalculation() error = %v", err)
	}
	if err := s.ScheduleTierRecalculation("not a cron", &fakeRecalculator{}); err == nil {
		t.Fatal("expected invalid cron expression to be rejected")
	}
}

func TestRunTierRecalculation(t *testing.T) {
	ok := &fakeRecalculator{}
	RunTierRecalculation(context.Background(), ok, zap.NewNop())
	if ok.calls != 1 {
		t.Fatalf("calls = %d, want 1", ok.calls)
	}

	failing := &fakeRecalculator{err: errors.New("db down")}
	RunTierRecalculation(context.Background(), failing, zap.NewNop())
	if failing.calls != 1 {
		t.Fatalf("calls = %d, want 1", failing.calls)
	}
}
