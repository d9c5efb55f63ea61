package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakePurger struct {
	mu    sync.Mutex
	hours []int
	err   error
}

func (f *fakePurger) PurgeExpired(ctx context.Context, hours int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("expected a deadline")
	}
	f.hours = append(f.hours, hours)
	return 2, f.err
}

func TestDemoPurgeJobRun(t *testing.T) {
	purger := &fakePurger{}
	NewDemoPurgeJob(purger, 12).Run()
	if len(purger.hours) != 1 || purger.hours[0] != 12 {
		t.Fatalf("expected one purge with 12 hours, got %v", purger.hours)
	}

	// Failures are logged, not raised.
	purger.err = errors.New("db down")
	NewDemoPurgeJob(purger, 1).Run()
	if len(purger.hours) != 2 {
		t.Fatalf("expected a second purge, got %v", purger.hours)
	}
}

func TestManagerRegisterJobs(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		entries  int
		wantErr  bool
	}{
		{name: "hourly", schedule: "0 0 * * * *", entries: 1},
		{name: "descriptor", schedule: "@every 30m", entries: 1},
		{name: "disabled", schedule: "", entries: 0},
		{name: "five fields", schedule: "0 * * * *", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewCronManager(NewDemoPurgeJob(&fakePurger{}, 12))
			err := m.RegisterJobs(tc.schedule)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("register: %v", err)
			}
			if m.Entries() != tc.entries {
				t.Fatalf("entries: got %d, want %d", m.Entries(), tc.entries)
			}
			m.Start()
			m.Stop()
		})
	}
}
