package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		valid    bool
	}{
		{"0 3 * * *", true},
		{"*/15 * * * *", true},
		{"@every 5s", true},
		{"@daily", true},
		{"", false},
		{"0 3 * *", false},
		{"sometimes", false},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateSchedule(tt.schedule)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNextRunTime(t *testing.T) {
	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	next, err := NextRunTime("0 3 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC), next)

	_, err = NextRunTime("bogus", from)
	assert.Error(t, err)
}

type fakeCleanupEnqueuer struct {
	mu    sync.Mutex
	calls []int
}

func (f *fakeCleanupEnqueuer) EnqueueAuditCleanup(retentionDays int) error {
	f.mu.Lock()
	f.calls = append(f.calls, retentionDays)
	f.mu.Unlock()
	return nil
}

func (f *fakeCleanupEnqueuer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestAuditCleanupScheduler(t *testing.T) {
	enqueuer := &fakeCleanupEnqueuer{}
	s := NewAuditCleanupScheduler(enqueuer, "@every 1s", 14)

	s.RunNow()
	require.Equal(t, 1, enqueuer.count())
	assert.Equal(t, 14, enqueuer.calls[0])

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))

	assert.Eventually(t, func() bool { return enqueuer.count() >= 2 }, 5*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestAuditCleanupScheduler_InvalidSchedule(t *testing.T) {
	s := NewAuditCleanupScheduler(&fakeCleanupEnqueuer{}, "never", 30)
	assert.Error(t, s.Start(context.Background()))
}
