package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingWarmer struct {
	mu      sync.Mutex
	seasons []int
	fail    map[int]bool
}

func (r *recordingWarmer) Warm(_ context.Context, season int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seasons = append(r.seasons, season)
	if r.fail[season] {
		return errors.New("upstream down")
	}
	return nil
}

func (r *recordingWarmer) warmed() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.seasons...)
}

func TestRunWarmsEverySeasonInOrder(t *testing.T) {
	w := &recordingWarmer{fail: map[int]bool{2022: true}}
	s := New([]int{2021, 2022, 2023}, time.Hour, w, zap.NewNop())

	s.run()

	assert.Equal(t, []int{2021, 2022, 2023}, w.warmed())
}

func TestStartRunsImmediately(t *testing.T) {
	w := &recordingWarmer{}
	s := New([]int{2023}, time.Hour, w, zap.NewNop())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return len(w.warmed()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestStartWithoutSeasons(t *testing.T) {
	w := &recordingWarmer{}
	s := New(nil, time.Hour, w, zap.NewNop())

	require.NoError(t, s.Start())
	s.Stop()

	assert.Empty(t, w.warmed())
}
