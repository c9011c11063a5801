package jobmgr

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) report(s string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, s)
	r.mu.Unlock()
}

func (r *recorder) has(s string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m == s {
			return true
		}
	}
	return false
}

func TestAfterRunsOnce(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.report)
	var runs atomic.Int32

	require.NoError(t, m.After("job", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}))
	assert.Equal(t, []string{"job"}, m.List())

	require.Eventually(t, func() bool { return rec.has("done:job") }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	assert.Empty(t, m.List())
	assert.Equal(t, "No jobs are running.", m.Status())
}

func TestDuplicateNameRejected(t *testing.T) {
	m := NewManager(nil)
	require.NoError(t, m.After("x", time.Minute, func(context.Context) error { return nil }))
	defer m.StopAll()

	assert.Error(t, m.After("x", time.Minute, func(context.Context) error { return nil }))
	assert.Equal(t, "Running jobs: x", m.Status())
}

func TestStopCancelsBeforeRun(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.report)
	var runs atomic.Int32

	require.NoError(t, m.After("x", 50*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}))
	require.NoError(t, m.Stop("x"))
	assert.Error(t, m.Stop("x"))

	require.Eventually(t, func() bool { return rec.has("cancelled:x") }, time.Second, 5*time.Millisecond)
	time.Sleep(70 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}

func TestErrorIsReported(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.report)

	require.NoError(t, m.StartAsync("x", func(context.Context) error { return errors.New("nope") }))
	require.Eventually(t, func() bool { return rec.has("error:x:nope") }, time.Second, 5*time.Millisecond)
}

func TestStopAll(t *testing.T) {
	m := NewManager(nil)
	for _, name := range []string{"b", "a"} {
		require.NoError(t, m.After(name, time.Minute, func(context.Context) error { return nil }))
	}
	assert.Equal(t, []string{"a", "b"}, m.List())

	m.StopAll()
	assert.Empty(t, m.List())
}
