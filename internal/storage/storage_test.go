package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "datastore.json")
	s, err := New(path, zerolog.Nop())
	require.NoError(t, err)
	return s, path
}

func TestHistoryIsBounded(t *testing.T) {
	s, _ := newStorage(t)
	defer s.Close()

	for i := 0; i < commandHistoryLimit+5; i++ {
		require.NoError(t, s.AppendHistory("g1", HistoryEntry{Command: fmt.Sprintf("c%d", i%2), Datetime: time.Now()}))
	}

	h, err := s.History("g1")
	require.NoError(t, err)
	assert.Len(t, h, commandHistoryLimit)

	usage, err := s.Usage("g1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"c0": 13, "c1": 12}, usage)

	other, err := s.History("g2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestHistorySurvivesReopen(t *testing.T) {
	s, path := newStorage(t)
	require.NoError(t, s.AppendHistory("", HistoryEntry{Command: "ping", UserID: "u"}))
	require.NoError(t, s.Close())

	again, err := New(path, zerolog.Nop())
	require.NoError(t, err)
	defer again.Close()

	h, err := again.History("")
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, "ping", h[0].Command)
	assert.Equal(t, "u", h[0].UserID)
}

func TestDisableUnits(t *testing.T) {
	s, _ := newStorage(t)
	defer s.Close()

	require.NoError(t, s.DisableUnit("g", "poll"))
	require.NoError(t, s.DisableUnit("g", "echo"))
	require.NoError(t, s.DisableUnit("g", "poll"))

	list, err := s.DisabledUnits("g")
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "poll"}, list)

	off, err := s.IsUnitDisabled("g", "poll")
	require.NoError(t, err)
	assert.True(t, off)

	require.NoError(t, s.EnableUnit("g", "poll"))
	off, err = s.IsUnitDisabled("g", "poll")
	require.NoError(t, err)
	assert.False(t, off)
}

func TestStats(t *testing.T) {
	s, path := newStorage(t)
	defer s.Close()
	require.NoError(t, s.AppendHistory("g", HistoryEntry{Command: "ping"}))

	stats := s.Stats()
	assert.Equal(t, path, stats["file_path"])
	assert.Equal(t, 1, stats["keys"])
}
