package middleware

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/botframe/internal/storage"
	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/handler"
	"github.com/keshon/botframe/pkg/platform"
)

func newStore(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.New(filepath.Join(t.TempDir(), "db.json"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func invocation(unit, guild string) *cmd.Invocation {
	return &cmd.Invocation{
		Unit:    &cmd.Info{ID: unit},
		Message: &platform.Message{ChannelID: "c", GuildID: guild, AuthorID: "u"},
		Args:    cmd.Args{{Text: "a"}, {}, {Text: "b"}},
	}
}

func ok(context.Context, *cmd.Invocation) (cmd.Result, error) { return cmd.Text("ok"), nil }

func TestRecover(t *testing.T) {
	a := cmd.Apply(func(context.Context, *cmd.Invocation) (cmd.Result, error) {
		panic("kaboom")
	}, WithRecover(zerolog.Nop()))

	_, err := a(context.Background(), invocation("x", "g"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestCommandLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	res, err := cmd.Apply(ok, WithCommandLogger(log))(context.Background(), invocation("ping", "g"))
	require.NoError(t, err)
	assert.Equal(t, cmd.Text("ok"), res)
	assert.Contains(t, buf.String(), `"unit":"ping"`)
	assert.Contains(t, buf.String(), `"user":"u"`)
}

func TestHistory(t *testing.T) {
	store := newStore(t)
	a := cmd.Apply(ok, WithHistory(store, zerolog.Nop()))

	_, err := a(context.Background(), invocation("echo", "g"))
	require.NoError(t, err)
	_, err = a(context.Background(), invocation(handler.AwaitUnitID, "g"))
	require.NoError(t, err)

	h, err := store.History("g")
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, "echo", h[0].Command)
	assert.Equal(t, "a b", h[0].Args)
}

func TestDisabledCheck(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.DisableUnit("g", "poll"))
	a := cmd.Apply(ok, WithDisabledCheck(store))
	ctx := context.Background()

	_, err := a(ctx, invocation("poll", "g"))
	assert.True(t, cmd.IsKind(err, cmd.KindDisabled))

	_, err = a(ctx, invocation("poll", "other"))
	assert.NoError(t, err)
	_, err = a(ctx, invocation("poll", ""))
	assert.NoError(t, err)
	_, err = a(ctx, invocation("echo", "g"))
	assert.NoError(t, err)
}
