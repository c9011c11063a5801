package handler

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/platform"
)

// askCommand registers "ask", which replies "?" and arms aw.
func askCommand(t *testing.T, core *Core, aw func() *cmd.Await) {
	t.Helper()
	require.NoError(t, core.Commands.Add(cmd.NewCommand("ask", "",
		func(context.Context, *cmd.Invocation) (cmd.Result, error) {
			return &cmd.Response{Content: "?", Options: cmd.Options{Awaits: []*cmd.Await{aw()}}}, nil
		},
	)))
}

func isYes(m *platform.Message) bool { return m.Content == "yes" }

func TestAwaitOneTimeClearsOnMismatch(t *testing.T) {
	core, h, _ := newHandler(t, Options{})
	var calls atomic.Int32
	askCommand(t, core, func() *cmd.Await {
		return &cmd.Await{OneTime: true, Trigger: isYes, Action: func(context.Context, *cmd.Invocation) (cmd.Result, error) {
			calls.Add(1)
			return cmd.Text("thanks"), nil
		}}
	})
	ctx := context.Background()

	_, err := h.Handle(ctx, message("u", "!ask"))
	require.NoError(t, err)
	assert.Equal(t, 1, core.Awaits.Len())

	res, err := h.Handle(ctx, message("u", "no"))
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, 0, core.Awaits.Len())

	res, err = h.Handle(ctx, message("u", "yes"))
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, int32(0), calls.Load())
}

func TestAwaitConsumedOnce(t *testing.T) {
	core, h, _ := newHandler(t, Options{})
	var trigger *platform.Message
	askCommand(t, core, func() *cmd.Await {
		return &cmd.Await{Trigger: isYes, Action: func(_ context.Context, inv *cmd.Invocation) (cmd.Result, error) {
			trigger = inv.TriggerResponse.OrEmpty()
			return cmd.Text("thanks"), nil
		}}
	})
	ctx := context.Background()

	asked, err := h.Handle(ctx, message("u", "!ask"))
	require.NoError(t, err)

	// Other users and channels do not reach the await.
	other := message("someone", "yes")
	res, err := h.Handle(ctx, other)
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = h.Handle(ctx, message("u", "yes"))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "thanks", res.Responses[0].Message.Content)
	require.NotNil(t, trigger)
	assert.Equal(t, asked.Responses[0].Message.ID, trigger.ID)
	assert.Equal(t, 0, core.Awaits.Len())

	res, err = h.Handle(ctx, message("u", "yes"))
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestAwaitRefreshOnUse(t *testing.T) {
	core, h, _ := newHandler(t, Options{})
	var calls atomic.Int32
	askCommand(t, core, func() *cmd.Await {
		return &cmd.Await{RefreshOnUse: true, Action: func(context.Context, *cmd.Invocation) (cmd.Result, error) {
			calls.Add(1)
			return cmd.Text("again"), nil
		}}
	})
	ctx := context.Background()

	_, err := h.Handle(ctx, message("u", "!ask"))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		res, err := h.Handle(ctx, message("u", "anything"))
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, 1, core.Awaits.Len())
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestAwaitChainReplacesItself(t *testing.T) {
	core, h, _ := newHandler(t, Options{})
	var step atomic.Int32
	var next func() *cmd.Await
	next = func() *cmd.Await {
		return &cmd.Await{Action: func(context.Context, *cmd.Invocation) (cmd.Result, error) {
			step.Add(1)
			return &cmd.Response{Content: "next", Options: cmd.Options{Awaits: []*cmd.Await{next()}}}, nil
		}}
	}
	askCommand(t, core, next)
	ctx := context.Background()

	_, err := h.Handle(ctx, message("u", "!ask"))
	require.NoError(t, err)
	first := core.Awaits.Lookup(cmd.AwaitKey{ChannelID: "c", UserID: "u"})
	require.NotNil(t, first)

	_, err = h.Handle(ctx, message("u", "one"))
	require.NoError(t, err)

	second := core.Awaits.Lookup(cmd.AwaitKey{ChannelID: "c", UserID: "u"})
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
	assert.Equal(t, cmd.AwaitCleared, first.State())
	assert.Equal(t, cmd.AwaitArmed, second.State())
	assert.Equal(t, int32(1), step.Load())
}

func TestAwaitRequirePrefixAndShift(t *testing.T) {
	core, h, _ := newHandler(t, Options{})
	var got string
	askCommand(t, core, func() *cmd.Await {
		return &cmd.Await{
			RequirePrefix: true,
			Shift:         1,
			Args:          []cmd.Arg{{Name: "answer", Mandatory: true}},
			Action: func(_ context.Context, inv *cmd.Invocation) (cmd.Result, error) {
				got = inv.Args.String(0)
				return nil, nil
			},
		}
	})
	ctx := context.Background()

	_, err := h.Handle(ctx, message("u", "!ask"))
	require.NoError(t, err)

	// Without the prefix the message falls through.
	res, err := h.Handle(ctx, message("u", "answer blue"))
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, 1, core.Awaits.Len())

	_, err = h.Handle(ctx, message("u", "!answer"))
	assert.True(t, cmd.IsKind(err, cmd.KindArguments))
	assert.Equal(t, 1, core.Awaits.Len())

	_, err = h.Handle(ctx, message("u", "!answer light blue"))
	require.NoError(t, err)
	assert.Equal(t, "light blue", got)
	assert.Equal(t, 0, core.Awaits.Len())
}

func TestAwaitCustomTarget(t *testing.T) {
	core, h, _ := newHandler(t, Options{})
	askCommand(t, core, func() *cmd.Await {
		return &cmd.Await{ChannelID: "elsewhere", UserID: "friend", Action: text("hi friend")}
	})
	ctx := context.Background()

	_, err := h.Handle(ctx, message("u", "!ask"))
	require.NoError(t, err)

	res, err := h.Handle(ctx, message("u", "hello"))
	require.NoError(t, err)
	assert.Nil(t, res)

	m := message("friend", "hello")
	m.ChannelID = "elsewhere"
	res, err = h.Handle(ctx, m)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "elsewhere", res.Responses[0].ChannelID)
}

func TestAwaitNotArmedWhenDeliveryFails(t *testing.T) {
	core, h, fc := newHandler(t, Options{})
	fc.channels["c"] = &platform.ChannelInfo{ID: "c", Text: true, CanSend: false}
	askCommand(t, core, func() *cmd.Await { return &cmd.Await{Action: text("x")} })

	res, err := h.Handle(context.Background(), message("u", "!ask"))
	require.NoError(t, err)
	assert.True(t, IsResponseKind(res.Responses[0].Err, KindPermission))
	assert.Equal(t, 0, core.Awaits.Len())
}

func TestCloseClearsAwaits(t *testing.T) {
	core, h, _ := newHandler(t, Options{})
	var aw *cmd.Await
	askCommand(t, core, func() *cmd.Await {
		aw = &cmd.Await{Action: text("x")}
		return aw
	})

	_, err := h.Handle(context.Background(), message("u", "!ask"))
	require.NoError(t, err)
	require.Equal(t, cmd.AwaitArmed, aw.State())

	core.Close()
	assert.Equal(t, cmd.AwaitCleared, aw.State())
	assert.Equal(t, 0, core.Awaits.Len())
}
