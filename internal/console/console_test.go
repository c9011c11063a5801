package console

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/handler"
	"github.com/keshon/botframe/pkg/platform"
)

type lines []string

func (l *lines) Readline() (string, error) {
	if len(*l) == 0 {
		return "", io.EOF
	}
	s := (*l)[0]
	*l = (*l)[1:]
	return s, nil
}

func newConsole(t *testing.T) (*Console, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	client := NewClient(&out)
	core := handler.New(client, handler.Options{})
	t.Cleanup(core.Close)

	require.NoError(t, core.Commands.Add(
		cmd.NewCommand("ping", "", func(context.Context, *cmd.Invocation) (cmd.Result, error) {
			return cmd.Text("pong"), nil
		}),
		cmd.NewCommand("where", "", func(_ context.Context, inv *cmd.Invocation) (cmd.Result, error) {
			return cmd.Text("in " + inv.ChannelID()), nil
		}, cmd.GuildOnly()),
	))
	require.NoError(t, core.Reacts.Add(
		cmd.NewReactCommand("👀", "", func(_ context.Context, inv *cmd.Invocation) (cmd.Result, error) {
			return cmd.Text("seen " + inv.Reaction.MessageID), nil
		}),
	))
	return New(client, core, &out, zerolog.Nop()), &out
}

func TestExecDispatchesMessages(t *testing.T) {
	c, out := newConsole(t)
	ctx := context.Background()

	assert.False(t, c.Exec(ctx, "!ping"))
	assert.Contains(t, out.String(), "[#general] bot (m2): pong")

	c.Exec(ctx, ":join random")
	c.Exec(ctx, "!where")
	assert.Contains(t, out.String(), "in random")
	assert.Equal(t, []string{"general", "random"}, c.client.Channels())
}

func TestExecDirectMode(t *testing.T) {
	c, out := newConsole(t)
	ctx := context.Background()

	c.Exec(ctx, ":dm")
	assert.Equal(t, "@dm> ", c.prompt())
	c.Exec(ctx, "!where")
	assert.Contains(t, out.String(), "❌ This can only be used in a server.")
}

func TestExecReact(t *testing.T) {
	c, out := newConsole(t)
	ctx := context.Background()

	c.Exec(ctx, "hello")
	c.Exec(ctx, ":react u1 👀")
	assert.Contains(t, out.String(), "seen u1")

	c.Exec(ctx, ":react nope 👀")
	assert.Contains(t, out.String(), "no message nope")
}

func TestLoopStopsOnQuitAndEOF(t *testing.T) {
	c, out := newConsole(t)
	ctx := context.Background()

	in := lines{"!ping", ":quit", "!ping"}
	var prompts []string
	require.NoError(t, c.loop(ctx, &in, func(p string) { prompts = append(prompts, p) }))
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("pong")))
	assert.Equal(t, lines{"!ping"}, in)
	assert.Equal(t, []string{"#general> "}, prompts)

	empty := lines{}
	assert.NoError(t, c.loop(ctx, &empty, nil))
}

func TestClientDelete(t *testing.T) {
	var out bytes.Buffer
	c := NewClient(&out)
	ctx := context.Background()

	m, err := c.Send(ctx, DefaultChannel, &platform.Outgoing{Content: "x"})
	require.NoError(t, err)
	require.NoError(t, c.DeleteMessage(ctx, DefaultChannel, m.ID))

	err = c.DeleteMessage(ctx, DefaultChannel, m.ID)
	var pe *platform.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, codeUnknownMessage, pe.Code)

	_, err = c.Channel(ctx, "missing")
	assert.ErrorIs(t, err, platform.ErrUnknownChannel)
}
