package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"github.com/keshon/botframe/pkg/handler"
	"github.com/keshon/botframe/pkg/platform"
)

const help = `Lines are sent as messages from "you". Console commands:
  :react <message> <emoji>  react to a message
  :join <channel>           create a channel and switch to it
  :channels                 list channels
  :dm                       toggle direct-message mode
  :quit                     leave`

// LineReader is the part of *readline.Instance the loop uses.
type LineReader interface {
	Readline() (string, error)
}

// Console feeds terminal input to a Core.
type Console struct {
	client    *Client
	core      *handler.Core
	commands  *handler.CommandHandler
	reactions *handler.ReactionHandler
	out       io.Writer
	log       zerolog.Logger

	channel string
	direct  bool
}

// New wires client and core. Output of console commands goes to out.
func New(client *Client, core *handler.Core, out io.Writer, log zerolog.Logger) *Console {
	return &Console{
		client:    client,
		core:      core,
		commands:  handler.NewCommandHandler(core),
		reactions: handler.NewReactionHandler(core),
		out:       out,
		log:       log.With().Str("component", "console").Logger(),
		channel:   DefaultChannel,
	}
}

// Run reads lines with readline until EOF, interrupt, :quit or ctx is done.
func (c *Console) Run(ctx context.Context, historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          c.prompt(),
		HistoryFile:     historyFile,
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       ":quit",
		Stdout:          c.out,
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	go func() {
		<-ctx.Done()
		_ = rl.Close()
	}()

	fmt.Fprintln(c.out, help)
	return c.loop(ctx, rl, rl.SetPrompt)
}

func (c *Console) loop(ctx context.Context, in LineReader, setPrompt func(string)) error {
	for {
		line, err := in.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read line: %w", err)
		}
		if quit := c.Exec(ctx, line); quit {
			return nil
		}
		if setPrompt != nil {
			setPrompt(c.prompt())
		}
	}
}

func (c *Console) prompt() string {
	if c.direct {
		return "@dm> "
	}
	return "#" + c.channel + "> "
}

// Exec handles one input line and reports whether the console should quit.
func (c *Console) Exec(ctx context.Context, line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ":") {
		msg := c.client.Receive(c.channel, line, c.direct)
		res, err := c.commands.Handle(ctx, msg)
		c.finish(ctx, msg.ChannelID, res, err)
		return false
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":exit":
		return true
	case ":help":
		fmt.Fprintln(c.out, help)
	case ":channels":
		fmt.Fprintln(c.out, strings.Join(c.client.Channels(), ", "))
	case ":join":
		if len(fields) != 2 {
			fmt.Fprintln(c.out, "usage: :join <channel>")
			return false
		}
		c.client.AddChannel(fields[1])
		c.channel = fields[1]
	case ":dm":
		c.direct = !c.direct
	case ":react":
		if len(fields) != 3 {
			fmt.Fprintln(c.out, "usage: :react <message> <emoji>")
			return false
		}
		c.react(ctx, fields[1], fields[2])
	default:
		fmt.Fprintf(c.out, "unknown console command %s\n", fields[0])
	}
	return false
}

func (c *Console) react(ctx context.Context, messageID, emoji string) {
	m, ok := c.client.Message(messageID)
	if !ok {
		fmt.Fprintf(c.out, "no message %s\n", messageID)
		return
	}
	res, err := c.reactions.Handle(ctx, &platform.Reaction{
		MessageID:       m.ID,
		ChannelID:       m.ChannelID,
		GuildID:         m.GuildID,
		UserID:          UserID,
		Emoji:           emoji,
		MessageAuthorID: m.AuthorID,
	})
	c.finish(ctx, m.ChannelID, res, err)
}

func (c *Console) finish(ctx context.Context, channelID string, res *handler.DispatchResult, err error) {
	if err != nil {
		if ref := c.core.Report(ctx, channelID, err); ref != "" {
			c.log.Debug().Str("ref", ref).Msg("reported")
		}
		return
	}
	if res == nil {
		return
	}
	for _, d := range res.Responses {
		if d.Err != nil {
			fmt.Fprintf(c.out, "(not delivered to #%s: %v)\n", d.ChannelID, d.Err)
		}
	}
}
