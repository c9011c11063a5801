package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"

	"github.com/keshon/botframe/pkg/handler"
)

// Bot connects a Client to the handlers of a Core.
type Bot struct {
	client    *Client
	core      *handler.Core
	commands  *handler.CommandHandler
	reactions *handler.ReactionHandler
	editable  bool
	log       zerolog.Logger

	// One single-worker pool per event kind: events of a kind are handled in
	// arrival order, one at a time.
	creates *workerpool.WorkerPool
	updates *workerpool.WorkerPool
	reacts  *workerpool.WorkerPool
}

// NewBot wires client events into core. Message updates are dispatched only
// when editable is set.
func NewBot(client *Client, core *handler.Core, editable bool) *Bot {
	return &Bot{
		client:    client,
		core:      core,
		commands:  handler.NewCommandHandler(core),
		reactions: handler.NewReactionHandler(core),
		editable:  editable,
		log:       client.log,
	}
}

// Run opens the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.creates = workerpool.New(1)
	b.updates = workerpool.New(1)
	b.reacts = workerpool.New(1)

	s := b.client.s
	s.AddHandler(b.onReady)
	s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		b.creates.Submit(func() { b.dispatch(ctx, m.Message) })
	})
	if b.editable {
		s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageUpdate) {
			// Embed unfurls arrive as updates without an author.
			if m.Author == nil {
				return
			}
			b.updates.Submit(func() { b.dispatch(ctx, m.Message) })
		})
	}
	s.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
		b.reacts.Submit(func() { b.react(ctx, r.MessageReaction) })
	})

	if err := s.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, cleaning up")

	b.creates.Stop()
	b.updates.Stop()
	b.reacts.Stop()
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close Discord session: %w", err)
	}
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("Discord bot is running")
}

func (b *Bot) dispatch(ctx context.Context, m *discordgo.Message) {
	msg := fromMessage(m)
	if msg == nil {
		return
	}
	res, err := b.commands.Handle(ctx, msg)
	b.finish(ctx, msg.ChannelID, res, err)
}

func (b *Bot) react(ctx context.Context, r *discordgo.MessageReaction) {
	if r.UserID == b.client.SelfID() {
		return
	}
	author, err := b.client.messageAuthor(ctx, r.ChannelID, r.MessageID)
	if err != nil {
		b.log.Debug().Err(err).Str("message", r.MessageID).Msg("reacted message not found")
		return
	}
	res, err := b.reactions.Handle(ctx, fromReaction(r, author))
	b.finish(ctx, r.ChannelID, res, err)
}

func (b *Bot) finish(ctx context.Context, channelID string, res *handler.DispatchResult, err error) {
	if err != nil {
		b.core.Report(ctx, channelID, err)
		return
	}
	if res == nil || res.Unit == nil {
		return
	}
	var failed []string
	for _, d := range res.Responses {
		if d.Err != nil && !handler.IsResponseKind(d.Err, handler.KindIgnored) {
			failed = append(failed, d.ChannelID)
		}
	}
	b.log.Debug().
		Str("unit", res.Unit.ID).
		Int("sent", len(res.Messages())).
		Strs("failed", failed).
		Msg("dispatched")
}
