package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/platform"
)

// Delivery is the outcome of sending one response to one channel. Err holds a
// *ResponseError when the send failed recoverably.
type Delivery struct {
	ChannelID string
	Message   *platform.Message
	Err       error
}

// DispatchResult describes a handled event.
type DispatchResult struct {
	Unit      *cmd.Info
	Responses []Delivery
}

// Messages returns the successfully sent messages in delivery order.
func (r *DispatchResult) Messages() []*platform.Message {
	if r == nil {
		return nil
	}
	var out []*platform.Message
	for _, d := range r.Responses {
		if d.Err == nil && d.Message != nil {
			out = append(out, d.Message)
		}
	}
	return out
}

// AwaitUnitID is the unit identifier invocations of awaits carry.
const AwaitUnitID = "await"

// CommandHandler dispatches messages to awaits and prefix commands.
type CommandHandler struct {
	core *Core
}

func NewCommandHandler(core *Core) *CommandHandler {
	return &CommandHandler{core: core}
}

// Handle dispatches msg. A nil result with a nil error means the message was
// not for the bot. Input problems come back as *cmd.InputError.
func (h *CommandHandler) Handle(ctx context.Context, msg *platform.Message) (res *DispatchResult, err error) {
	defer h.core.recoverEvent(&err)
	return h.handle(ctx, msg)
}

func (h *CommandHandler) handle(ctx context.Context, msg *platform.Message) (*DispatchResult, error) {
	c := h.core
	if msg == nil || msg.AuthorID == c.client.SelfID() {
		return nil, nil
	}
	if msg.AuthorBot && !c.opts.AllowBots {
		return nil, nil
	}

	content, err := replace(ctx, c.replacer, msg.Content, c.Replacers, msg)
	if err != nil {
		return nil, err
	}
	m := *msg
	m.Content = content

	if aw := c.Awaits.Lookup(cmd.AwaitKey{ChannelID: m.ChannelID, UserID: m.AuthorID}); aw != nil {
		if res, handled, err := h.consume(ctx, aw, &m); handled {
			return res, err
		}
	}

	rest, ok := c.stripPrefix(m.Content)
	if !ok {
		return nil, nil
	}
	name, raw := splitWord(rest)
	if name == "" {
		return nil, nil
	}
	command, ok := c.Commands.Get(strings.ToLower(name))
	if !ok {
		return nil, nil
	}

	if command.Restricted && !c.isOwner(m.AuthorID) {
		return nil, cmd.NewInputError(cmd.KindRestricted, command.ID)
	}
	if command.GuildOnly && m.Direct() {
		return nil, cmd.NewInputError(cmd.KindGuild, command.ID)
	}
	if command.Action == nil {
		return nil, fmt.Errorf("command %q: %w", command.ID, ErrNilAction)
	}

	args, ok := cmd.ParseArgs(command.Args, raw)
	if !ok || args.Count() < cmd.MandatoryCount(command.Args) {
		return nil, cmd.NewInputError(cmd.KindArguments, command.ID)
	}

	inv := c.invocation(&command.Info)
	inv.Message = &m
	inv.Args = args
	return c.run(ctx, command.Action, inv)
}

// consume runs aw against msg. handled is false when the message should fall
// through to command dispatch.
func (h *CommandHandler) consume(ctx context.Context, aw *cmd.Await, msg *platform.Message) (res *DispatchResult, handled bool, err error) {
	c := h.core

	text := msg.Content
	matched := true
	if aw.RequirePrefix {
		text, matched = c.stripPrefix(text)
	}
	probe := *msg
	probe.Content = text
	if matched {
		matched = aw.Matches(&probe)
	}
	if !matched {
		if aw.OneTime {
			_ = c.Awaits.Clear(aw)
		}
		return nil, false, nil
	}

	info := &cmd.Info{ID: AwaitUnitID, Args: aw.Args}
	if aw.Action == nil {
		_ = c.Awaits.Clear(aw)
		return nil, true, fmt.Errorf("await: %w", ErrNilAction)
	}

	args, ok := cmd.ParseArgs(aw.Args, shiftWords(text, aw.Shift))
	if !ok || args.Count() < cmd.MandatoryCount(aw.Args) {
		return nil, true, cmd.NewInputError(cmd.KindArguments, info.ID)
	}

	inv := c.invocation(info)
	inv.Message = msg
	inv.Args = args
	inv.TriggerResponse = aw.TriggerResponse()

	res, err = c.run(ctx, aw.Action, inv)

	if aw.RefreshOnUse {
		// The action may have armed a replacement, which cleared aw.
		if rerr := c.Awaits.Refresh(aw); rerr != nil && !errors.Is(rerr, cmd.ErrAwaitCleared) {
			c.log.Warn().Err(rerr).Msg("refresh await")
		}
	} else {
		_ = c.Awaits.Clear(aw)
	}
	return res, true, err
}
