package handler

import (
	"context"
	"fmt"

	"github.com/samber/mo"

	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/platform"
)

// ReactionHandler dispatches reactions to interface buttons bound to the
// reacted-on message, then to standalone react commands.
type ReactionHandler struct {
	core  *Core
	cache *interfaceCache
}

// NewReactionHandler attaches a reaction handler to core. Responses of core
// may bind interfaces only once one is attached.
func NewReactionHandler(core *Core) *ReactionHandler {
	h := &ReactionHandler{core: core, cache: newInterfaceCache(core.opts.MaxInterfaces)}
	core.reactions = h
	return h
}

// Handle dispatches an added reaction. A nil result with a nil error means the
// reaction was not for the bot.
func (h *ReactionHandler) Handle(ctx context.Context, r *platform.Reaction) (res *DispatchResult, err error) {
	defer h.core.recoverEvent(&err)
	return h.handle(ctx, r)
}

func (h *ReactionHandler) handle(ctx context.Context, r *platform.Reaction) (*DispatchResult, error) {
	c := h.core
	if r == nil || r.UserID == c.client.SelfID() {
		return nil, nil
	}

	if b, ok := h.cache.get(r.MessageID); ok {
		if btn, ok := b.iface.Button(r.Emoji); ok {
			return h.press(ctx, r, b, btn)
		}
	}

	rc, ok := c.Reacts.Get(r.Emoji)
	if !ok {
		return nil, nil
	}
	if rc.Restricted && r.UserID != r.MessageAuthorID && !c.isOwner(r.UserID) {
		return nil, cmd.NewInputError(cmd.KindRestricted, rc.ID)
	}
	if rc.GuildOnly && r.GuildID == "" {
		return nil, cmd.NewInputError(cmd.KindGuild, rc.ID)
	}
	if rc.Action == nil {
		return nil, fmt.Errorf("react command %q: %w", rc.ID, ErrNilAction)
	}

	inv := c.invocation(&rc.Info)
	inv.Reaction = r
	return c.run(ctx, rc.Action, inv)
}

func (h *ReactionHandler) press(ctx context.Context, r *platform.Reaction, b *bound, btn cmd.Button) (*DispatchResult, error) {
	c := h.core

	allowedFor := b.invoker
	if allowedFor == "" {
		allowedFor = r.MessageAuthorID
	}
	if !b.iface.Allowed(btn, r.UserID, allowedFor) {
		return nil, cmd.NewInputError(cmd.KindRestricted, btn.Command.ID)
	}
	if btn.Command.Action == nil {
		return nil, fmt.Errorf("button %q: %w", btn.Command.ID, ErrNilAction)
	}

	inv := c.invocation(&btn.Command.Info)
	inv.Reaction = r
	inv.TriggerResponse = mo.Some(b.message)

	res, err := c.run(ctx, btn.Command.Action, inv)
	if err != nil {
		return res, err
	}

	switch {
	case b.iface.DeletesAfterUse():
		h.cache.remove(r.MessageID)
		if derr := c.client.DeleteMessage(ctx, r.ChannelID, r.MessageID); derr != nil {
			c.log.Debug().Err(derr).Str("message", r.MessageID).Msg("delete after use")
		}
	case b.iface.RemovesReactionAfterUse():
		if rerr := c.client.RemoveReaction(ctx, r.ChannelID, r.MessageID, r.Emoji, r.UserID); rerr != nil {
			c.log.Debug().Err(rerr).Str("message", r.MessageID).Msg("remove reaction after use")
		}
	}
	return res, nil
}

// BindInterface attaches iface to msg and adds its buttons as reactions.
// Failing reactions are logged and skipped.
func (h *ReactionHandler) BindInterface(ctx context.Context, msg *platform.Message, iface *cmd.Interface) {
	h.bind(ctx, msg, iface, "")
}

func (h *ReactionHandler) bind(ctx context.Context, msg *platform.Message, iface *cmd.Interface, invoker string) {
	if msg == nil || iface == nil {
		return
	}
	evicted := h.cache.put(msg.ID, &bound{iface: iface, message: msg, invoker: invoker})
	if len(evicted) > 0 {
		h.core.log.Debug().Int("count", len(evicted)).Msg("evicted interfaces")
	}
	for _, old := range evicted {
		h.removeButtons(ctx, old)
	}

	for _, btn := range iface.Buttons() {
		if err := h.core.client.AddReaction(ctx, msg.ChannelID, msg.ID, btn.Emoji()); err != nil {
			h.core.log.Debug().Err(err).Str("emoji", btn.Emoji()).Str("message", msg.ID).Msg("add button")
		}
	}
}

// DetachInterface removes the bot's button reactions from the message and
// forgets the interface. Removal failures are ignored.
func (h *ReactionHandler) DetachInterface(ctx context.Context, messageID string) bool {
	b, ok := h.cache.remove(messageID)
	if !ok {
		return false
	}
	h.removeButtons(ctx, b)
	return true
}

// removeButtons takes the bot's button reactions off b's message, best-effort.
func (h *ReactionHandler) removeButtons(ctx context.Context, b *bound) {
	if b == nil || b.message == nil || b.iface == nil {
		return
	}
	self := h.core.client.SelfID()
	for _, btn := range b.iface.Buttons() {
		_ = h.core.client.RemoveReaction(ctx, b.message.ChannelID, b.message.ID, btn.Emoji(), self)
	}
}

// Interface returns the interface bound to messageID.
func (h *ReactionHandler) Interface(messageID string) (*cmd.Interface, bool) {
	b, ok := h.cache.get(messageID)
	if !ok {
		return nil, false
	}
	return b.iface, true
}

// Len is the number of bound interfaces.
func (h *ReactionHandler) Len() int { return h.cache.len() }
