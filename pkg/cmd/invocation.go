package cmd

import (
	"github.com/samber/mo"

	"github.com/keshon/botframe/pkg/platform"
)

// Agent identifies the bot instance running a dispatch.
type Agent interface {
	Name() string
	Prefix() string
}

// Invocation carries everything an action may need. Message is set for
// message-triggered actions, Reaction for reaction-triggered ones.
type Invocation struct {
	Agent     Agent
	Client    platform.Client
	Commands  *Registry[*Command]
	Replacers *Registry[*Replacer]

	Unit     *Info
	Message  *platform.Message
	Reaction *platform.Reaction
	Args     Args

	// TriggerResponse is the message that armed the await or bound the
	// interface being consumed, when there is one.
	TriggerResponse mo.Option[*platform.Message]
}

// ChannelID is the channel the invocation came from.
func (inv *Invocation) ChannelID() string {
	if inv.Message != nil {
		return inv.Message.ChannelID
	}
	if inv.Reaction != nil {
		return inv.Reaction.ChannelID
	}
	return ""
}

// UserID is the user who triggered the invocation.
func (inv *Invocation) UserID() string {
	if inv.Message != nil {
		return inv.Message.AuthorID
	}
	if inv.Reaction != nil {
		return inv.Reaction.UserID
	}
	return ""
}

// GuildID is the guild of the invocation, empty in direct messages.
func (inv *Invocation) GuildID() string {
	if inv.Message != nil {
		return inv.Message.GuildID
	}
	if inv.Reaction != nil {
		return inv.Reaction.GuildID
	}
	return ""
}

// ReplaceInvocation is what a replacer action receives.
type ReplaceInvocation struct {
	// Content is the whole message text before substitution.
	Content string
	// Capture is the text between the braces.
	Capture string
	Args    Args
	Message *platform.Message
}
