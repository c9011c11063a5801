// Package platform is the capability surface the dispatch core consumes from a
// chat gateway. Adapters (Discord, console) implement Client; the handlers never
// see provider payloads.
package platform

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnknownChannel is returned by Client.Channel when the channel does not exist
	// or is not visible to the bot.
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrContentTooLong is returned by Client.Send when the content exceeds the
	// provider message size limit.
	ErrContentTooLong = errors.New("content exceeds provider size limit")
)

// Client is everything the handlers need from a gateway connection.
type Client interface {
	// SelfID is the user id of the bot account.
	SelfID() string
	// IsOwner reports whether userID is the application owner.
	IsOwner(userID string) bool

	Channel(ctx context.Context, channelID string) (*ChannelInfo, error)
	Send(ctx context.Context, channelID string, out *Outgoing) (*Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	AddReaction(ctx context.Context, channelID, messageID, emoji string) error
	RemoveReaction(ctx context.Context, channelID, messageID, emoji, userID string) error
}

// ChannelInfo describes a destination channel.
type ChannelInfo struct {
	ID string
	// Text is true for channels that accept text messages.
	Text bool
	// CanSend is true when the bot may post in the channel.
	CanSend bool
	// Direct is true for private (non-guild) channels.
	Direct bool
}

// Message is an inbound or sent message.
type Message struct {
	ID        string
	ChannelID string
	GuildID   string
	AuthorID  string
	AuthorBot bool
	Content   string
}

// Direct reports whether the message was sent outside a guild.
func (m *Message) Direct() bool { return m.GuildID == "" }

// Reaction is a reaction added to a message.
type Reaction struct {
	MessageID string
	ChannelID string
	GuildID   string
	UserID    string
	// Emoji is the unicode emoji or "name:id" for custom emoji.
	Emoji string
	// MessageAuthorID is the author of the reacted-on message.
	MessageAuthorID string
}

// Embed is a minimal rich embed.
type Embed struct {
	Title       string
	Description string
	URL         string
	Color       int
	Footer      string
	Fields      []EmbedField
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// File is an attachment.
type File struct {
	Name string
	Data []byte
}

// Outgoing is a message to send.
type Outgoing struct {
	Content string
	Embed   *Embed
	File    *File
}

// Error is a provider error carrying a numeric provider code.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider error %d: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
