// Package console runs the handlers against a terminal instead of a chat
// gateway.
package console

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/keshon/botframe/pkg/platform"
)

const (
	SelfID  = "bot"
	UserID  = "you"
	GuildID = "console"

	// DefaultChannel is the channel the console starts in.
	DefaultChannel = "general"

	maxContent = 2000
	// codeUnknownMessage mirrors the Discord code so the ignored-code policy
	// applies locally too.
	codeUnknownMessage = 10008
)

// Client is an in-memory platform.Client that prints everything it sends.
// The console user owns the bot.
type Client struct {
	mu       sync.Mutex
	out      io.Writer
	channels map[string]bool
	messages map[string]*platform.Message
	next     int
}

// NewClient creates a client writing to out with DefaultChannel plus
// channels.
func NewClient(out io.Writer, channels ...string) *Client {
	c := &Client{
		out:      out,
		channels: map[string]bool{DefaultChannel: true},
		messages: make(map[string]*platform.Message),
	}
	for _, ch := range channels {
		c.channels[ch] = true
	}
	return c
}

func (c *Client) SelfID() string { return SelfID }

func (c *Client) IsOwner(userID string) bool { return userID == UserID }

// AddChannel makes channelID known.
func (c *Client) AddChannel(channelID string) {
	c.mu.Lock()
	c.channels[channelID] = true
	c.mu.Unlock()
}

// Channels lists the known channels, sorted.
func (c *Client) Channels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.channels))
	for ch := range c.channels {
		out = append(out, ch)
	}
	slices.Sort(out)
	return out
}

// Message returns a sent or received message by id.
func (c *Client) Message(id string) (*platform.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.messages[id]
	return m, ok
}

// Receive records a message typed by the console user and returns it.
func (c *Client) Receive(channelID, content string, direct bool) *platform.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := &platform.Message{
		ID:        c.nextID("u"),
		ChannelID: channelID,
		AuthorID:  UserID,
		Content:   content,
	}
	if !direct {
		m.GuildID = GuildID
	}
	c.messages[m.ID] = m
	return m
}

func (c *Client) Channel(_ context.Context, channelID string) (*platform.ChannelInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.channels[channelID] {
		return nil, platform.ErrUnknownChannel
	}
	return &platform.ChannelInfo{ID: channelID, Text: true, CanSend: true}, nil
}

func (c *Client) Send(_ context.Context, channelID string, out *platform.Outgoing) (*platform.Message, error) {
	if utf8.RuneCountInString(out.Content) > maxContent {
		return nil, platform.ErrContentTooLong
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	m := &platform.Message{
		ID:        c.nextID("m"),
		ChannelID: channelID,
		GuildID:   GuildID,
		AuthorID:  SelfID,
		AuthorBot: true,
		Content:   out.Content,
	}
	c.messages[m.ID] = m

	fmt.Fprintf(c.out, "[#%s] %s (%s): %s\n", channelID, SelfID, m.ID, out.Content)
	if e := out.Embed; e != nil {
		fmt.Fprintf(c.out, "    ┃ %s\n", e.Title)
		if e.Description != "" {
			fmt.Fprintf(c.out, "    ┃ %s\n", e.Description)
		}
		for _, f := range e.Fields {
			fmt.Fprintf(c.out, "    ┃ %s: %s\n", f.Name, f.Value)
		}
		if e.Footer != "" {
			fmt.Fprintf(c.out, "    ┃ %s\n", e.Footer)
		}
	}
	if f := out.File; f != nil {
		fmt.Fprintf(c.out, "    📎 %s (%d bytes)\n", f.Name, len(f.Data))
	}
	return m, nil
}

func (c *Client) DeleteMessage(_ context.Context, channelID, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.messages[messageID]; !ok {
		return &platform.Error{Code: codeUnknownMessage, Err: fmt.Errorf("message %s", messageID)}
	}
	delete(c.messages, messageID)
	fmt.Fprintf(c.out, "[#%s] deleted %s\n", channelID, messageID)
	return nil
}

func (c *Client) AddReaction(_ context.Context, channelID, messageID, emoji string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "[#%s] %s +%s\n", channelID, messageID, emoji)
	return nil
}

func (c *Client) RemoveReaction(_ context.Context, channelID, messageID, emoji, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "[#%s] %s -%s (%s)\n", channelID, messageID, emoji, userID)
	return nil
}

// nextID requires c.mu.
func (c *Client) nextID(prefix string) string {
	c.next++
	return prefix + strconv.Itoa(c.next)
}
