// Package discord adapts a discordgo session to platform.Client and feeds
// gateway events into the handlers.
package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/botframe/pkg/platform"
	"github.com/keshon/botframe/pkg/retrylimit"
)

// Client implements platform.Client on top of a discordgo session. Every REST
// call goes through an adaptive limiter with bounded retries.
type Client struct {
	s     *discordgo.Session
	lim   *retrylimit.AdaptiveLimiter
	retry retrylimit.RetryConfig
	log   zerolog.Logger

	ownerOnce sync.Once
	ownerID   string
}

// NewClient creates a session for token. No connection is made until the
// Bot runs.
func NewClient(token, proxyURL string, log zerolog.Logger) (*Client, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := applyProxy(s, proxyURL); err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessageReactions |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuilds

	log = log.With().Str("component", "discord").Logger()
	retry := retrylimit.DefaultRetryConfig()
	retry.MaxAttempts = 3
	retry.Logger = &log

	return &Client{
		s:     s,
		lim:   retrylimit.NewAdaptiveLimiter(10, 1, 40, 1, 0.5),
		retry: retry,
		log:   log,
	}, nil
}

// Session exposes the underlying session.
func (c *Client) Session() *discordgo.Session { return c.s }

func (c *Client) SelfID() string {
	if c.s.State == nil || c.s.State.User == nil {
		return ""
	}
	return c.s.State.User.ID
}

// IsOwner compares userID with the application owner, fetched once.
func (c *Client) IsOwner(userID string) bool {
	c.ownerOnce.Do(func() {
		app, err := c.s.Application("@me")
		if err != nil {
			c.log.Warn().Err(err).Msg("failed to fetch application owner")
			return
		}
		if app.Owner != nil {
			c.ownerID = app.Owner.ID
		}
	})
	return c.ownerID != "" && c.ownerID == userID
}

func (c *Client) Channel(ctx context.Context, channelID string) (*platform.ChannelInfo, error) {
	ch, err := c.s.State.Channel(channelID)
	if err != nil {
		err = c.call(ctx, func(ctx context.Context) error {
			var cerr error
			ch, cerr = c.s.Channel(channelID, discordgo.WithContext(ctx))
			return cerr
		})
	}
	if err != nil {
		if code, ok := errorCode(err); ok && code == codeUnknownChannel {
			return nil, fmt.Errorf("%s: %w", channelID, platform.ErrUnknownChannel)
		}
		return nil, err
	}

	info := channelInfo(ch)
	if info.Text && !info.Direct {
		perms, perr := c.s.UserChannelPermissions(c.SelfID(), channelID, discordgo.WithContext(ctx))
		if perr != nil {
			return nil, wrapREST(perr)
		}
		info.CanSend = perms&discordgo.PermissionSendMessages != 0
	}
	return info, nil
}

func (c *Client) Send(ctx context.Context, channelID string, out *platform.Outgoing) (*platform.Message, error) {
	if utf8.RuneCountInString(out.Content) > maxContent {
		return nil, platform.ErrContentTooLong
	}
	var m *discordgo.Message
	err := c.call(ctx, func(ctx context.Context) error {
		var serr error
		m, serr = c.s.ChannelMessageSendComplex(channelID, messageSend(out), discordgo.WithContext(ctx))
		return serr
	})
	if err != nil {
		return nil, err
	}
	return fromMessage(m), nil
}

func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return c.call(ctx, func(ctx context.Context) error {
		return c.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
	})
}

func (c *Client) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	return c.call(ctx, func(ctx context.Context) error {
		return c.s.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
	})
}

func (c *Client) RemoveReaction(ctx context.Context, channelID, messageID, emoji, userID string) error {
	if userID == c.SelfID() {
		userID = "@me"
	}
	return c.call(ctx, func(ctx context.Context) error {
		return c.s.MessageReactionRemove(channelID, messageID, emoji, userID, discordgo.WithContext(ctx))
	})
}

// messageAuthor resolves the author of a message, from state when cached.
func (c *Client) messageAuthor(ctx context.Context, channelID, messageID string) (string, error) {
	if m, err := c.s.State.Message(channelID, messageID); err == nil && m.Author != nil {
		return m.Author.ID, nil
	}
	var m *discordgo.Message
	err := c.call(ctx, func(ctx context.Context) error {
		var merr error
		m, merr = c.s.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
		return merr
	})
	if err != nil {
		return "", err
	}
	if m.Author == nil {
		return "", nil
	}
	return m.Author.ID, nil
}

// call runs fn under the limiter and converts REST failures to
// *platform.Error.
func (c *Client) call(ctx context.Context, fn func(context.Context) error) error {
	err := retrylimit.WithRetryConfig(ctx, func() error {
		err := fn(ctx)
		var rest *discordgo.RESTError
		if errors.As(err, &rest) {
			return &statusError{wrapREST(err)}
		}
		return err
	}, c.lim, c.retry)
	if err == nil {
		return nil
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.err
	}
	return err
}

// wrapREST turns a discordgo REST error carrying a JSON code into a
// *platform.Error.
func wrapREST(err error) error {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Message != nil && rest.Message.Code != 0 {
		return &platform.Error{Code: rest.Message.Code, Err: err}
	}
	return err
}

func errorCode(err error) (int, bool) {
	var pe *platform.Error
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return 0, false
}

// statusError exposes the HTTP status of a REST failure to retrylimit.
type statusError struct {
	err error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func (e *statusError) StatusCode() int {
	var rest *discordgo.RESTError
	if errors.As(e.err, &rest) && rest.Response != nil {
		return rest.Response.StatusCode
	}
	return 0
}
