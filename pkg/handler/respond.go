package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/platform"
	"github.com/keshon/botframe/pkg/util"
)

const (
	fallbackFileName = "response.txt"
	fallbackLabel    = "Response too long, sent as a file."
)

// deliver sends every response to each of its channels and applies the
// post-send options. Channels of one response are sent to concurrently; the
// deliveries keep channel order.
func (c *Core) deliver(ctx context.Context, inv *cmd.Invocation, responses []*cmd.Response) ([]Delivery, error) {
	var out []Delivery

	for _, r := range responses {
		if r.File != nil && r.File.Data == nil {
			return out, ErrBadFile
		}
		if r.Options.Interface != nil && c.reactions == nil {
			return out, ErrNoReactionHandler
		}

		channels := r.Options.Channels
		if len(channels) == 0 {
			channels = []string{inv.ChannelID()}
		}

		payload := r.Outgoing()
		ds, err := util.ParallelMap(ctx, channels, c.opts.SendWorkers, func(ctx context.Context, ch string) (Delivery, error) {
			msg, err := c.send(ctx, ch, payload)
			var re *ResponseError
			if err != nil && !errors.As(err, &re) {
				return Delivery{}, err
			}
			return Delivery{ChannelID: ch, Message: msg, Err: err}, nil
		})
		if err != nil {
			return out, err
		}

		if err := c.afterSend(ctx, inv, r, ds); err != nil {
			return append(out, ds...), err
		}
		out = append(out, ds...)
	}
	return out, nil
}

// afterSend arms the response's awaits on its first successful delivery, and
// binds the interface and schedules deletion for every successful delivery.
func (c *Core) afterSend(ctx context.Context, inv *cmd.Invocation, r *cmd.Response, ds []Delivery) error {
	armed := false
	def := cmd.AwaitKey{ChannelID: inv.ChannelID(), UserID: inv.UserID()}

	for _, d := range ds {
		if d.Err != nil || d.Message == nil {
			continue
		}

		if !armed {
			armed = true
			for _, aw := range r.Options.Awaits {
				if aw == nil {
					continue
				}
				if err := c.Awaits.Arm(aw, def, d.Message); err != nil {
					return fmt.Errorf("arm await: %w", err)
				}
			}
		}

		if r.Options.Interface != nil {
			c.reactions.bind(ctx, d.Message, r.Options.Interface, inv.UserID())
		}
		if r.Options.DeleteAfter > 0 {
			c.deleteAfter(d.ChannelID, d.Message.ID, r.Options.DeleteAfter)
		}
	}
	return nil
}

// send applies the send policy for one channel. Recoverable failures come
// back as *ResponseError; anything else is unexpected.
func (c *Core) send(ctx context.Context, channelID string, out *platform.Outgoing) (*platform.Message, error) {
	info, err := c.client.Channel(ctx, channelID)
	switch {
	case errors.Is(err, platform.ErrUnknownChannel):
		return nil, &ResponseError{Kind: KindInvalidChannel, ChannelID: channelID, Err: err}
	case err != nil:
		return nil, c.providerError(channelID, fmt.Errorf("lookup channel %s: %w", channelID, err))
	case info == nil:
		return nil, &ResponseError{Kind: KindInvalidChannel, ChannelID: channelID}
	case !info.Text:
		return nil, &ResponseError{Kind: KindChannelType, ChannelID: channelID}
	case !info.CanSend:
		return nil, &ResponseError{Kind: KindPermission, ChannelID: channelID}
	}

	msg, err := c.client.Send(ctx, channelID, out)
	if errors.Is(err, platform.ErrContentTooLong) {
		c.log.Debug().Str("channel", channelID).Int("length", len(out.Content)).Msg("sending response as file")
		msg, err = c.client.Send(ctx, channelID, &platform.Outgoing{
			Content: fallbackLabel,
			Embed:   out.Embed,
			File:    &platform.File{Name: fallbackFileName, Data: []byte(out.Content)},
		})
	}
	if err != nil {
		return nil, c.providerError(channelID, fmt.Errorf("send to %s: %w", channelID, err))
	}
	return msg, nil
}

// providerError converts ignored provider codes into a ResponseError and
// returns every other error unchanged.
func (c *Core) providerError(channelID string, err error) error {
	code, ok := c.ignoredCode(err)
	if !ok {
		return err
	}
	c.log.Debug().Err(err).Int("code", code).Str("channel", channelID).Msg("ignored provider error")
	return &ResponseError{
		Kind:      KindIgnored,
		ChannelID: channelID,
		Err:       &IgnoredError{Code: code, Err: err},
	}
}

func (c *Core) ignoredCode(err error) (int, bool) {
	var pe *platform.Error
	if errors.As(err, &pe) && c.ignored[pe.Code] {
		return pe.Code, true
	}
	return 0, false
}

func (c *Core) deleteAfter(channelID, messageID string, d time.Duration) {
	name := "delete:" + channelID + ":" + messageID
	err := c.jobs.After(name, d, func(ctx context.Context) error {
		err := c.client.DeleteMessage(ctx, channelID, messageID)
		if _, ok := c.ignoredCode(err); ok {
			return nil
		}
		return err
	})
	if err != nil {
		c.log.Warn().Err(err).Str("message", messageID).Msg("schedule delete")
	}
}
