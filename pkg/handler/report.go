package handler

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/platform"
)

// Reporter renders dispatch errors back to the user.
type Reporter struct {
	client platform.Client
	log    zerolog.Logger
}

func NewReporter(client platform.Client, log zerolog.Logger) *Reporter {
	return &Reporter{client: client, log: log}
}

// Report sends a message describing err to channelID. Input errors show their
// hint. Anything else is logged under a fresh reference, which is returned and
// shown to the user. If that message cannot be sent either, a minimal one
// asking to contact an admin is tried.
func (r *Reporter) Report(ctx context.Context, channelID string, err error) string {
	if err == nil {
		return ""
	}

	if ie, ok := cmd.AsInputError(err); ok {
		if _, serr := r.client.Send(ctx, channelID, &platform.Outgoing{Content: "❌ " + ie.Hint}); serr != nil {
			r.log.Warn().Err(serr).Str("channel", channelID).Str("unit", ie.Unit).Msg("report input error")
		}
		return ""
	}

	ref := ulid.Make().String()
	r.log.Error().Err(err).Str("ref", ref).Str("channel", channelID).Msg("dispatch failed")

	text := fmt.Sprintf("⚠️ Something went wrong. Reference: `%s`", ref)
	_, serr := r.client.Send(ctx, channelID, &platform.Outgoing{Content: text})
	if serr == nil {
		return ref
	}
	r.log.Error().Err(serr).Str("ref", ref).Msg("report error")

	if _, serr := r.client.Send(ctx, channelID, &platform.Outgoing{Content: "Please contact an admin. Reference: " + ref}); serr != nil {
		r.log.Error().Err(serr).Str("ref", ref).Msg("report fallback")
	}
	return ref
}
