// Package middleware holds the invocation middleware of the bundled bot.
package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/botframe/internal/storage"
	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/handler"
)

func unitID(inv *cmd.Invocation) string {
	if inv.Unit == nil {
		return ""
	}
	return inv.Unit.ID
}

// WithRecover turns a panicking action into an error.
func WithRecover(log zerolog.Logger) cmd.Middleware {
	return func(next cmd.Action) cmd.Action {
		return func(ctx context.Context, inv *cmd.Invocation) (res cmd.Result, err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Str("unit", unitID(inv)).Bytes("stack", debug.Stack()).Msgf("panic: %v", r)
					err = fmt.Errorf("%s panicked: %v", unitID(inv), r)
				}
			}()
			return next(ctx, inv)
		}
	}
}

// WithCommandLogger logs every invocation with its duration.
func WithCommandLogger(log zerolog.Logger) cmd.Middleware {
	return func(next cmd.Action) cmd.Action {
		return func(ctx context.Context, inv *cmd.Invocation) (cmd.Result, error) {
			start := time.Now()
			res, err := next(ctx, inv)

			ev := log.Debug()
			if err != nil {
				ev = log.Info().Err(err)
			}
			ev.Str("unit", unitID(inv)).
				Str("user", inv.UserID()).
				Str("channel", inv.ChannelID()).
				Dur("took", time.Since(start)).
				Msg("invoked")
			return res, err
		}
	}
}

// WithDisabledCheck refuses units an admin disabled for the guild.
func WithDisabledCheck(store *storage.Storage) cmd.Middleware {
	return func(next cmd.Action) cmd.Action {
		return func(ctx context.Context, inv *cmd.Invocation) (cmd.Result, error) {
			id := unitID(inv)
			if guild := inv.GuildID(); guild != "" && id != handler.AwaitUnitID {
				off, err := store.IsUnitDisabled(guild, id)
				if err != nil {
					return nil, err
				}
				if off {
					return nil, cmd.NewInputError(cmd.KindDisabled, id)
				}
			}
			return next(ctx, inv)
		}
	}
}

// WithHistory records successful prefix commands in the guild history.
func WithHistory(store *storage.Storage, log zerolog.Logger) cmd.Middleware {
	return func(next cmd.Action) cmd.Action {
		return func(ctx context.Context, inv *cmd.Invocation) (cmd.Result, error) {
			res, err := next(ctx, inv)
			if err != nil || inv.Message == nil || unitID(inv) == handler.AwaitUnitID {
				return res, err
			}

			entry := storage.HistoryEntry{
				ChannelID: inv.ChannelID(),
				UserID:    inv.UserID(),
				Command:   unitID(inv),
				Args:      joinArgs(inv.Args),
				Datetime:  time.Now(),
			}
			if herr := store.AppendHistory(inv.GuildID(), entry); herr != nil {
				log.Warn().Err(herr).Str("unit", entry.Command).Msg("failed to record command")
			}
			return res, nil
		}
	}
}

func joinArgs(args cmd.Args) string {
	parts := make([]string, 0, len(args))
	for _, s := range args.Strings() {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
