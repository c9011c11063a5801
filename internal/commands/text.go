package commands

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/keshon/botframe/pkg/cmd"
)

// maxPurgeAfter bounds purge-after delays.
const maxPurgeAfter = time.Hour

func echo() *cmd.Command {
	return cmd.NewCommand("echo", "Repeat the text back",
		func(_ context.Context, inv *cmd.Invocation) (cmd.Result, error) {
			return cmd.Text(inv.Args.String(0)), nil
		}, cmd.WithArgs(cmd.Arg{Name: "text", Mandatory: true}))
}

func sum() *cmd.Command {
	return cmd.NewCommand("sum", "Add two whole numbers",
		func(_ context.Context, inv *cmd.Invocation) (cmd.Result, error) {
			return cmd.Text(strconv.Itoa(inv.Args.Int(0) + inv.Args.Int(1))), nil
		}, cmd.WithAliases("add"), cmd.WithArgs(
			cmd.Arg{Name: "a", Mandatory: true, Type: cmd.Number},
			cmd.Arg{Name: "b", Mandatory: true, Type: cmd.Number},
		))
}

// say posts the text to every listed channel, e.g. "!say 1,2 hello".
func say() *cmd.Command {
	return cmd.NewCommand("say", "Post text to one or more channels",
		func(_ context.Context, inv *cmd.Invocation) (cmd.Result, error) {
			var channels []string
			for _, ch := range strings.Split(inv.Args.String(0), ",") {
				ch = strings.Trim(strings.TrimSpace(ch), "<#>")
				if ch != "" {
					channels = append(channels, ch)
				}
			}
			if len(channels) == 0 {
				return nil, cmd.NewInputError(cmd.KindArguments, "say")
			}
			return &cmd.Response{
				Content: inv.Args.String(1),
				Options: cmd.Options{Channels: channels},
			}, nil
		}, cmd.GuildOnly(), cmd.WithArgs(
			cmd.Arg{Name: "channels", Mandatory: true},
			cmd.Arg{Name: "text", Mandatory: true},
		))
}

func purgeAfter() *cmd.Command {
	return cmd.NewCommand("purge-after", "Post text that deletes itself after some seconds",
		func(_ context.Context, inv *cmd.Invocation) (cmd.Result, error) {
			secs := inv.Args.Int(0)
			if secs < 1 || secs > int(maxPurgeAfter/time.Second) {
				return nil, &cmd.InputError{
					Kind: cmd.KindArguments,
					Unit: "purge-after",
					Hint: "Seconds must be between 1 and 3600.",
				}
			}
			return &cmd.Response{
				Content: inv.Args.String(1),
				Options: cmd.Options{DeleteAfter: time.Duration(secs) * time.Second},
			}, nil
		}, cmd.WithAliases("selfdestruct"), cmd.WithArgs(
			cmd.Arg{Name: "seconds", Mandatory: true, Type: cmd.Number},
			cmd.Arg{Name: "text", Mandatory: true},
		))
}
