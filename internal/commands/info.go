package commands

import (
	"context"
	"strings"

	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/handler"
	"github.com/keshon/botframe/pkg/platform"
)

const embedColor = 0x5865F2

func ping() *cmd.Command {
	return cmd.NewCommand("ping", "Check that the bot is alive",
		func(context.Context, *cmd.Invocation) (cmd.Result, error) {
			return cmd.Text("Pong!"), nil
		})
}

func help(core *handler.Core) *cmd.Command {
	return cmd.NewCommand("help", "List the available commands",
		func(_ context.Context, inv *cmd.Invocation) (cmd.Result, error) {
			return &cmd.Response{Embed: &platform.Embed{
				Title:       core.Name() + " help",
				Description: Overview(core),
				Color:       embedColor,
			}}, nil
		}, cmd.WithAliases("h", "commands"))
}

// Overview renders the info string of every unit registered in core, grouped
// by kind.
func Overview(core *handler.Core) string {
	var b strings.Builder
	prefix := core.Prefix()

	b.WriteString("**Commands**\n")
	for _, c := range core.Commands.All() {
		b.WriteString(c.InfoString(prefix))
		b.WriteByte('\n')
	}
	if rs := core.Replacers.All(); len(rs) > 0 {
		b.WriteString("\n**Replacers** (inline, between braces)\n")
		for _, r := range rs {
			b.WriteString(r.InfoString(""))
			b.WriteByte('\n')
		}
	}
	if rs := core.Reacts.All(); len(rs) > 0 {
		b.WriteString("\n**Reactions**\n")
		for _, r := range rs {
			b.WriteString(r.ID + " " + r.Description)
			if r.Restricted {
				b.WriteString(" [restricted]")
			}
			b.WriteByte('\n')
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
