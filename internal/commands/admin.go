package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/keshon/botframe/internal/storage"
	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/handler"
	"github.com/keshon/botframe/pkg/platform"
	"github.com/keshon/botframe/pkg/util"
)

func history(deps Deps) *cmd.Command {
	return cmd.NewCommand("history", "Show the latest commands used in this server",
		func(_ context.Context, inv *cmd.Invocation) (cmd.Result, error) {
			entries, err := deps.Store.History(inv.GuildID())
			if err != nil {
				return nil, fmt.Errorf("read history: %w", err)
			}
			if len(entries) == 0 {
				return cmd.Text("No commands recorded yet."), nil
			}
			usage, err := deps.Store.Usage(inv.GuildID())
			if err != nil {
				return nil, fmt.Errorf("read usage: %w", err)
			}

			var b strings.Builder
			for _, e := range entries {
				fmt.Fprintf(&b, "`%s` <@%s> %s%s", util.FormatDateTpl(e.Datetime, ""), e.UserID, inv.Agent.Prefix(), e.Command)
				if e.Args != "" {
					b.WriteString(" " + e.Args)
				}
				b.WriteByte('\n')
			}

			return &cmd.Response{Embed: &platform.Embed{
				Title:       "Command history",
				Description: b.String(),
				Color:       embedColor,
				Fields:      usageFields(usage),
			}}, nil
		}, cmd.Restricted(), cmd.GuildOnly())
}

// usageFields lists usage counters, most used first.
func usageFields(usage map[string]int) []platform.EmbedField {
	names := make([]string, 0, len(usage))
	for name := range usage {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if usage[a] != usage[b] {
			return usage[b] - usage[a]
		}
		return strings.Compare(a, b)
	})

	fields := make([]platform.EmbedField, 0, len(names))
	for _, name := range names {
		fields = append(fields, platform.EmbedField{Name: name, Value: fmt.Sprint(usage[name]), Inline: true})
	}
	return fields
}

// toggle disables or enables a command for the current server. It cannot
// disable itself.
func toggle(core *handler.Core, store *storage.Storage) *cmd.Command {
	const id = "toggle"
	return cmd.NewCommand(id, "Disable or enable a command in this server",
		func(_ context.Context, inv *cmd.Invocation) (cmd.Result, error) {
			name := strings.ToLower(strings.TrimSpace(inv.Args.String(0)))
			if name == "" {
				off, err := store.DisabledUnits(inv.GuildID())
				if err != nil {
					return nil, err
				}
				if len(off) == 0 {
					return cmd.Text("Nothing is disabled here."), nil
				}
				return cmd.Text("Disabled: " + strings.Join(off, ", ")), nil
			}

			c, ok := core.Commands.Get(name)
			if !ok {
				return nil, &cmd.InputError{Kind: cmd.KindArguments, Unit: id, Hint: "No such command: " + name}
			}
			if c.ID == id {
				return nil, &cmd.InputError{Kind: cmd.KindArguments, Unit: id, Hint: "toggle cannot be disabled."}
			}

			off, err := store.IsUnitDisabled(inv.GuildID(), c.ID)
			if err != nil {
				return nil, err
			}
			if off {
				if err := store.EnableUnit(inv.GuildID(), c.ID); err != nil {
					return nil, err
				}
				return cmd.Text(fmt.Sprintf("`%s` is enabled again.", c.ID)), nil
			}
			if err := store.DisableUnit(inv.GuildID(), c.ID); err != nil {
				return nil, err
			}
			return cmd.Text(fmt.Sprintf("`%s` is now disabled here.", c.ID)), nil
		}, cmd.Restricted(), cmd.GuildOnly(), cmd.WithArgs(cmd.Arg{Name: "command"}))
}
