package cmd

import (
	"context"
	"fmt"
	"strings"
)

// Action is the callback of a command, react command or await.
type Action func(ctx context.Context, inv *Invocation) (Result, error)

// ReplaceFunc is the callback of a replacer. Its return value is substituted
// into the message text.
type ReplaceFunc func(ctx context.Context, inv *ReplaceInvocation) string

// Unit is anything that can be loaded into a Registry.
type Unit interface {
	Unit() *Info
}

// Info is the metadata every registered unit shares.
type Info struct {
	ID          string
	Aliases     []string
	Description string
	Args        []Arg
	// Restricted units are limited to the owner (commands) or to designated
	// users and the message author (react commands).
	Restricted bool
	// GuildOnly units refuse to run in direct messages.
	GuildOnly bool
}

// Usage renders the invocation line, e.g. "!echo <text> [times]".
func (i *Info) Usage(prefix string) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(i.ID)
	for _, a := range i.Args {
		b.WriteByte(' ')
		b.WriteString(a.Usage())
	}
	return b.String()
}

// InfoString renders a one-line summary for help menus.
func (i *Info) InfoString(prefix string) string {
	s := "`" + i.Usage(prefix) + "`"
	if i.Description != "" {
		s += " - " + i.Description
	}
	if len(i.Aliases) > 0 {
		s += " (aliases: " + strings.Join(i.Aliases, ", ") + ")"
	}
	if i.Restricted {
		s += " [restricted]"
	}
	return s
}

// Warnings lists non-fatal design smells of the unit's arguments.
func (i *Info) Warnings() []string {
	return argWarnings(i.Args)
}

func (i *Info) validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: empty identifier", ErrInvalidUnit)
	}
	for _, a := range i.Args {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidUnit, i.ID, err)
		}
	}
	return nil
}

// Option configures a unit at construction.
type Option func(*Info)

func WithAliases(aliases ...string) Option {
	return func(i *Info) { i.Aliases = append(i.Aliases, aliases...) }
}

func WithArgs(args ...Arg) Option {
	return func(i *Info) { i.Args = append(i.Args, args...) }
}

func Restricted() Option {
	return func(i *Info) { i.Restricted = true }
}

func GuildOnly() Option {
	return func(i *Info) { i.GuildOnly = true }
}

func newInfo(id, description string, lower bool, opts []Option) Info {
	info := Info{ID: strings.TrimSpace(id), Description: description}
	for _, opt := range opts {
		opt(&info)
	}
	if lower {
		info.ID = strings.ToLower(info.ID)
		for k, a := range info.Aliases {
			info.Aliases[k] = strings.ToLower(strings.TrimSpace(a))
		}
	}
	return info
}

// Command is a prefix-invoked unit.
type Command struct {
	Info
	Action Action
}

// NewCommand builds a command. The name and aliases are lowercased.
func NewCommand(name, description string, action Action, opts ...Option) *Command {
	return &Command{Info: newInfo(name, description, true, opts), Action: action}
}

func (c *Command) Unit() *Info {
	if c == nil {
		return nil
	}
	return &c.Info
}

// Replacer is an inline unit invoked as |key args| inside any message.
type Replacer struct {
	Info
	Action ReplaceFunc
}

// NewReplacer builds a replacer. The key is lowercased.
func NewReplacer(key, description string, action ReplaceFunc, opts ...Option) *Replacer {
	return &Replacer{Info: newInfo(key, description, true, opts), Action: action}
}

func (r *Replacer) Unit() *Info {
	if r == nil {
		return nil
	}
	return &r.Info
}

// ReactCommand is a unit triggered by an emoji reaction. Its identifier is the
// emoji and is kept verbatim, since custom emoji keys are case-sensitive.
type ReactCommand struct {
	Info
	Action Action
}

func NewReactCommand(emoji, description string, action Action, opts ...Option) *ReactCommand {
	return &ReactCommand{Info: newInfo(emoji, description, false, opts), Action: action}
}

func (r *ReactCommand) Unit() *Info {
	if r == nil {
		return nil
	}
	return &r.Info
}

// Emoji is the reaction that triggers the command.
func (r *ReactCommand) Emoji() string { return r.ID }
