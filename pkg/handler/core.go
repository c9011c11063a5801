// Package handler routes inbound messages and reactions to the units of a
// bot instance and delivers what the units answer.
package handler

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/jobmgr"
	"github.com/keshon/botframe/pkg/platform"
)

// Core is the state one bot instance shares between its command handler and
// its reaction handler: registries, awaits, pending deletions and the client.
// Several cores can live in one process.
type Core struct {
	Commands  *cmd.Registry[*cmd.Command]
	Replacers *cmd.Registry[*cmd.Replacer]
	Reacts    *cmd.Registry[*cmd.ReactCommand]
	Awaits    *cmd.AwaitTable
	Reporter  *Reporter

	client    platform.Client
	opts      Options
	log       zerolog.Logger
	replacer  *regexp.Regexp
	ignored   map[int]bool
	jobs      *jobmgr.Manager
	reactions *ReactionHandler
}

// New builds a Core around client.
func New(client platform.Client, opts Options) *Core {
	opts = opts.withDefaults()
	log := opts.Logger.With().Str("component", "handler").Str("bot", opts.Name).Logger()

	c := &Core{
		Commands:  cmd.NewRegistry[*cmd.Command](),
		Replacers: cmd.NewRegistry[*cmd.Replacer](),
		Reacts:    cmd.NewRegistry[*cmd.ReactCommand](),
		Awaits:    cmd.NewAwaitTable(),
		Reporter:  NewReporter(client, log),
		client:    client,
		opts:      opts,
		log:       log,
		replacer:  bracePattern(opts.Braces),
		ignored:   make(map[int]bool, len(opts.IgnoredCodes)),
	}
	for _, code := range opts.IgnoredCodes {
		c.ignored[code] = true
	}

	c.jobs = jobmgr.NewManager(func(s string) {
		c.log.Debug().Str("job", s).Msg("delete-after")
	})
	c.Awaits.OnExpire = func(aw *cmd.Await) {
		k := aw.Key()
		c.log.Debug().Str("channel", k.ChannelID).Str("user", k.UserID).Msg("await expired")
	}

	if strings.HasPrefix(opts.Braces.Open, opts.Prefix) {
		c.log.Warn().
			Str("prefix", opts.Prefix).
			Str("brace", opts.Braces.Open).
			Msg("replacer brace starts with the command prefix")
	}
	return c
}

// Name implements cmd.Agent.
func (c *Core) Name() string { return c.opts.Name }

// Prefix implements cmd.Agent.
func (c *Core) Prefix() string { return c.opts.Prefix }

// Client returns the client the core sends through.
func (c *Core) Client() platform.Client { return c.client }

// Jobs lists pending delete-after jobs.
func (c *Core) Jobs() []string { return c.jobs.List() }

// JobStatus summarises pending jobs for humans.
func (c *Core) JobStatus() string { return c.jobs.Status() }

// LogWarnings logs the design smells of every registered unit. Call it once
// the registries are filled.
func (c *Core) LogWarnings() int {
	n := 0
	warn := func(kind string, info *cmd.Info) {
		for _, w := range info.Warnings() {
			c.log.Warn().Str("kind", kind).Str("unit", info.ID).Msg(w)
			n++
		}
	}
	for _, u := range c.Commands.All() {
		warn("command", u.Unit())
	}
	for _, u := range c.Replacers.All() {
		warn("replacer", u.Unit())
	}
	for _, u := range c.Reacts.All() {
		warn("react", u.Unit())
	}
	return n
}

// Close cancels every await timer and every pending deletion.
func (c *Core) Close() {
	c.Awaits.Close()
	c.jobs.StopAll()
}

// Report renders err back to channelID. See Reporter.Report.
func (c *Core) Report(ctx context.Context, channelID string, err error) string {
	return c.Reporter.Report(ctx, channelID, err)
}

func (c *Core) isOwner(userID string) bool {
	if userID == "" {
		return false
	}
	if c.opts.OwnerID != "" && userID == c.opts.OwnerID {
		return true
	}
	return c.client.IsOwner(userID)
}

// stripPrefix removes a leading self-mention or the command prefix.
func (c *Core) stripPrefix(text string) (string, bool) {
	if self := c.client.SelfID(); self != "" {
		for _, mention := range []string{"<@" + self + ">", "<@!" + self + ">"} {
			if strings.HasPrefix(text, mention) {
				return strings.TrimLeftFunc(text[len(mention):], unicode.IsSpace), true
			}
		}
	}
	if strings.HasPrefix(text, c.opts.Prefix) {
		return text[len(c.opts.Prefix):], true
	}
	return "", false
}

func (c *Core) invocation(info *cmd.Info) *cmd.Invocation {
	return &cmd.Invocation{
		Agent:     c,
		Client:    c.client,
		Commands:  c.Commands,
		Replacers: c.Replacers,
		Unit:      info,
	}
}

// run invokes action through the middleware chain and delivers its result.
func (c *Core) run(ctx context.Context, action cmd.Action, inv *cmd.Invocation) (*DispatchResult, error) {
	res := &DispatchResult{Unit: inv.Unit}

	out, err := cmd.Apply(action, c.opts.Middlewares...)(ctx, inv)
	if err != nil {
		return res, err
	}

	res.Responses, err = c.deliver(ctx, inv, cmd.Normalize(out))
	return res, err
}

// splitWord splits s at its first whitespace run.
func splitWord(s string) (word, rest string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}

// shiftWords drops the first n words of s.
func shiftWords(s string, n int) string {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	for ; n > 0 && s != ""; n-- {
		_, s = splitWord(s)
	}
	return s
}
