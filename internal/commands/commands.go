// Package commands holds the units the bundled bot ships with.
package commands

import (
	"math/rand/v2"
	"time"

	"github.com/keshon/botframe/internal/storage"
	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/handler"
)

// Deps are the collaborators of the bundled units. Zero values fall back to
// the real clock and random source.
type Deps struct {
	Store *storage.Storage
	Now   func() time.Time
	IntN  func(n int) int
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d Deps) intN(n int) int {
	if d.IntN == nil {
		return rand.IntN(n)
	}
	return d.IntN(n)
}

// Register loads every bundled command, replacer and react command into core.
// Units that need storage are skipped when deps.Store is nil.
func Register(core *handler.Core, deps Deps) error {
	commands := []*cmd.Command{
		ping(),
		help(core),
		echo(),
		sum(),
		say(),
		purgeAfter(),
		guess(core, deps),
		confirm(),
		poll(),
	}
	if deps.Store != nil {
		commands = append(commands, history(deps), toggle(core, deps.Store))
	}
	if err := core.Commands.Add(commands...); err != nil {
		return err
	}

	if err := core.Replacers.Add(upper(), random(deps), clock(deps)); err != nil {
		return err
	}
	return core.Reacts.Add(trash())
}
