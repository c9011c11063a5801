package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/handler"
	"github.com/keshon/botframe/pkg/platform"
)

const (
	guessMax     = 100
	guessTimeout = time.Minute
)

func isNumber(m *platform.Message) bool {
	_, err := strconv.Atoi(strings.TrimSpace(m.Content))
	return err == nil
}

// guess starts a number guessing game. The await stays armed, refreshed on
// every guess, until the number is found or the player goes quiet.
func guess(core *handler.Core, deps Deps) *cmd.Command {
	return cmd.NewCommand("guess", "Guess the number I am thinking of",
		func(context.Context, *cmd.Invocation) (cmd.Result, error) {
			secret := deps.intN(guessMax) + 1
			tries := 0

			aw := &cmd.Await{
				Timeout:      guessTimeout,
				RefreshOnUse: true,
				Trigger:      isNumber,
				Args:         []cmd.Arg{{Name: "guess", Mandatory: true, Type: cmd.Number}},
			}
			aw.Action = func(_ context.Context, inv *cmd.Invocation) (cmd.Result, error) {
				tries++
				n := inv.Args.Int(0)
				switch {
				case n < secret:
					return cmd.Text(fmt.Sprintf("%d is too low.", n)), nil
				case n > secret:
					return cmd.Text(fmt.Sprintf("%d is too high.", n)), nil
				}
				_ = core.Awaits.Clear(aw)
				return cmd.Text(fmt.Sprintf("🎉 %d it is! Found in %d tries.", n, tries)), nil
			}

			return &cmd.Response{
				Content: fmt.Sprintf("I'm thinking of a number between 1 and %d. Type your guess.", guessMax),
				Options: cmd.Options{Awaits: []*cmd.Await{aw}},
			}, nil
		})
}

func isYesNo(m *platform.Message) bool {
	switch strings.ToLower(strings.TrimSpace(m.Content)) {
	case "yes", "y", "no", "n":
		return true
	}
	return false
}

// confirm asks a yes/no question. Any other reply drops the question.
func confirm() *cmd.Command {
	return cmd.NewCommand("confirm", "Ask for a yes or no answer",
		func(_ context.Context, inv *cmd.Invocation) (cmd.Result, error) {
			question := inv.Args.String(0)
			aw := &cmd.Await{
				OneTime: true,
				Trigger: isYesNo,
				Args:    []cmd.Arg{{Name: "answer", Mandatory: true}},
				Action: func(_ context.Context, inv *cmd.Invocation) (cmd.Result, error) {
					ref := "your question"
					if asked, ok := inv.TriggerResponse.Get(); ok {
						ref = "message " + asked.ID
					}
					if a := strings.ToLower(strings.TrimSpace(inv.Args.String(0))); a == "yes" || a == "y" {
						return cmd.Text(fmt.Sprintf("✅ Confirmed %s: %s", ref, question)), nil
					}
					return cmd.Text(fmt.Sprintf("🚫 Declined %s: %s", ref, question)), nil
				},
			}
			return &cmd.Response{
				Content: question + " (yes/no)",
				Options: cmd.Options{Awaits: []*cmd.Await{aw}},
			}, nil
		}, cmd.WithArgs(cmd.Arg{Name: "question", Mandatory: true}))
}
