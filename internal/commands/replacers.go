package commands

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/handler"
	"github.com/keshon/botframe/pkg/util"
)

func upper() *cmd.Replacer {
	return cmd.NewReplacer("upper", "Uppercase the text",
		func(_ context.Context, inv *cmd.ReplaceInvocation) string {
			return strings.ToUpper(inv.Args.String(0))
		}, cmd.WithArgs(cmd.Arg{Name: "text", Mandatory: true}))
}

// random picks a whole number in [min, max]; the bounds may come in any order.
// A span wider than an int can hold is rejected.
func random(deps Deps) *cmd.Replacer {
	return cmd.NewReplacer("rand", "A random number between two bounds",
		func(_ context.Context, inv *cmd.ReplaceInvocation) string {
			lo, hi := inv.Args.Int(0), inv.Args.Int(1)
			if lo > hi {
				lo, hi = hi, lo
			}
			span := uint64(hi) - uint64(lo)
			if span >= math.MaxInt {
				return handler.InvalidArgs
			}
			return strconv.Itoa(lo + deps.intN(int(span)+1))
		}, cmd.WithArgs(
			cmd.Arg{Name: "min", Mandatory: true, Type: cmd.Number},
			cmd.Arg{Name: "max", Mandatory: true, Type: cmd.Number},
		))
}

// clock renders the current time with a YYYY-MM-DD hh:mm style template.
func clock(deps Deps) *cmd.Replacer {
	return cmd.NewReplacer("time", "The current time, e.g. |time hh:mm|",
		func(_ context.Context, inv *cmd.ReplaceInvocation) string {
			return util.FormatDateTpl(deps.now(), inv.Args.String(0))
		}, cmd.WithArgs(cmd.Arg{Name: "template"}))
}
