package handler

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/platform"
)

// Substituted in place of a replacer invocation that cannot run.
const (
	InvalidKey  = "INVALID KEY"
	InvalidArgs = "INVALID ARGS"
)

func bracePattern(b Braces) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(b.Open) + "(.+?)" + regexp.QuoteMeta(b.Close))
}

// RunReplacers substitutes every inline replacer invocation in content,
// left to right and in a single pass. Replacer output is not scanned again.
func RunReplacers(ctx context.Context, content string, reg *cmd.Registry[*cmd.Replacer], braces Braces) (string, error) {
	if braces.Open == "" || braces.Close == "" {
		braces = DefaultBraces
	}
	return replace(ctx, bracePattern(braces), content, reg, nil)
}

func replace(ctx context.Context, re *regexp.Regexp, content string, reg *cmd.Registry[*cmd.Replacer], msg *platform.Message) (string, error) {
	matches := re.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(content[last:m[0]])
		last = m[1]

		capture := content[m[2]:m[3]]
		out, err := substitute(ctx, content, capture, reg, msg)
		if err != nil {
			return content, err
		}
		b.WriteString(out)
	}
	b.WriteString(content[last:])
	return b.String(), nil
}

func substitute(ctx context.Context, content, capture string, reg *cmd.Registry[*cmd.Replacer], msg *platform.Message) (string, error) {
	key, raw, _ := strings.Cut(capture, " ")

	r, ok := reg.Get(strings.ToLower(key))
	if !ok || key == "" {
		return InvalidKey, nil
	}
	if r.Action == nil {
		return "", fmt.Errorf("replacer %q: %w", r.ID, ErrNilAction)
	}

	args, ok := cmd.ParseArgs(r.Args, raw)
	if !ok || args.Count() < cmd.MandatoryCount(r.Args) {
		return InvalidArgs, nil
	}

	return r.Action(ctx, &cmd.ReplaceInvocation{
		Content: content,
		Capture: capture,
		Args:    args,
		Message: msg,
	}), nil
}
