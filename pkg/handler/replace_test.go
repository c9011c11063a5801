package handler

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/botframe/pkg/cmd"
)

func replacers(t *testing.T) *cmd.Registry[*cmd.Replacer] {
	t.Helper()
	reg := cmd.NewRegistry[*cmd.Replacer]()
	require.NoError(t, reg.Add(
		cmd.NewReplacer("r1", "", func(context.Context, *cmd.ReplaceInvocation) string { return "X" }),
		cmd.NewReplacer("upper", "", func(_ context.Context, inv *cmd.ReplaceInvocation) string {
			return strings.ToUpper(inv.Args.String(0))
		}, cmd.WithArgs(cmd.Arg{Name: "text", Mandatory: true})),
		cmd.NewReplacer("cap", "", func(_ context.Context, inv *cmd.ReplaceInvocation) string {
			return "[" + inv.Capture + "]"
		}),
	))
	return reg
}

func TestRunReplacers(t *testing.T) {
	reg := replacers(t)
	ctx := context.Background()

	cases := []struct {
		in, want string
	}{
		{"a|r1| b", "aX b"},
		{"|R1||r1|", "XX"},
		{"x |nope| y", "x " + InvalidKey + " y"},
		{"|upper|", InvalidArgs},
		{"say |upper hello world|!", "say HELLO WORLD!"},
		{"|cap a b|", "[cap a b]"},
		{"no braces", "no braces"},
		{"dangling |r1", "dangling |r1"},
		{"||", "||"},
	}
	for _, tc := range cases {
		got, err := RunReplacers(ctx, tc.in, reg, DefaultBraces)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestRunReplacersSinglePass(t *testing.T) {
	reg := cmd.NewRegistry[*cmd.Replacer]()
	require.NoError(t, reg.Add(
		cmd.NewReplacer("nest", "", func(context.Context, *cmd.ReplaceInvocation) string { return "|r1|" }),
		cmd.NewReplacer("r1", "", func(context.Context, *cmd.ReplaceInvocation) string { return "X" }),
	))

	got, err := RunReplacers(context.Background(), "|nest|", reg, DefaultBraces)
	require.NoError(t, err)
	assert.Equal(t, "|r1|", got)
}

func TestRunReplacersCustomBraces(t *testing.T) {
	reg := replacers(t)

	got, err := RunReplacers(context.Background(), "a{{r1}} |r1|", reg, Braces{Open: "{{", Close: "}}"})
	require.NoError(t, err)
	assert.Equal(t, "aX |r1|", got)
}

func TestRunReplacersNilAction(t *testing.T) {
	reg := cmd.NewRegistry[*cmd.Replacer]()
	require.NoError(t, reg.Add(cmd.NewReplacer("bad", "", nil)))

	_, err := RunReplacers(context.Background(), "|bad|", reg, DefaultBraces)
	assert.ErrorIs(t, err, ErrNilAction)
}
