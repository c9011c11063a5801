package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/botframe/pkg/cmd"
)

// logLines decodes every JSON line zerolog wrote to buf.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
		out = append(out, line)
	}
	return out
}

func warnings(lines []map[string]any) []map[string]any {
	var out []map[string]any
	for _, l := range lines {
		if l["level"] == "warn" {
			out = append(out, l)
		}
	}
	return out
}

func TestNewWarnsWhenBraceStartsWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	core := New(newFakeClient(), Options{Prefix: "|", Logger: &log})
	t.Cleanup(core.Close)

	ws := warnings(logLines(t, &buf))
	require.Len(t, ws, 1)
	assert.Equal(t, "replacer brace starts with the command prefix", ws[0]["message"])
	assert.Equal(t, "|", ws[0]["prefix"])
	assert.Equal(t, "|", ws[0]["brace"])
}

func TestNewQuietWithDistinctBraces(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	core := New(newFakeClient(), Options{Logger: &log})
	t.Cleanup(core.Close)

	assert.Empty(t, warnings(logLines(t, &buf)))
}

func TestLogWarnings(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	core := New(newFakeClient(), Options{Logger: &log})
	t.Cleanup(core.Close)

	noop := func(context.Context, *cmd.Invocation) (cmd.Result, error) { return nil, nil }
	require.NoError(t, core.Commands.Add(
		cmd.NewCommand("split", "", noop, cmd.WithArgs(
			cmd.Arg{Name: "a", Delimiter: "::"},
			cmd.Arg{Name: "b"},
		)),
		cmd.NewCommand("tail", "", noop, cmd.WithArgs(
			cmd.Arg{Name: "only", Delimiter: ","},
		)),
		cmd.NewCommand("clean", "", noop, cmd.WithArgs(cmd.Arg{Name: "x"}, cmd.Arg{Name: "y"})),
	))
	require.NoError(t, core.Replacers.Add(cmd.NewReplacer("r", "",
		func(context.Context, *cmd.ReplaceInvocation) string { return "" },
		cmd.WithArgs(cmd.Arg{Name: "k", Delimiter: "=>"}, cmd.Arg{Name: "v"}),
	)))
	buf.Reset()

	assert.Equal(t, 3, core.LogWarnings())

	ws := warnings(logLines(t, &buf))
	require.Len(t, ws, 3)
	byUnit := map[string]map[string]any{}
	for _, w := range ws {
		byUnit[w["unit"].(string)] = w
	}
	require.Contains(t, byUnit, "split")
	assert.Equal(t, "command", byUnit["split"]["kind"])
	assert.Contains(t, byUnit["split"]["message"], "multi-character delimiter")
	require.Contains(t, byUnit, "tail")
	assert.Contains(t, byUnit["tail"]["message"], "is last")
	require.Contains(t, byUnit, "r")
	assert.Equal(t, "replacer", byUnit["r"]["kind"])
	assert.NotContains(t, byUnit, "clean")
}
