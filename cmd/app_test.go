package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := `
[server]
node_id = 3

[store]
backend = "file"
dir = "` + filepath.ToSlash(filepath.Join(dir, "data")) + `"

[[rosters]]
name = "employees"
data = """
A,Alice
B,Bob
C,Charlie
"""

[[tiers]]
key = "first"
display_name = "First prize"
icon = "🥇"
winner_count = 2
eligible_rosters = ["employees"]
`
	path := filepath.Join(dir, "luckydraw.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"luckydraw"}, args...))
	return out.String(), err
}

func TestApp_DrawPersistsAcrossRuns(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := run(t, "--config", cfg, "draw", "first")
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)

	out, err = run(t, "--config", cfg, "draw", "first")
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1)

	_, err = run(t, "--config", cfg, "draw", "first")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no participants left")

	out, err = run(t, "--config", cfg, "winners")
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)

	out, err = run(t, "--config", cfg, "reset")
	require.NoError(t, err)
	require.Contains(t, out, "Session reset.")

	out, err = run(t, "--config", cfg, "winners")
	require.NoError(t, err)
	require.Empty(t, strings.TrimSpace(out))
}

func TestApp_DrawUsage(t *testing.T) {
	_, err := run(t, "--config", writeTestConfig(t), "draw")
	require.Error(t, err)

	_, err = run(t, "--config", writeTestConfig(t), "draw", "grand")
	require.Error(t, err)
	require.Contains(t, err.Error(), "tier not found")
}

func TestApp_MalformedRosterLineIsLogged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "luckydraw.toml")
	body := `
[store]
backend = "memory"

[[rosters]]
name = "employees"
data = """
A,Alice
no-delimiter-line
"""

[[tiers]]
key = "first"
display_name = "First prize"
winner_count = 1
eligible_rosters = ["employees"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, err := run(t, "--config", path, "winners")
	require.NoError(t, err)

	logged := testLog.String()
	require.Contains(t, logged, "malformed roster record")
	require.Contains(t, logged, "no-delimiter-line")
}
