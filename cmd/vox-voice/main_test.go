package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vox-portal/internal/config"
	"github.com/bobmcallan/vox-portal/internal/portal/portaltest"
	"github.com/bobmcallan/vox-portal/internal/voice"
)

func newTestCommand(t *testing.T) (*cobra.Command, *portaltest.Upstream) {
	t.Helper()
	up := portaltest.NewUpstream(t)
	cmd := newRootCommandWith(&rootOptions{
		LoadConfig: func(paths ...string) (*config.Config, error) {
			return up.Config(), nil
		},
	})
	return cmd, up
}

func execute(cmd *cobra.Command, stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"listen", "commands"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	listen, _, err := cmd.Find([]string{"listen"})
	require.NoError(t, err)
	pageFlag := listen.Flags().Lookup("page")
	require.NotNil(t, pageFlag)
	assert.Equal(t, "home", pageFlag.DefValue)
}

func TestCommands_ListsPatternsInOrder(t *testing.T) {
	cmd, _ := newTestCommand(t)
	out, err := execute(cmd, "", "commands")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(voice.DefaultCommands()))
	assert.Equal(t, voice.PatternHello, lines[0])
	assert.Contains(t, lines, voice.PatternDogBreed)
}

func TestCommands_JSON(t *testing.T) {
	cmd, _ := newTestCommand(t)
	out, err := execute(cmd, "", "commands", "--format", "json")
	require.NoError(t, err)

	var patterns []string
	require.NoError(t, json.Unmarshal([]byte(out), &patterns))
	assert.Contains(t, patterns, voice.PatternLookup)
}

func TestInvalidFormat(t *testing.T) {
	cmd, _ := newTestCommand(t)
	_, err := execute(cmd, "", "commands", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestListen_NavigatesAndLooksUp(t *testing.T) {
	cmd, up := newTestCommand(t)
	stdin := "navigate to stocks\nlookup msft\n\nchange the color to teal\nwhat is this\n"

	out, err := execute(cmd, stdin, "listen", "--format", "json")
	require.NoError(t, err)

	var st tabState
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, "stocks", st.Page)
	assert.Equal(t, []string{"home", "stocks"}, st.History)
	assert.Equal(t, "teal", st.Background)
	assert.Equal(t, "MSFT", st.Ticker)
	require.NotNil(t, st.Chart)
	assert.Len(t, st.Chart.Labels, 3)
	assert.Equal(t, 4, st.Utterances)
	assert.Equal(t, 1, up.Requests(portaltest.PathAggregates))
}

func TestListen_TextReportsMatches(t *testing.T) {
	cmd, _ := newTestCommand(t)
	stdin := "helo | hello\nwhat is this\n"

	out, err := execute(cmd, stdin, "listen")
	require.NoError(t, err)

	assert.Contains(t, out, "hello -> hello")
	assert.Contains(t, out, "no match: what is this")
	assert.Contains(t, out, "alert: Hello World")
	assert.Contains(t, out, "page: home (history home)")
}

func TestListen_SelectsBreed(t *testing.T) {
	cmd, _ := newTestCommand(t)

	out, err := execute(cmd, "load dog breed akita\n", "listen", "--page", "dogs", "--format", "json")
	require.NoError(t, err)

	var st tabState
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	require.NotNil(t, st.Breed)
	assert.Equal(t, "Akita", st.Breed.Name)
}

func TestListen_UnknownPage(t *testing.T) {
	cmd, _ := newTestCommand(t)
	_, err := execute(cmd, "", "listen", "--page", "cats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown page")
}
