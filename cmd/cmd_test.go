package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ginjaninja78/inventory-split/internal/config"
	"github.com/ginjaninja78/inventory-split/internal/ledger"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitError, exitCode(errors.New("boom")))
	assert.Equal(t, exitMissingInput, exitCode(fmt.Errorf("failed to open ledger: %w", ledger.ErrMissingInput)))
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger(config.LogSettings{Level: "warn", Encoding: "json"}, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = newLogger(config.LogSettings{Level: "warn", Encoding: "console"}, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = newLogger(config.LogSettings{Level: "loud", Encoding: "console"}, false)
	require.Error(t, err)
}

func newSplitTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "split"}
	cmd.Flags().AddFlagSet(splitCmd.Flags())
	require.NoError(t, cmd.Flags().Parse(args))
	t.Cleanup(func() {
		splitOpts = splitFlags{}
		splitCmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	})
	return cmd
}

func TestApplySplitFlags(t *testing.T) {
	cfg := config.Default()
	cmd := newSplitTestCommand(t,
		"--out", "exports",
		"--owners",
		"--trailing-empty",
		"--owner-column", config.OwnerColumnNone,
		"--clean",
		"--summary-file", "run.txt",
		"--ascii-paths")

	require.NoError(t, applySplitFlags(cmd, cfg))
	assert.Equal(t, "exports", cfg.OutputDir)
	assert.Equal(t, config.ModeOwner, cfg.Ledger.Mode)
	assert.True(t, cfg.Layout.IncludeTrailingEmptyColumn)
	assert.Equal(t, config.OwnerColumnNone, cfg.Layout.OwnerColumnSource)
	assert.True(t, cfg.CleanOutput)
	assert.Equal(t, "run.txt", cfg.Report.SummaryFile)
	assert.True(t, cfg.Layout.ASCIIPaths)
}

func TestApplySplitFlags_UnsetFlagsKeepConfig(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = "from-file"
	cmd := newSplitTestCommand(t)

	require.NoError(t, applySplitFlags(cmd, cfg))
	assert.Equal(t, "from-file", cfg.OutputDir)
	assert.Equal(t, config.ModeLocation, cfg.Ledger.Mode)
}

func TestApplySplitFlags_InvalidOwnerColumn(t *testing.T) {
	cmd := newSplitTestCommand(t, "--owner-column", "everyone")
	err := applySplitFlags(cmd, config.Default())
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestSplitAndListCommands(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "MANKO.csv")
	require.NoError(t, os.WriteFile(input, []byte(
		"Inv. číslo;Název;Datum;Cena;Účet;Lokalita\n"+
			"001;Židle;;;;RoomA/Shelf1\n"), 0o644))
	out := filepath.Join(dir, "out")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"split", input, "--out", out})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		splitOpts = splitFlags{}
		splitCmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, stdout.String(), "Statistics:\nRoomA: 1 items\n\tShelf1: 1 items\n")
	assert.Contains(t, stdout.String(), "1 item(s) saved in 1 file(s)")

	stdout.Reset()
	rootCmd.SetArgs([]string{"list", filepath.Join(out, "RoomA", "Shelf1.csv"), "--ascii"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "RoomA/Shelf1 - 1/1\n  Code:  001\n  Owner: \n  Name:  Zidle\n", stdout.String())
	listASCII = false
}

func TestSplitCommand_MissingLedger(t *testing.T) {
	rootCmd.SetArgs([]string{"split", filepath.Join(t.TempDir(), "absent.csv"), "--out", t.TempDir()})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		splitOpts = splitFlags{}
		splitCmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Equal(t, exitMissingInput, exitCode(err))
}

func TestValidateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_dir: exports\nledger:\n  mode: owner\n"), 0o644))

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"validate", "--config", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		cfgFile = defaultConfigFile
		rootCmd.PersistentFlags().Lookup("config").Changed = false
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, stdout.String(), "Configuration is valid.")
	assert.Contains(t, stdout.String(), "output_dir: exports")
	assert.Contains(t, stdout.String(), "mode: owner")
}

func TestValidateCommand_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ledger:\n  mode: everything\n"), 0o644))

	rootCmd.SetArgs([]string{"validate", "--config", path})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		cfgFile = defaultConfigFile
		rootCmd.PersistentFlags().Lookup("config").Changed = false
	})

	err := rootCmd.Execute()
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Equal(t, exitError, exitCode(err))
}
