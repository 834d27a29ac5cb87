package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockkeeper/internal/domain/models"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	rootCmd, cleanup := newRootCommand()
	defer cleanup()

	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"import", "low-stock", "export", "run", "menu", "serve", "schedule"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("env-file"))
}

func TestLowStockFlags(t *testing.T) {
	cmd := newLowStockCommand(func() *app { return nil })
	for _, name := range []string{"threshold", "type", "brand", "category"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "10", cmd.Flags().Lookup("threshold").DefValue)
}

func TestCommandFailsWithoutMongoURI(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("LOG_LEVEL", "error")

	rootCmd, cleanup := newRootCommand()
	defer cleanup()
	rootCmd.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "low-stock"})

	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrStorage)
}

func TestInvalidThresholdIsConfigError(t *testing.T) {
	t.Setenv("STOCKKEEPER_THRESHOLD", "ten")

	rootCmd, cleanup := newRootCommand()
	defer cleanup()
	rootCmd.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "run"})

	err := rootCmd.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, models.ErrConfig)
}

func TestFirstArg(t *testing.T) {
	assert.Equal(t, "", firstArg(nil))
	assert.Equal(t, "stock.xlsx", firstArg([]string{"stock.xlsx"}))
}
