package main

import (
	"flag"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func findStringFlag(flags []cli.Flag, name string) *cli.StringFlag {
	for _, f := range flags {
		if sf, ok := f.(*cli.StringFlag); ok && sf.Name == name {
			return sf
		}
	}
	return nil
}

func TestStoreFlags(t *testing.T) {
	flags := storeFlags()

	t.Run("db flag has alias", func(t *testing.T) {
		dbFlag := findStringFlag(flags, "db")
		require.NotNil(t, dbFlag)
		assert.Equal(t, []string{"d"}, dbFlag.Aliases)
		assert.False(t, dbFlag.Required)
	})

	t.Run("host and model flags default to config values", func(t *testing.T) {
		for _, name := range []string{"embedding-host", "embedding-model", "classifier-host", "classifier-model"} {
			f := findStringFlag(flags, name)
			require.NotNil(t, f, name)
			assert.Empty(t, f.Value, name)
		}
	})
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	set := flag.NewFlagSet("test", 0)
	set.String("config", "/nonexistent/config.yaml", "")
	set.String("db", "", "")
	set.String("embedding-host", "", "")
	set.String("embedding-model", "", "")
	set.String("classifier-host", "", "")
	set.String("classifier-model", "", "")
	require.NoError(t, set.Set("db", "/custom/path"))
	require.NoError(t, set.Set("embedding-model", "custom-model"))

	c := cli.NewContext(cli.NewApp(), set, nil)

	cfg, err := loadConfig(c)
	require.NoError(t, err)
	assert.Equal(t, "/custom/path", cfg.Store.Path)
	assert.Equal(t, "custom-model", cfg.AI.EmbeddingModel)
	// Unset flags keep the config defaults.
	assert.Equal(t, "http://localhost:11434/v1", cfg.AI.EmbeddingHost)
}

func TestSetupLogger(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	newContext := func(level string) *cli.Context {
		set := flag.NewFlagSet("test", 0)
		set.String("log-level", "info", "")
		if level != "" {
			require.NoError(t, set.Set("log-level", level))
		}
		return cli.NewContext(cli.NewApp(), set, nil)
	}

	t.Run("accepts valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "Info"} {
			assert.NoError(t, setupLogger(newContext(level)), level)
		}
	})

	t.Run("rejects invalid level", func(t *testing.T) {
		err := setupLogger(newContext("verbose"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestResetRequiresConfirmation(t *testing.T) {
	set := flag.NewFlagSet("test", 0)
	set.Bool("yes", false, "")
	c := cli.NewContext(cli.NewApp(), set, nil)

	err := resetCommand(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}
