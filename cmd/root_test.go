package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	viper.Reset()
	cfgFile = ""
	t.Cleanup(func() {
		viper.Reset()
		cfgFile = ""
	})
}

func TestNewRootCommandWiring(t *testing.T) {
	resetGlobals(t)

	rootCmd := NewRootCommand()
	assert.Equal(t, "loiter", rootCmd.Use)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))

	names := make([]string, 0)
	for _, sub := range rootCmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "run")
}

func TestInitializeConfigAppliesDefaults(t *testing.T) {
	resetGlobals(t)
	// Point at a config file that does not exist; defaults must still apply.
	cfgFile = ""

	require.NoError(t, initializeConfig())
	assert.Equal(t, "https://example.com", viper.GetString("session.target_url"))
	assert.Equal(t, 5, viper.GetInt("session.duration_minutes"))
}

func TestInitializeConfigHonorsBareEnvNames(t *testing.T) {
	resetGlobals(t)
	t.Setenv("TARGET_URL", "https://warmup.example.net")
	t.Setenv("DURATION_MINUTES", "30")

	require.NoError(t, initializeConfig())
	assert.Equal(t, "https://warmup.example.net", viper.GetString("session.target_url"))
	assert.Equal(t, 30, viper.GetInt("session.duration_minutes"))
}

func TestRunCommandFlagOverrides(t *testing.T) {
	resetGlobals(t)
	require.NoError(t, initializeConfig())

	runCmd := newRunCmd()
	require.NoError(t, runCmd.Flags().Set("url", "https://flags.example.org"))
	require.NoError(t, runCmd.Flags().Set("duration", "2"))
	require.NoError(t, runCmd.PreRunE(runCmd, nil))

	assert.Equal(t, "https://flags.example.org", viper.GetString("session.target_url"))
	assert.Equal(t, 2, viper.GetInt("session.duration_minutes"))
}

func TestRunCommandUnchangedFlagsKeepDefaults(t *testing.T) {
	resetGlobals(t)
	require.NoError(t, initializeConfig())

	runCmd := newRunCmd()
	require.NoError(t, runCmd.PreRunE(runCmd, nil))

	// An unset flag must not clobber the configured default with its zero.
	assert.Equal(t, 5, viper.GetInt("session.duration_minutes"))
	assert.Equal(t, "https://example.com", viper.GetString("session.target_url"))
}
