package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCmd_HasSubcommands(t *testing.T) {
	commands := configCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "set")
	assert.Contains(t, commandNames, "path")
}

func TestConfigSetAndGet_RoundTrips(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "set", "provider.base_url", "https://api.eu1.adobesign.com"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()
	require.NoError(t, rootCmd.Execute())

	buf.Reset()
	rootCmd.SetArgs([]string{"config", "get", "provider.base_url"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "https://api.eu1.adobesign.com")
}

func TestConfigSet_StoresIntegersTyped(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "set", "reminder.cooldown_hours", "48"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, 48, configStore.GetInt("reminder.cooldown_hours"))
}

func TestConfigGet_UnknownKeyFails(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"config", "get", "nope"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "key not set")
}
