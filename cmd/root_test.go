package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"serve", "report", "reports", "simulate", "kpis", "wards", "export", "migrate"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "cityanalytics", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestSimulateCommand_Flags(t *testing.T) {
	for name, def := range map[string]string{"traffic": "5", "police": "5", "weather": "Clear", "json": "false"} {
		flag := simulateCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "simulate should have --%s", name)
		assert.Equal(t, def, flag.DefValue, name)
	}
}

func TestKPIsAndExportCommand_WardFlag(t *testing.T) {
	for _, name := range []string{"kpis", "export"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		flag := cmd.Flags().Lookup("ward")
		require.NotNil(t, flag, name)
		assert.Equal(t, "All", flag.DefValue)
	}
}

func TestReportsCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range reportsCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["show"])
}

func TestWardsCommand_Flags(t *testing.T) {
	for _, name := range []string{"all-datasets", "summary"} {
		flag := wardsCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "false", flag.DefValue)
	}
}
