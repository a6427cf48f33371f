package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewRootCommand_Subcommands verifies every lifecycle command is
// registered on the root.
func TestNewRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()

	expected := []string{"init", "up", "status", "stop", "down", "monitor"}
	names := make(map[string]bool)
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}

	for _, name := range expected {
		assert.True(t, names[name], "subcommand %q must be registered", name)
	}
}

// TestNewRootCommand_PersistentFlags verifies the global flags are
// declared on the root so every subcommand inherits them.
func TestNewRootCommand_PersistentFlags(t *testing.T) {
	root := NewRootCommand()
	flags := root.PersistentFlags()

	require.NotNil(t, flags.Lookup("json"))
	require.NotNil(t, flags.Lookup("verbose"))

	file := flags.Lookup("file")
	require.NotNil(t, file)
	assert.Equal(t, "f", file.Shorthand)
}
