package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPurgeCommandStructure(t *testing.T) {
	assert.NotNil(t, purgeCmd)
	assert.Equal(t, "purge", purgeCmd.Use)
	assert.NotEmpty(t, purgeCmd.Short)
	assert.Contains(t, purgeCmd.Long, "WARNING")
	assert.NotNil(t, purgeCmd.RunE)
}

func TestPurgeCommandFlags(t *testing.T) {
	flags := purgeCmd.Flags()

	yesFlag := flags.Lookup("yes")
	assert.NotNil(t, yesFlag)
	assert.Equal(t, "false", yesFlag.DefValue)

	forceFlag := flags.Lookup("force")
	assert.NotNil(t, forceFlag)
	assert.Equal(t, "false", forceFlag.DefValue)
}

func TestPurgeRequiresConfirmation(t *testing.T) {
	originalYes := purgeYes
	defer func() {
		purgeYes = originalYes
	}()
	purgeYes = false

	err := runPurge(purgeCmd, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestPurgeIsAddedToRoot(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "purge" {
			found = true
			break
		}
	}
	assert.True(t, found, "purge command should be added to root command")
}
