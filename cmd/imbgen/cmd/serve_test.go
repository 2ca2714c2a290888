package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommand_Registered(t *testing.T) {
	assert.Equal(t, "serve", serveCmd.Name())
	assert.NotNil(t, serveCmd.Flags().Lookup("host"))
	assert.NotNil(t, serveCmd.Flags().Lookup("port"))
	assert.NotNil(t, serveCmd.Flags().Lookup("rate-limit"))
	assert.NotNil(t, serveCmd.Flags().Lookup("max-batch-size"))
}

func TestServeCommand_InvalidPort(t *testing.T) {
	_, err := executeCommand(t, "serve", "--port", "70000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port number")

	require.NoError(t, serveCmd.Flags().Set("port", "8080"))
}
