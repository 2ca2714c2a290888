package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelftestCommand(t *testing.T) {
	output, err := executeCommand(t, "selftest")
	require.NoError(t, err)
	assert.Contains(t, output, "All 4 reference vectors passed")
	assert.NotContains(t, output, "FAIL")
}
