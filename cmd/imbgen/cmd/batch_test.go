package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBatchCommand_EncodesFile(t *testing.T) {
	csvFile := writeTempCSV(t, "mailing.csv",
		"mailer_id,sequence,routing_code\n"+
			"123456,1,900123456\n"+
			"123456,2,\n")
	outFile := filepath.Join(t.TempDir(), "out.txt")

	_, err := executeCommand(t, "batch", csvFile,
		"--barcode-id", "00",
		"--service-type", "040",
		"--quiet",
		"--format", "text",
		"--output", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	output := string(data)
	assert.Contains(t, output, "00040123456000000001")
	assert.Contains(t, output, "TTFTFFAAFFADDFAATATDDFFDDDADAAFDAFADTADAFFTAFATTTDTAFDFDTDDTFTDAF")
	assert.Contains(t, output, "2 encoded, 0 failed")

	require.NoError(t, batchCmd.Flags().Set("output", ""))
	require.NoError(t, batchCmd.Flags().Set("quiet", "false"))
}

func TestBatchCommand_RowErrorsReported(t *testing.T) {
	csvFile := writeTempCSV(t, "mailing.csv",
		"mailer_id,sequence\n"+
			"123456,1\n"+
			"12345,2\n")
	outFile := filepath.Join(t.TempDir(), "out.csv")

	_, err := executeCommand(t, "batch", csvFile,
		"--barcode-id", "00",
		"--service-type", "040",
		"--quiet",
		"--format", "csv",
		"--output", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	output := string(data)
	assert.Contains(t, output, "invalid_mailer_id_length")

	require.NoError(t, batchCmd.Flags().Set("output", ""))
	require.NoError(t, batchCmd.Flags().Set("format", "text"))
	require.NoError(t, batchCmd.Flags().Set("quiet", "false"))
}

func TestBatchCommand_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.csv")
	output, err := executeCommand(t, "batch", missing, "--quiet")
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(output+err.Error()), "batch encoding failed")

	require.NoError(t, batchCmd.Flags().Set("quiet", "false"))
}

func TestBatchCommand_RequiresArgs(t *testing.T) {
	_, err := executeCommand(t, "batch")
	require.Error(t, err)
}

func TestConfigToBatchConfig_Defaults(t *testing.T) {
	cfg := GetConfig()
	bc := configToBatchConfig(cfg, batchCmd)

	assert.Equal(t, "00", bc.BarcodeID)
	assert.Equal(t, "040", bc.ServiceType)
	assert.Equal(t, "utf-8", bc.Charset)
	assert.Positive(t, bc.Workers)
	assert.True(t, bc.ContinueOnError)
	assert.Equal(t, "sequence", bc.Columns.Sequence)
}
