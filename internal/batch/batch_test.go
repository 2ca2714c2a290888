package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postalworks/imbgen/internal/imb"
)

func TestProcessBatch_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mailing.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"barcode_id,service_type,mailer_id,sequence,routing_code\n"+
			"00,040,123456,1,900123456\n"+
			"00,040,123456,2,\n"), 0o600))

	cfg := &Config{Workers: 2, ContinueOnError: true}
	result, err := ProcessBatch(context.Background(), []string{path}, cfg)
	require.NoError(t, err)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, 2, result.Encoded())
	assert.Zero(t, result.Failed())
	assert.Equal(t, []string{path}, result.Files)
	assert.Equal(t,
		"TTFTFFAAFFADDFAATATDDFFDDDADAAFDAFADTADAFFTAFATTTDTAFDFDTDDTFTDAF",
		result.Rows[0].Result.Barcode)
}

func TestProcessBatch_ContinueOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mailing.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"barcode_id,service_type,mailer_id,sequence\n"+
			"00,040,123456,1\n"+
			"00,999,123456,2\n"+
			"00,040,123456,3\n"), 0o600))

	cfg := &Config{Workers: 1, ContinueOnError: true}
	result, err := ProcessBatch(context.Background(), []string{path}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Encoded())
	assert.Equal(t, 1, result.Failed())
	assert.Equal(t, imb.ErrInvalidServiceType, result.Rows[1].ErrCode)
}

func TestProcessBatch_FailFast(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mailing.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"barcode_id,service_type,mailer_id,sequence\n"+
			"00,999,123456,1\n"), 0o600))

	cfg := &Config{Workers: 1, ContinueOnError: false}
	result, err := ProcessBatch(context.Background(), []string{path}, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mailing.csv:2")
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Failed())
}

func TestProcessBatch_CustomServiceTypes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mailing.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"service_type,sequence\n961,1\n040,2\n"), 0o600))

	cfg := &Config{
		BarcodeID:    "00",
		MailerID:     "123456",
		Workers:      1,
		ServiceTypes: map[string]string{"961": "Test Mail"},
	}
	result, err := ProcessBatch(context.Background(), []string{path}, cfg)
	require.NoError(t, err)
	// The built-in registry stays available alongside the addition.
	assert.Equal(t, 2, result.Encoded())
}

func TestProcessBatch_NoFiles(t *testing.T) {
	_, err := ProcessBatch(context.Background(), []string{t.TempDir()}, &Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no mailing list files found")
}

func TestProcessBatch_EmptyList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mailing.csv")
	require.NoError(t, os.WriteFile(path, []byte("sequence\n"), 0o600))

	_, err := ProcessBatch(context.Background(), []string{path}, &Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no records found")
}
