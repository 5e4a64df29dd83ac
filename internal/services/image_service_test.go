package services

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"church-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jpegBytes is a fake payload; content is irrelevant to the storage layer.
var jpegBytes = bytes.Repeat([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x42}, 100)

func newImageFixture(t *testing.T) (*ImageService, string, string) {
	t.Helper()
	root := t.TempDir()
	primary := filepath.Join(root, "uploads")
	mirror := filepath.Join(root, "persistent")
	svc := NewImageService(newTestDB(t), nil, primary, mirror)
	return svc, primary, mirror
}

func TestStoreAndReadRoundTrip(t *testing.T) {
	svc, primary, mirror := newImageFixture(t)

	blob, err := svc.Store("file", "banner.jpg", "image/jpeg", jpegBytes)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^file-\d+-[0-9A-F]{4}\.jpg$`), blob.Filename)
	assert.Equal(t, int64(len(jpegBytes)), blob.Size)

	data, mime, err := svc.Read(blob.Filename)
	require.NoError(t, err)
	assert.Equal(t, jpegBytes, data)
	assert.Equal(t, "image/jpeg", mime)

	// primary written synchronously, mirror synchronously because no queue
	for _, dir := range []string{primary, mirror} {
		onDisk, err := os.ReadFile(filepath.Join(dir, blob.Filename))
		require.NoError(t, err)
		assert.Equal(t, jpegBytes, onDisk)
	}
}

func TestStoreRejectsBadInput(t *testing.T) {
	svc, _, _ := newImageFixture(t)

	_, err := svc.Store("file", "script.exe", "application/octet-stream", jpegBytes)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Store("file", "empty.jpg", "image/jpeg", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReadFallsBackToFilesystem(t *testing.T) {
	svc, primary, _ := newImageFixture(t)

	// a file that exists on disk but was never uploaded through the service
	require.NoError(t, os.MkdirAll(primary, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(primary, "legacy.png"), jpegBytes, 0o644))

	data, mime, err := svc.Read("legacy.png")
	require.NoError(t, err)
	assert.Equal(t, jpegBytes, data)
	assert.Equal(t, "image/png", mime)

	_, _, err = svc.Read("missing-everywhere.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadRejectsPathTraversal(t *testing.T) {
	svc, _, _ := newImageFixture(t)
	_, _, err := svc.Read("../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadRewarmsPrimaryMirror(t *testing.T) {
	svc, primary, _ := newImageFixture(t)

	blob, err := svc.Store("file", "logo.jpg", "image/jpeg", jpegBytes)
	require.NoError(t, err)

	// simulate the host wiping ephemeral disk
	require.NoError(t, os.RemoveAll(primary))

	data, _, err := svc.Read(blob.Filename)
	require.NoError(t, err)
	assert.Equal(t, jpegBytes, data)

	rewarmed, err := os.ReadFile(filepath.Join(primary, blob.Filename))
	require.NoError(t, err)
	assert.Equal(t, jpegBytes, rewarmed)
}

func TestRestoreMirrorsIsIdempotent(t *testing.T) {
	svc, primary, mirror := newImageFixture(t)

	first, err := svc.Store("file", "a.jpg", "image/jpeg", jpegBytes)
	require.NoError(t, err)
	second, err := svc.Store("file", "b.png", "image/png", jpegBytes)
	require.NoError(t, err)

	// wipe one mirror entirely and truncate a file in the other
	require.NoError(t, os.RemoveAll(mirror))
	require.NoError(t, os.WriteFile(filepath.Join(primary, first.Filename), []byte("trunc"), 0o644))

	report := svc.RestoreMirrors()
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Restored)
	assert.Equal(t, 0, report.Errors)

	restored, err := os.ReadFile(filepath.Join(primary, first.Filename))
	require.NoError(t, err)
	assert.Equal(t, jpegBytes, restored)
	_, err = os.Stat(filepath.Join(mirror, second.Filename))
	require.NoError(t, err)

	// nothing left to do on the second pass
	report = svc.RestoreMirrors()
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 0, report.Restored)
	assert.Equal(t, 0, report.Errors)
}

func TestPurgeRemovesBlobAndMirrors(t *testing.T) {
	svc, primary, mirror := newImageFixture(t)

	blob, err := svc.Store("file", "old.jpg", "image/jpeg", jpegBytes)
	require.NoError(t, err)

	require.NoError(t, svc.Purge(blob.Filename))

	_, _, err = svc.Read(blob.Filename)
	assert.ErrorIs(t, err, ErrNotFound)
	for _, dir := range []string{primary, mirror} {
		_, statErr := os.Stat(filepath.Join(dir, blob.Filename))
		assert.True(t, os.IsNotExist(statErr))
	}

	assert.ErrorIs(t, svc.Purge(blob.Filename), ErrNotFound)
}

func TestSyncMirrorsUnknownFile(t *testing.T) {
	svc, _, _ := newImageFixture(t)
	assert.ErrorIs(t, svc.SyncMirrors("nope.jpg"), ErrNotFound)
}

func TestHelperLogCallbackSurvivesOddPayloads(t *testing.T) {
	db := newTestDB(t)
	helper := newTestHelper(db)

	helper.LogCallback("mpesa", "DON-1-ABCDEF01", "completed", true, map[string]interface{}{"ok": true})
	helper.LogCallback("tigopesa", "", "unparseable", false, "raw string body")

	var logs []models.CallbackLog
	require.NoError(t, db.Find(&logs).Error)
	assert.Len(t, logs, 2)
}
