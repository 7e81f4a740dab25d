package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `{"file":"a.flac","analysis":{"summary":{"genre":"funk","suggestion_count":2,"worst_severity":"fix","overall":40},"suggestions":[{"type":"loudness","theme":"loudness","severity":"fix","message":"Too loud.","action":"Back off the limiter.","priority":2.4,"confidence":1},{"type":"band","subtype":"low_mid","theme":"mids","severity":"watch","message":"Muddy.","action":"Cut 300 Hz.","priority":0.6,"confidence":0.8}]}}
{"file":"b.flac","analysis":{"summary":{"genre":"funk","suggestion_count":1,"worst_severity":"adjust","overall":60},"suggestions":[{"type":"loudness","theme":"loudness","severity":"adjust","message":"Loud.","action":"Ease the limiter.","priority":1.5,"confidence":1}]}}
{"file":"c.flac","error":"probing file: missing requirements"}
not json
`

func writeReport(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "report.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sampleReport), 0o600))

	return path
}

func TestDigest(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	require.NoError(t, runDigest(&out, writeReport(t), ""))

	text := out.String()
	assert.Contains(t, text, "Total tracks:  4")
	assert.Contains(t, text, "Failed:        2")
	assert.Contains(t, text, "Mean overall:  50/100")
	assert.Contains(t, text, "  Fix:     1")
	assert.Contains(t, text, "  Adjust:  1")
	assert.Contains(t, text, "total: 2  fix: 1  adjust: 1  watch: 0")
	assert.Contains(t, text, "band/low_mid")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("loudness    ")), bytes.Index(out.Bytes(), []byte("band/low_mid")))
}

func TestDigestThemeFilter(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	require.NoError(t, runDigest(&out, writeReport(t), "loudness"))

	text := out.String()
	assert.Contains(t, text, "=== loudness: 2 suggestions ===")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("a.flac")), bytes.Index(out.Bytes(), []byte("b.flac")))

	out.Reset()
	require.NoError(t, runDigest(&out, writeReport(t), "stereo"))
	assert.Contains(t, out.String(), "No suggestions in theme stereo")
}

func TestDigestMissingFile(t *testing.T) {
	t.Parallel()

	require.Error(t, runDigest(&bytes.Buffer{}, filepath.Join(t.TempDir(), "nope.jsonl"), ""))
}

func TestCollectAudioFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "album"), 0o755))

	for _, name := range []string{"b.WAV", "album/a.flac", "notes.txt", "cover.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0o600))
	}

	files, err := collectAudioFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "album", "a.flac"), filepath.Join(root, "b.WAV")}, files)
}
