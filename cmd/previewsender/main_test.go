package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rescp17/previewsender/pkg/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 2, 2))))
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writePNG(t, a)
	writePNG(t, b)
	cfgPath := filepath.Join(dir, "config.yaml")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"photos", []string{"classify", a, b}, []string{"Send 2 Photos", "mode: media", "category: photo", "collage: true", "image/png"}},
		{"as files", []string{"classify", "--as-file", a, b}, []string{"Send 2 Files", "mode: file", "collage: false"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCmd(t, append(tt.args, "--config", cfgPath)...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestClassifyCommand_RequiresPaths(t *testing.T) {
	_, err := runCmd(t, "classify", "--config", filepath.Join(t.TempDir(), "c.yaml"))
	assert.Error(t, err)
}

func TestClassifyCommand_MissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := runCmd(t, "classify", filepath.Join(dir, "nope.png"), "--config", filepath.Join(dir, "c.yaml"))
	assert.Error(t, err)
}

func TestPrintReceived(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	var out bytes.Buffer
	printReceived(&out, chat.Received{From: "peer", Text: &chat.TextMessage{Text: "hello"}, Received: at})
	assert.Equal(t, "[12:30:00] peer: hello\n", out.String())

	out.Reset()
	printReceived(&out, chat.Received{
		From:     "peer",
		Received: at,
		Media: &chat.MediaManifest{
			Grouped: true,
			Caption: "trip",
			Items:   []chat.MediaItem{{Name: "a.jpg", Kind: "photo", Size: 10}},
		},
		Files: []string{"/tmp/x/0-a.jpg"},
	})
	assert.Equal(t, "[12:30:00] peer: album of 1 item(s) \"trip\"\n  - a.jpg (photo, 10 bytes) -> /tmp/x/0-a.jpg\n", out.String())
}
