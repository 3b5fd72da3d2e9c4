package selection

import (
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	require.NoError(t, png.Encode(f, img))
}

func writeGIF(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})
	require.NoError(t, gif.Encode(f, img, nil))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "photo.PNG")
	writePNG(t, pngPath)
	gifPath := filepath.Join(dir, "loop.gif")
	writeGIF(t, gifPath)
	songPath := filepath.Join(dir, "song.mp3")
	require.NoError(t, os.WriteFile(songPath, []byte("not really audio"), 0o644))
	notePath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notePath, []byte("hello"), 0o644))

	t.Run("png", func(t *testing.T) {
		it, err := Load(pngPath)
		require.NoError(t, err)
		assert.Equal(t, "photo.PNG", it.Name)
		assert.Equal(t, "png", it.Ext)
		assert.Equal(t, "image/png", it.MimeType)
		assert.True(t, it.IsImage)
		assert.False(t, it.IsVideo)
		assert.Len(t, it.Checksum, 64)
	})

	t.Run("gif is an animated video", func(t *testing.T) {
		it, err := Load(gifPath)
		require.NoError(t, err)
		assert.True(t, it.IsAnimated)
		assert.True(t, it.IsVideo)
		assert.False(t, it.IsImage)
	})

	t.Run("audio by extension", func(t *testing.T) {
		it, err := Load(songPath)
		require.NoError(t, err)
		assert.True(t, it.IsAudio)
		assert.False(t, it.IsImage)
	})

	t.Run("plain document", func(t *testing.T) {
		it, err := Load(notePath)
		require.NoError(t, err)
		assert.False(t, it.IsImage || it.IsVideo || it.IsAudio || it.IsAnimated)
	})

	t.Run("directory rejected", func(t *testing.T) {
		_, err := Load(dir)
		assert.ErrorIs(t, err, ErrIsDirectory)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.jpg"))
		assert.Error(t, err)
	})
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writePNG(t, a)
	writePNG(t, b)

	items, err := LoadAll([]string{b, a})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b.png", items[0].Name)
	assert.Equal(t, "a.png", items[1].Name)
	assert.Equal(t, []string{"png", "png"}, Exts(items))

	_, err = LoadAll(nil)
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = LoadAll([]string{a, filepath.Join(dir, "nope.png")})
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(p, []byte("one"), 0o644))

	it, err := Load(p)
	require.NoError(t, err)

	ok, err := it.Verify()
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, os.WriteFile(p, []byte("two"), 0o644))
	ok, err = it.Verify()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyAll(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("two"), 0o644))
	items, err := LoadAll([]string{a, b})
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(t *testing.T)
		items   []Item
		wantErr error
	}{
		{name: "unchanged", items: items},
		{name: "no checksum", items: []Item{{Name: "x", Path: filepath.Join(dir, "missing")}}},
		{
			name:    "rewritten",
			mutate:  func(t *testing.T) { require.NoError(t, os.WriteFile(b, []byte("changed"), 0o644)) },
			items:   items,
			wantErr: ErrChanged,
		},
		{
			name:    "removed",
			mutate:  func(t *testing.T) { require.NoError(t, os.Remove(a)) },
			items:   items,
			wantErr: os.ErrNotExist,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.mutate != nil {
				tt.mutate(t)
			}
			err := VerifyAll(tt.items)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
