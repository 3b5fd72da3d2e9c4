package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func photo(ext string) Traits { return Traits{Ext: ext, Photo: true} }
func video(ext string) Traits { return Traits{Ext: ext, Video: true} }
func gif() Traits             { return Traits{Ext: "gif", Video: true, Animated: true} }
func music(ext string) Traits { return Traits{Ext: ext, Music: true} }
func doc(ext string) Traits   { return Traits{Ext: ext} }

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		items    []Traits
		asFile   bool
		category Category
		collage  bool
	}{
		{"two photos", []Traits{photo("jpg"), photo("jpg")}, false, Photo, true},
		{"single photo", []Traits{photo("png")}, false, Photo, false},
		{"two songs", []Traits{music("mp3"), music("mp3")}, false, Audio, false},
		{"photo and video", []Traits{photo("jpg"), video("mp4")}, false, Media, true},
		{"photo and song", []Traits{photo("jpg"), music("mp3")}, false, Media, false},
		{"two videos", []Traits{video("mp4"), video("mov")}, false, Video, true},
		{"two gifs", []Traits{gif(), gif()}, false, Gif, true},
		{"photo and gif", []Traits{photo("jpg"), gif()}, false, Media, true},
		{"gif and document", []Traits{gif(), doc("pdf")}, false, Media, false},
		{"documents", []Traits{doc("pdf"), doc("zip")}, false, Files, false},
		{"video and document", []Traits{video("mp4"), doc("pdf")}, false, Files, false},
		{"images as files", []Traits{doc("jpg"), doc("png")}, true, Files, false},
		{"empty", nil, false, Files, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.items, tt.asFile)
			assert.Equal(t, tt.category, got.Category, "category")
			assert.Equal(t, tt.collage, got.Collage, "collage")
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	items := []Traits{photo("jpg"), video("mp4"), gif()}
	first := Classify(items, false)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(items, false))
	}
}

func TestClassifyCollageBounds(t *testing.T) {
	for n := 0; n <= 12; n++ {
		items := make([]Traits, n)
		for i := range items {
			items[i] = photo("jpg")
		}
		got := Classify(items, false)
		assert.Equal(t, n >= MinCollageItems && n <= MaxCollageItems, got.Collage, "n=%d", n)
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Send 1 Photo", Title(Photo, 1))
	assert.Equal(t, "Send 3 Photos", Title(Photo, 3))
	assert.Equal(t, "Send 2 GIFs", Title(Gif, 2))
	assert.Equal(t, "Send 4 Files", Title(Files, 4))
	assert.Equal(t, "Send 2 Media Files", Title(Media, 2))
}

func TestExtensionTables(t *testing.T) {
	assert.True(t, IsPhotoExt("JPG"))
	assert.True(t, IsPhotoExt(".jpeg"))
	assert.True(t, IsVideoExt("mp4"))
	assert.True(t, IsVideoExt("gif"))
	assert.True(t, IsAnimatedExt("gif"))
	assert.True(t, IsAudioExt("mp3"))
	assert.False(t, IsPhotoExt("pdf"))
	assert.False(t, IsAudioExt("mp4"))
}

func TestCanCollageExts(t *testing.T) {
	assert.True(t, CanCollageExts([]string{"jpg", "mp4"}))
	assert.False(t, CanCollageExts([]string{"jpg"}))
	assert.False(t, CanCollageExts([]string{"jpg", "pdf"}))

	many := make([]string, MaxCollageItems+1)
	for i := range many {
		many[i] = "png"
	}
	assert.False(t, CanCollageExts(many))
}
