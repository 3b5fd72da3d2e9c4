package classify

import (
	"fmt"
	"strings"
)

// Category is the header label a selection is presented under.
type Category int

const (
	Files Category = iota
	Photo
	Video
	Gif
	Audio
	Media
)

func (c Category) String() string {
	switch c {
	case Photo:
		return "photo"
	case Video:
		return "video"
	case Gif:
		return "gif"
	case Audio:
		return "audio"
	case Media:
		return "media"
	default:
		return "files"
	}
}

// Collage bounds, inclusive.
const (
	MinCollageItems = 2
	MaxCollageItems = 10
)

// Traits describes one derived media object for classification purposes.
// Photo is set when the object was derived as a still image; the remaining
// flags describe a derived file.
type Traits struct {
	Ext      string
	Photo    bool
	Video    bool
	Animated bool
	Music    bool
}

// Result is the outcome of Classify.
type Result struct {
	Category Category
	Collage  bool
}

// Classify picks the header category for a set of derived media and reports
// whether the set may be sent as a collage. asFile marks a file-mode
// rendering, which is never collage-eligible.
func Classify(items []Traits, asFile bool) Result {
	n := len(items)
	if n == 0 {
		return Result{Category: Files}
	}

	var (
		photos   int
		files    []Traits
		category Category
		isPhotos bool
		isMedia  bool
	)
	for _, it := range items {
		if it.Photo {
			photos++
		} else {
			files = append(files, it)
		}
	}

	if photos == n {
		category = Photo
		isPhotos = true
	} else {
		viewable := 0
		for _, f := range files {
			if (f.Video && !f.Animated) || IsPhotoExt(f.Ext) || IsVideoExt(f.Ext) {
				viewable++
			}
		}
		isMedia = viewable == n || viewable == len(files)

		mixed := func(c Category) Category {
			if photos > 0 {
				return Media
			}
			return c
		}

		switch {
		case countFiles(files, func(f Traits) bool { return f.Music }) == len(files):
			category = mixed(Audio)
		case countFiles(files, func(f Traits) bool { return f.Video && !f.Animated }) == len(files):
			category = mixed(Video)
		case countFiles(files, func(f Traits) bool { return f.Video && f.Animated }) == len(files):
			category = mixed(Gif)
		case countFiles(files, func(f Traits) bool { return !f.Video || !f.Animated || f.Music }) != n:
			category = Media
		default:
			category = Files
		}
	}

	return Result{
		Category: category,
		Collage:  !asFile && (isPhotos || isMedia) && n >= MinCollageItems && n <= MaxCollageItems,
	}
}

func countFiles(files []Traits, pred func(Traits) bool) int {
	c := 0
	for _, f := range files {
		if pred(f) {
			c++
		}
	}
	return c
}

// Title renders the dialog header for n items of the given category.
func Title(c Category, n int) string {
	var one, many string
	switch c {
	case Photo:
		one, many = "Photo", "Photos"
	case Video:
		one, many = "Video", "Videos"
	case Gif:
		one, many = "GIF", "GIFs"
	case Audio:
		one, many = "Audio File", "Audio Files"
	case Media:
		one, many = "Media File", "Media Files"
	default:
		one, many = "File", "Files"
	}
	if n == 1 {
		return "Send 1 " + one
	}
	return fmt.Sprintf("Send %d %s", n, many)
}

var (
	photoExts    = extSet("jpg", "jpeg", "png", "tiff", "tif", "webp", "bmp", "heic")
	videoExts    = extSet("mp4", "mov", "avi", "m4v", "mkv", "webm", "gif")
	audioExts    = extSet("mp3", "m4a", "ogg", "oga", "opus", "wav", "flac", "aac")
	animatedExts = extSet("gif")
)

func extSet(exts ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		m[e] = struct{}{}
	}
	return m
}

// NormalizeExt lower-cases ext and strips a leading dot.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func IsPhotoExt(ext string) bool    { _, ok := photoExts[NormalizeExt(ext)]; return ok }
func IsVideoExt(ext string) bool    { _, ok := videoExts[NormalizeExt(ext)]; return ok }
func IsAudioExt(ext string) bool    { _, ok := audioExts[NormalizeExt(ext)]; return ok }
func IsAnimatedExt(ext string) bool { _, ok := animatedExts[NormalizeExt(ext)]; return ok }

// CanCollageExts reports whether a selection with these extensions may open
// directly in collage mode.
func CanCollageExts(exts []string) bool {
	if len(exts) < MinCollageItems || len(exts) > MaxCollageItems {
		return false
	}
	for _, e := range exts {
		if !IsPhotoExt(e) && !IsVideoExt(e) {
			return false
		}
	}
	return true
}
