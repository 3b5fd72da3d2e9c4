package selection

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rescp17/previewsender/pkg/classify"
)

var (
	ErrEmptySelection = errors.New("selection is empty")
	ErrIsDirectory    = errors.New("path is a directory")
)

// Item is one file the user picked, with the flags used to pick a default
// send mode.
type Item struct {
	Path       string `json:"-"`
	Name       string `json:"name"`
	Ext        string `json:"ext"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mime_type,omitempty"`
	Checksum   string `json:"checksum,omitempty"`
	IsImage    bool   `json:"is_image"`
	IsVideo    bool   `json:"is_video"`
	IsAnimated bool   `json:"is_animated"`
	IsAudio    bool   `json:"is_audio"`
}

// Load stats path, sniffs its mime type and computes its checksum.
func Load(path string) (Item, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Item{}, err
	}
	if info.IsDir() {
		return Item{}, fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}

	item := Item{
		Path: path,
		Name: info.Name(),
		Ext:  classify.NormalizeExt(filepath.Ext(path)),
		Size: info.Size(),
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		item.MimeType = "application/octet-stream"
	} else {
		item.MimeType = mime.String()
	}
	item.setFlags()

	sum, err := calculateSHA256(path)
	if err != nil {
		return Item{}, fmt.Errorf("checksum %s: %w", path, err)
	}
	item.Checksum = sum
	return item, nil
}

// LoadAll loads every path in order. It fails on the first unreadable path.
func LoadAll(paths []string) ([]Item, error) {
	if len(paths) == 0 {
		return nil, ErrEmptySelection
	}
	items := make([]Item, 0, len(paths))
	for _, p := range paths {
		it, err := Load(p)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", p, err)
		}
		items = append(items, it)
	}
	return items, nil
}

// setFlags combines the sniffed mime type with the extension tables. The
// extension wins when the sniffer only reports a generic type.
func (it *Item) setFlags() {
	mime := it.MimeType
	it.IsAnimated = mime == "image/gif" || classify.IsAnimatedExt(it.Ext)
	it.IsImage = !it.IsAnimated && (strings.HasPrefix(mime, "image/") || classify.IsPhotoExt(it.Ext))
	it.IsVideo = it.IsAnimated || strings.HasPrefix(mime, "video/") || classify.IsVideoExt(it.Ext)
	it.IsAudio = !it.IsVideo && (strings.HasPrefix(mime, "audio/") || classify.IsAudioExt(it.Ext))
}

// Exts returns the extension of every item, in order.
func Exts(items []Item) []string {
	exts := make([]string, len(items))
	for i, it := range items {
		exts[i] = it.Ext
	}
	return exts
}
