package media

import (
	"image"

	"github.com/rescp17/previewsender/pkg/classify"
	"github.com/rescp17/previewsender/pkg/selection"
)

// Media is a renderable object derived from one selected file.
type Media struct {
	ID       string `json:"id"`
	Path     string `json:"-"`
	Name     string `json:"name"`
	Ext      string `json:"ext"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	AsFile   bool   `json:"as_file"`

	Photo    bool `json:"photo"`
	Video    bool `json:"video"`
	Animated bool `json:"animated"`
	Music    bool `json:"music"`

	// Width and Height are the source dimensions for decodable images.
	Width     int         `json:"width,omitempty"`
	Height    int         `json:"height,omitempty"`
	Thumbnail image.Image `json:"-"`
}

// Traits returns the classification view of m.
func (m Media) Traits() classify.Traits {
	return classify.Traits{
		Ext:      m.Ext,
		Photo:    m.Photo,
		Video:    m.Video,
		Animated: m.Animated,
		Music:    m.Music,
	}
}

// TraitsOf maps every media to its traits.
func TraitsOf(items []Media) []classify.Traits {
	out := make([]classify.Traits, len(items))
	for i, m := range items {
		out[i] = m.Traits()
	}
	return out
}

// fromItem builds the media skeleton for it. As a file, the object keeps
// no media traits and is delivered as a plain document.
func fromItem(it selection.Item, asFile bool) Media {
	m := Media{
		ID:       it.Checksum,
		Path:     it.Path,
		Name:     it.Name,
		Ext:      it.Ext,
		MimeType: it.MimeType,
		Size:     it.Size,
		AsFile:   asFile,
	}
	if asFile {
		return m
	}
	m.Photo = it.IsImage
	m.Video = it.IsVideo
	m.Animated = it.IsAnimated
	m.Music = it.IsAudio
	return m
}
