package chat

import (
	"time"

	"github.com/rescp17/previewsender/pkg/media"
)

const (
	serviceIDHeader = "X-Service-ID"

	textPath  = "/messages"
	mediaPath = "/media"

	manifestField = "manifest"
	filePrefix    = "file-"
)

// TextMessage is a standalone chat message.
type TextMessage struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// MediaManifest describes a media upload. Files follow in form parts named
// "file-<index>" in manifest order.
type MediaManifest struct {
	ID      string      `json:"id"`
	Caption string      `json:"caption,omitempty"`
	Grouped bool        `json:"grouped"`
	Items   []MediaItem `json:"items"`
	SentAt  time.Time   `json:"sent_at"`
}

// MediaItem is the wire form of one media.Media.
type MediaItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Kind     string `json:"kind"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

func kindOf(m media.Media) string {
	switch {
	case m.AsFile:
		return "document"
	case m.Photo:
		return "photo"
	case m.Animated:
		return "animation"
	case m.Video:
		return "video"
	case m.Music:
		return "audio"
	default:
		return "document"
	}
}

func itemOf(m media.Media) MediaItem {
	return MediaItem{
		ID:       m.ID,
		Name:     m.Name,
		MimeType: m.MimeType,
		Size:     m.Size,
		Kind:     kindOf(m),
		Width:    m.Width,
		Height:   m.Height,
	}
}
