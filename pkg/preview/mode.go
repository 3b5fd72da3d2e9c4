package preview

import (
	"github.com/rescp17/previewsender/pkg/classify"
	"github.com/rescp17/previewsender/pkg/selection"
)

// SendMode selects how the selection is rendered and delivered.
type SendMode int

const (
	ModeMedia SendMode = iota
	ModeFile
	ModeCollage
)

// Modes lists every send mode in display order.
var Modes = []SendMode{ModeMedia, ModeFile, ModeCollage}

func (m SendMode) String() string {
	switch m {
	case ModeFile:
		return "file"
	case ModeCollage:
		return "collage"
	default:
		return "media"
	}
}

// AsFile reports whether media for m is derived as plain documents.
func (m SendMode) AsFile() bool { return m == ModeFile }

// Grouped reports whether m delivers the media as one album.
func (m SendMode) Grouped() bool { return m == ModeCollage }

// Preferences is the persisted "fast settings" the dialog reads and updates.
type Preferences interface {
	PreferCollage() bool
	SetPreferCollage(bool)
}

// MemoryPreferences keeps the collage preference in memory only.
type MemoryPreferences struct {
	Collage bool
}

func (p *MemoryPreferences) PreferCollage() bool     { return p.Collage }
func (p *MemoryPreferences) SetPreferCollage(v bool) { p.Collage = v }

// DefaultMode picks the mode the dialog opens in.
func DefaultMode(items []selection.Item, asMedia, preferCollage bool) SendMode {
	if !asMedia {
		return ModeFile
	}
	if preferCollage && classify.CanCollageExts(selection.Exts(items)) {
		return ModeCollage
	}
	return ModeMedia
}
