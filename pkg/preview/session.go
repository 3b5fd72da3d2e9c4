package preview

import (
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/rescp17/previewsender/pkg/classify"
	"github.com/rescp17/previewsender/pkg/media"
	"github.com/rescp17/previewsender/pkg/selection"
)

// DefaultCaptionLimit is the maximum caption length in runes.
const DefaultCaptionLimit = 200

var (
	ErrNotReady           = errors.New("media for the current mode is not ready")
	ErrCollageUnavailable = errors.New("selection cannot be sent as a collage")
	ErrUnknownMode        = errors.New("unknown send mode")
	ErrSent               = errors.New("selection is already being sent")
)

// Phase is the derivation state of the session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDeriving
	PhaseReady
	PhaseFailed
	PhaseSending
	PhaseSent
)

func (p Phase) String() string {
	switch p {
	case PhaseDeriving:
		return "deriving"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	case PhaseSending:
		return "sending"
	case PhaseSent:
		return "sent"
	default:
		return "idle"
	}
}

// Ticket identifies one derivation request. Only the most recent ticket is
// accepted by Resolve and Fail.
type Ticket struct {
	Mode  SendMode
	Items []selection.Item
	gen   uint64
	order []int
}

// Options configures a Session.
type Options struct {
	AsMedia      bool
	Preferences  Preferences
	CaptionLimit int
}

// Session is the presentation-agnostic state of one preview dialog. It is
// owned by a single goroutine and is not safe for concurrent use.
type Session struct {
	items        []selection.Item
	order        []int // order[pos] is the original index of items[pos]
	mode         SendMode
	phase        Phase
	gen          uint64
	err          error
	cache        *Cache
	caption      string
	captionLimit int
	prefs        Preferences
	collageOK    bool
}

// NewSession creates a session for items. The initial mode follows
// opts.AsMedia and the stored collage preference.
func NewSession(items []selection.Item, opts Options) (*Session, error) {
	if len(items) == 0 {
		return nil, selection.ErrEmptySelection
	}
	prefs := opts.Preferences
	if prefs == nil {
		prefs = &MemoryPreferences{}
	}
	limit := opts.CaptionLimit
	if limit <= 0 {
		limit = DefaultCaptionLimit
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	s := &Session{
		items:        append([]selection.Item(nil), items...),
		order:        order,
		cache:        NewCache(),
		captionLimit: limit,
		prefs:        prefs,
	}
	s.collageOK = classify.Classify(itemTraits(s.items), false).Collage
	s.mode = DefaultMode(s.items, opts.AsMedia, prefs.PreferCollage())
	if s.mode == ModeCollage && !s.collageOK {
		s.mode = ModeMedia
	}
	return s, nil
}

func (s *Session) Mode() SendMode         { return s.mode }
func (s *Session) Phase() Phase           { return s.phase }
func (s *Session) Err() error             { return s.err }
func (s *Session) Caption() string        { return s.caption }
func (s *Session) CaptionLimit() int      { return s.captionLimit }
func (s *Session) CollageAvailable() bool { return s.collageOK }
func (s *Session) Cache() *Cache          { return s.cache }

// Items returns the selection in its current order.
func (s *Session) Items() []selection.Item {
	return append([]selection.Item(nil), s.items...)
}

// Choose switches to mode on user request and records the collage
// preference. It returns a ticket when the mode still has to be derived.
func (s *Session) Choose(mode SendMode) (Ticket, bool, error) {
	if s.Confirmed() {
		return Ticket{}, false, ErrSent
	}
	switch mode {
	case ModeMedia:
		s.prefs.SetPreferCollage(false)
	case ModeCollage:
		if !s.collageOK {
			return Ticket{}, false, ErrCollageUnavailable
		}
		s.prefs.SetPreferCollage(true)
	case ModeFile:
	default:
		return Ticket{}, false, fmt.Errorf("%w: %d", ErrUnknownMode, mode)
	}
	if mode == s.mode && s.phase == PhaseReady {
		return Ticket{}, false, nil
	}
	t, needed := s.Request(mode)
	return t, needed, nil
}

// Request makes mode current. A cached mode becomes ready immediately;
// otherwise a new ticket supersedes any derivation still in flight.
func (s *Session) Request(mode SendMode) (Ticket, bool) {
	s.mode = mode
	s.err = nil
	if s.cache.Has(mode) {
		s.phase = PhaseReady
		return Ticket{}, false
	}
	s.gen++
	s.phase = PhaseDeriving
	return Ticket{
		Mode:  mode,
		Items: s.Items(),
		gen:   s.gen,
		order: append([]int(nil), s.order...),
	}, true
}

// Resolve stores the derived media for t. Stale tickets are ignored and
// reported as false. Media derived before a reorder are brought into the
// current order.
func (s *Session) Resolve(t Ticket, derived []media.Media) (bool, error) {
	if !s.current(t) {
		slog.Debug("Dropping stale derivation", "mode", t.Mode, "gen", t.gen)
		return false, nil
	}
	if len(derived) != len(s.items) {
		err := fmt.Errorf("derived %d media for %d items", len(derived), len(s.items))
		s.fail(err)
		return false, err
	}

	ordered := s.reorder(t.order, derived)
	if _, err := s.cache.Put(t.Mode, Entry{Media: ordered, Rows: BuildRows(t.Mode, ordered)}); err != nil {
		s.fail(err)
		return false, err
	}
	s.phase = PhaseReady
	return true, nil
}

// Fail records a derivation failure for t. Stale tickets are ignored.
func (s *Session) Fail(t Ticket, err error) bool {
	if !s.current(t) {
		return false
	}
	s.fail(err)
	return true
}

func (s *Session) fail(err error) {
	s.phase = PhaseFailed
	s.err = err
}

func (s *Session) current(t Ticket) bool {
	return s.phase == PhaseDeriving && t.gen == s.gen && t.Mode == s.mode
}

func (s *Session) reorder(issued []int, derived []media.Media) []media.Media {
	pos := make(map[int]int, len(issued))
	for i, orig := range issued {
		pos[orig] = i
	}
	out := make([]media.Media, len(derived))
	for i, orig := range s.order {
		out[i] = derived[pos[orig]]
	}
	return out
}

// Move repositions the item at from to index to, in the selection and in
// every cached mode.
func (s *Session) Move(from, to int) error {
	if s.Confirmed() {
		return ErrSent
	}
	n := len(s.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("move %d -> %d of %d: %w", from, to, n, ErrIndexOutOfRange)
	}
	if err := s.cache.Move(from, to); err != nil {
		return err
	}
	s.items = move(s.items, from, to)
	s.order = move(s.order, from, to)
	return nil
}

// SetCaption stores text cut to the caption limit and returns what was kept.
func (s *Session) SetCaption(text string) string {
	if s.Confirmed() {
		return s.caption
	}
	if utf8.RuneCountInString(text) > s.captionLimit {
		text = string([]rune(text)[:s.captionLimit])
	}
	s.caption = text
	return text
}

// Placeholder is the hint shown in an empty caption field.
func (s *Session) Placeholder() string {
	if len(s.items) > 1 {
		return "Add a comment..."
	}
	return "Add a caption..."
}

// Classification describes the current mode. Before the mode is derived it
// is computed from the selected files.
func (s *Session) Classification() classify.Result {
	if e, ok := s.cache.Get(s.mode); ok {
		return classify.Classify(media.TraitsOf(e.Media), s.mode.AsFile())
	}
	traits := itemTraits(s.items)
	if s.mode.AsFile() {
		for i := range traits {
			traits[i] = classify.Traits{Ext: traits[i].Ext}
		}
	}
	return classify.Classify(traits, s.mode.AsFile())
}

func itemTraits(items []selection.Item) []classify.Traits {
	out := make([]classify.Traits, len(items))
	for i, it := range items {
		out[i] = classify.Traits{
			Ext:      it.Ext,
			Photo:    it.IsImage,
			Video:    it.IsVideo,
			Animated: it.IsAnimated,
			Music:    it.IsAudio,
		}
	}
	return out
}

// Snapshot is a read-only view of the session for renderers.
type Snapshot struct {
	Mode             SendMode
	Phase            Phase
	Title            string
	Category         classify.Category
	CollageAvailable bool
	Rows             []Row
	Count            int
	Caption          string
	CaptionLimit     int
	Placeholder      string
	Err              error
}

func (s *Session) Snapshot() Snapshot {
	res := s.Classification()
	snap := Snapshot{
		Mode:             s.mode,
		Phase:            s.phase,
		Title:            classify.Title(res.Category, len(s.items)),
		Category:         res.Category,
		CollageAvailable: s.collageOK,
		Count:            len(s.items),
		Caption:          s.caption,
		CaptionLimit:     s.captionLimit,
		Placeholder:      s.Placeholder(),
		Err:              s.err,
	}
	if s.phase == PhaseReady || s.Confirmed() {
		if e, ok := s.cache.Get(s.mode); ok {
			snap.Rows = e.Rows
		}
	}
	return snap
}
