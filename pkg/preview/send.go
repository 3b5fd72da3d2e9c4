package preview

import (
	"context"
	"fmt"

	"github.com/rescp17/previewsender/pkg/media"
)

// Sender delivers the confirmed selection to a chat.
type Sender interface {
	SendText(ctx context.Context, text string) error
	SendMedia(ctx context.Context, items []media.Media, caption string, grouped bool) error
}

// Plan is a confirmed send. Text, when set, goes out as a standalone message
// before the media.
type Plan struct {
	Text    string
	Media   []media.Media
	Caption string
	Grouped bool
}

// PrepareSend builds the plan for the current mode and moves the session to
// PhaseSending. A caption on a multi-item selection becomes a separate
// message. Only one plan is handed out until FinishSend reports a failure.
func (s *Session) PrepareSend() (Plan, error) {
	if s.Confirmed() {
		return Plan{}, ErrSent
	}
	if s.phase != PhaseReady {
		return Plan{}, ErrNotReady
	}
	e, ok := s.cache.Get(s.mode)
	if !ok {
		return Plan{}, ErrNotReady
	}
	p := Plan{
		Media:   e.Media,
		Caption: s.caption,
		Grouped: s.mode.Grouped(),
	}
	if len(e.Media) > 1 && s.caption != "" {
		p.Text = s.caption
		p.Caption = ""
	}
	s.phase = PhaseSending
	return p, nil
}

// FinishSend records the outcome of the plan handed out by PrepareSend. A
// failed send returns the session to PhaseReady so it can be confirmed again.
func (s *Session) FinishSend(err error) {
	if s.phase != PhaseSending {
		return
	}
	if err != nil {
		s.phase = PhaseReady
		return
	}
	s.phase = PhaseSent
}

// Confirmed reports whether a send is in flight or done.
func (s *Session) Confirmed() bool {
	return s.phase == PhaseSending || s.phase == PhaseSent
}

// Execute performs the plan against sender.
func (p Plan) Execute(ctx context.Context, sender Sender) error {
	if p.Text != "" {
		if err := sender.SendText(ctx, p.Text); err != nil {
			return fmt.Errorf("failed to send caption message: %w", err)
		}
	}
	if err := sender.SendMedia(ctx, p.Media, p.Caption, p.Grouped); err != nil {
		return fmt.Errorf("failed to send media: %w", err)
	}
	return nil
}
