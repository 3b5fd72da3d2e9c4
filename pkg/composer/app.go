package composer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	appevents "github.com/rescp17/previewsender/internal/app_events"
	"github.com/rescp17/previewsender/internal/app_events/dialog"
	"github.com/rescp17/previewsender/pkg/concurrency"
	"github.com/rescp17/previewsender/pkg/media"
	"github.com/rescp17/previewsender/pkg/preview"
	"github.com/rescp17/previewsender/pkg/selection"
	"golang.org/x/sync/errgroup"
)

// Deriver turns the selection into sendable media for one mode.
type Deriver interface {
	Derive(ctx context.Context, items []selection.Item, asFile bool) ([]media.Media, error)
}

type derivation struct {
	ticket preview.Ticket
	media  []media.Media
	err    error
}

type delivery struct {
	count int
	err   error
}

// Options tunes the App's timeouts. Zero values fall back to defaults.
// VerifyFiles re-checks each selected file's checksum before sending.
type Options struct {
	DeriveTimeout time.Duration
	SendTimeout   time.Duration
	VerifyFiles   bool
}

// App drives one preview dialog. The session is only touched from the
// goroutine running Run.
type App struct {
	session       *preview.Session
	deriver       Deriver
	sender        preview.Sender
	guard         *concurrency.ConcurrencyGuard
	uiMessages    chan tea.Msg            // App -> TUI
	appEvents     chan appevents.AppEvent // TUI -> App
	results       chan derivation
	deliveries    chan delivery
	cancelDerive  context.CancelFunc
	deriveTimeout time.Duration
	sendTimeout   time.Duration
	verifyFiles   bool
	sendWG        sync.WaitGroup
}

// NewApp creates the dialog controller for session.
func NewApp(session *preview.Session, deriver Deriver, sender preview.Sender, opts Options) *App {
	if opts.DeriveTimeout <= 0 {
		opts.DeriveTimeout = time.Minute
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 2 * time.Minute
	}
	return &App{
		session:       session,
		deriver:       deriver,
		sender:        sender,
		guard:         concurrency.NewConcurrencyGuard(),
		uiMessages:    make(chan tea.Msg, 32),
		appEvents:     make(chan appevents.AppEvent, 32),
		results:       make(chan derivation),
		deliveries:    make(chan delivery),
		deriveTimeout: opts.DeriveTimeout,
		sendTimeout:   opts.SendTimeout,
		verifyFiles:   opts.VerifyFiles,
	}
}

// UIMessages returns the channel for the UI to listen on for updates.
func (a *App) UIMessages() <-chan tea.Msg {
	return a.uiMessages
}

// AppEvents returns a write-only channel for the TUI to send events to the app.
func (a *App) AppEvents() chan<- appevents.AppEvent {
	return a.appEvents
}

// Run derives the opening mode and then serves UI events until ctx is done.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer a.stopDerive()

		if t, needed := a.session.Request(a.session.Mode()); needed {
			a.startDerive(ctx, t)
		}
		a.publish(ctx)

		for {
			select {
			case <-ctx.Done():
				a.sendWG.Wait()
				return nil
			case event := <-a.appEvents:
				a.handleEvent(ctx, event)
			case res := <-a.results:
				a.handleDerivation(ctx, res)
			case d := <-a.deliveries:
				a.handleDelivery(ctx, d)
			}
		}
	})
	return g.Wait()
}

func (a *App) handleEvent(ctx context.Context, event appevents.AppEvent) {
	switch e := event.(type) {
	case dialog.ModeSelectedMsg:
		t, needed, err := a.session.Choose(e.Mode)
		if err != nil {
			a.sendAndLogError(ctx, "Cannot switch mode", err)
			return
		}
		if needed {
			a.startDerive(ctx, t)
		}
	case dialog.MoveItemMsg:
		if err := a.session.Move(e.From, e.To); err != nil {
			a.sendAndLogError(ctx, "Cannot reorder", err)
			return
		}
	case dialog.CaptionChangedMsg:
		a.session.SetCaption(e.Text)
	case dialog.RetryMsg:
		if a.session.Phase() != preview.PhaseFailed {
			return
		}
		if t, needed := a.session.Request(a.session.Mode()); needed {
			a.startDerive(ctx, t)
		}
	case dialog.SubmitMsg:
		plan, err := a.session.PrepareSend()
		if errors.Is(err, preview.ErrSent) {
			slog.Debug("Ignoring repeated submit")
			return
		}
		if err != nil {
			a.sendAndLogError(ctx, "Cannot send yet", err)
			return
		}
		a.startSend(ctx, plan)
	default:
		slog.Warn("Unhandled app event", "event", fmt.Sprintf("%T", event))
		return
	}
	a.publish(ctx)
}

func (a *App) handleDerivation(ctx context.Context, res derivation) {
	if res.err != nil {
		if !a.session.Fail(res.ticket, res.err) {
			return
		}
		slog.Error("Derivation failed", "mode", res.ticket.Mode, "error", res.err)
		a.publish(ctx)
		return
	}
	if _, err := a.session.Resolve(res.ticket, res.media); err != nil {
		slog.Error("Derivation rejected", "mode", res.ticket.Mode, "error", err)
	}
	a.publish(ctx)
}

// startDerive runs the derivation for t in the background, cancelling any
// derivation it supersedes.
func (a *App) startDerive(ctx context.Context, t preview.Ticket) {
	a.stopDerive()
	deriveCtx, cancel := context.WithTimeout(ctx, a.deriveTimeout)
	a.cancelDerive = cancel

	slog.Debug("Deriving media", "mode", t.Mode, "items", len(t.Items))
	go func() {
		defer cancel()
		derived, err := a.deriver.Derive(deriveCtx, t.Items, t.Mode.AsFile())
		select {
		case a.results <- derivation{ticket: t, media: derived, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (a *App) stopDerive() {
	if a.cancelDerive != nil {
		a.cancelDerive()
		a.cancelDerive = nil
	}
}

func (a *App) startSend(ctx context.Context, plan preview.Plan) {
	var items []selection.Item
	if a.verifyFiles {
		items = a.session.Items()
	}
	task := func(taskCtx context.Context) error {
		sendCtx, cancel := context.WithTimeout(taskCtx, a.sendTimeout)
		defer cancel()

		a.emit(ctx, dialog.SendingMsg{})
		if err := selection.VerifyAll(items); err != nil {
			return err
		}
		return plan.Execute(sendCtx, a.sender)
	}

	a.sendWG.Add(1)
	go func() {
		defer a.sendWG.Done()
		err := a.guard.ExecuteWithContext(ctx, task)
		select {
		case a.deliveries <- delivery{count: len(plan.Media), err: err}:
		case <-ctx.Done():
		}
	}()
}

func (a *App) handleDelivery(ctx context.Context, d delivery) {
	if errors.Is(d.err, concurrency.ErrBusy) {
		a.sendAndLogError(ctx, "Send ignored", d.err)
		return
	}
	a.session.FinishSend(d.err)
	a.publish(ctx)
	if d.err != nil {
		a.sendAndLogError(ctx, "Send failed", d.err)
		return
	}
	slog.Info("Selection sent", "items", d.count)
	a.emit(ctx, dialog.SentMsg{Count: d.count})
}

func (a *App) publish(ctx context.Context) {
	a.emit(ctx, dialog.StateUpdateMsg{State: a.session.Snapshot()})
}

func (a *App) emit(ctx context.Context, msg tea.Msg) {
	select {
	case a.uiMessages <- msg:
	case <-ctx.Done():
	}
}

// sendAndLogError is a helper function to both log an error and send it to the UI.
func (a *App) sendAndLogError(ctx context.Context, baseMessage string, err error) {
	slog.Error(baseMessage, "error", err)
	a.emit(ctx, appevents.AppErrorMsg{Err: fmt.Errorf("%s: %w", baseMessage, err)})
}
