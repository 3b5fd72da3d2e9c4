package composer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	appevents "github.com/rescp17/previewsender/internal/app_events"
	"github.com/rescp17/previewsender/internal/app_events/dialog"
	"github.com/rescp17/previewsender/pkg/media"
	"github.com/rescp17/previewsender/pkg/preview"
	"github.com/rescp17/previewsender/pkg/selection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeriver struct {
	mu    sync.Mutex
	calls []bool
	err   error
	gate  chan struct{}
}

func (f *fakeDeriver) Derive(ctx context.Context, items []selection.Item, asFile bool) ([]media.Media, error) {
	f.mu.Lock()
	f.calls = append(f.calls, asFile)
	err, gate := f.err, f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	out := make([]media.Media, len(items))
	for i, it := range items {
		out[i] = media.Media{ID: it.Checksum, Name: it.Name, Ext: it.Ext, AsFile: asFile, Photo: it.IsImage && !asFile}
	}
	return out, nil
}

func (f *fakeDeriver) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeDeriver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type sent struct {
	kind    string
	text    string
	names   []string
	grouped bool
}

type fakeSender struct {
	mu   sync.Mutex
	log  []sent
	err  error
	gate chan struct{}
}

func (f *fakeSender) SendText(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, sent{kind: "text", text: text})
	return f.err
}

func (f *fakeSender) SendMedia(ctx context.Context, items []media.Media, caption string, grouped bool) error {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, m := range items {
		names = append(names, m.Name)
	}
	f.log = append(f.log, sent{kind: "media", text: caption, names: names, grouped: grouped})
	return f.err
}

func (f *fakeSender) sent() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.log...)
}

func photo(name string) selection.Item {
	return selection.Item{Path: "/tmp/" + name, Name: name, Ext: "jpg", IsImage: true, Checksum: name}
}

type harness struct {
	app     *App
	deriver *fakeDeriver
	sender  *fakeSender
	cancel  context.CancelFunc
	done    chan error
}

func start(t *testing.T, items []selection.Item, deriver *fakeDeriver) *harness {
	t.Helper()
	return startWith(t, items, deriver, Options{DeriveTimeout: time.Second, SendTimeout: time.Second})
}

func startWith(t *testing.T, items []selection.Item, deriver *fakeDeriver, opts Options) *harness {
	t.Helper()
	session, err := preview.NewSession(items, preview.Options{AsMedia: true})
	require.NoError(t, err)

	h := &harness{
		deriver: deriver,
		sender:  &fakeSender{},
		done:    make(chan error, 1),
	}
	h.app = NewApp(session, deriver, h.sender, opts)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.app.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(3 * time.Second):
			t.Error("App did not shut down within 3 seconds")
		}
	})
	return h
}

func (h *harness) send(t *testing.T, e appevents.AppEvent) {
	t.Helper()
	select {
	case h.app.AppEvents() <- e:
	case <-time.After(time.Second):
		t.Fatalf("app did not accept %T", e)
	}
}

// waitFor drains UI messages until match accepts one.
func (h *harness) waitFor(t *testing.T, match func(tea.Msg) bool) tea.Msg {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-h.app.UIMessages():
			if match(msg) {
				return msg
			}
		case <-timeout:
			t.Fatal("timed out waiting for UI message")
			return nil
		}
	}
}

func (h *harness) waitState(t *testing.T, match func(preview.Snapshot) bool) preview.Snapshot {
	t.Helper()
	msg := h.waitFor(t, func(msg tea.Msg) bool {
		u, ok := msg.(dialog.StateUpdateMsg)
		return ok && match(u.State)
	})
	return msg.(dialog.StateUpdateMsg).State
}

func ready(mode preview.SendMode) func(preview.Snapshot) bool {
	return func(s preview.Snapshot) bool { return s.Phase == preview.PhaseReady && s.Mode == mode }
}

func TestApp_InitialDerivation(t *testing.T) {
	h := start(t, []selection.Item{photo("a.jpg"), photo("b.jpg")}, &fakeDeriver{})

	state := h.waitState(t, ready(preview.ModeMedia))
	assert.Equal(t, "Send 2 Photos", state.Title)
	assert.True(t, state.CollageAvailable)
	assert.Len(t, state.Rows, 2)
	assert.Equal(t, 1, h.deriver.callCount())
}

func TestApp_ModeSwitchUsesCache(t *testing.T) {
	h := start(t, []selection.Item{photo("a.jpg"), photo("b.jpg")}, &fakeDeriver{})
	h.waitState(t, ready(preview.ModeMedia))

	h.send(t, dialog.ModeSelectedMsg{Mode: preview.ModeFile})
	state := h.waitState(t, ready(preview.ModeFile))
	assert.Equal(t, "Send 2 Files", state.Title)

	h.send(t, dialog.ModeSelectedMsg{Mode: preview.ModeMedia})
	h.waitState(t, ready(preview.ModeMedia))

	h.send(t, dialog.ModeSelectedMsg{Mode: preview.ModeCollage})
	state = h.waitState(t, ready(preview.ModeCollage))
	assert.Len(t, state.Rows, 1)

	assert.Equal(t, 3, h.deriver.callCount())
}

func TestApp_CollageUnavailable(t *testing.T) {
	h := start(t, []selection.Item{photo("a.jpg")}, &fakeDeriver{})
	h.waitState(t, ready(preview.ModeMedia))

	h.send(t, dialog.ModeSelectedMsg{Mode: preview.ModeCollage})
	msg := h.waitFor(t, func(msg tea.Msg) bool {
		_, ok := msg.(appevents.AppErrorMsg)
		return ok
	})
	assert.ErrorIs(t, msg.(appevents.AppErrorMsg).Err, preview.ErrCollageUnavailable)
}

func TestApp_FailureAndRetry(t *testing.T) {
	boom := errors.New("decode failed")
	d := &fakeDeriver{err: boom}
	h := start(t, []selection.Item{photo("a.jpg"), photo("b.jpg")}, d)

	state := h.waitState(t, func(s preview.Snapshot) bool { return s.Phase == preview.PhaseFailed })
	assert.ErrorIs(t, state.Err, boom)
	assert.Empty(t, state.Rows)

	d.setErr(nil)
	h.send(t, dialog.RetryMsg{})
	state = h.waitState(t, ready(preview.ModeMedia))
	assert.NoError(t, state.Err)
	assert.Equal(t, 2, d.callCount())
}

func TestApp_MoveWhileDeriving(t *testing.T) {
	gate := make(chan struct{})
	d := &fakeDeriver{gate: gate}
	h := start(t, []selection.Item{photo("a.jpg"), photo("b.jpg"), photo("c.jpg")}, d)

	h.waitState(t, func(s preview.Snapshot) bool { return s.Phase == preview.PhaseDeriving })
	h.send(t, dialog.MoveItemMsg{From: 2, To: 0})
	h.waitState(t, func(s preview.Snapshot) bool { return s.Phase == preview.PhaseDeriving })
	close(gate)

	state := h.waitState(t, ready(preview.ModeMedia))
	require.Len(t, state.Rows, 3)
	assert.Equal(t, "c.jpg", state.Rows[0].Title)
	assert.Equal(t, "a.jpg", state.Rows[1].Title)
	assert.Equal(t, "b.jpg", state.Rows[2].Title)
}

func TestApp_SupersededDerivationIsDropped(t *testing.T) {
	gate := make(chan struct{})
	d := &fakeDeriver{gate: gate}
	h := start(t, []selection.Item{photo("a.jpg"), photo("b.jpg")}, d)

	h.waitState(t, func(s preview.Snapshot) bool { return s.Phase == preview.PhaseDeriving })
	h.send(t, dialog.ModeSelectedMsg{Mode: preview.ModeFile})
	h.waitState(t, func(s preview.Snapshot) bool { return s.Mode == preview.ModeFile })
	close(gate)

	state := h.waitState(t, ready(preview.ModeFile))
	assert.Equal(t, preview.ModeFile, state.Mode)
	assert.NoError(t, state.Err)
}

func TestApp_SubmitForwardsCaption(t *testing.T) {
	h := start(t, []selection.Item{photo("a.jpg"), photo("b.jpg")}, &fakeDeriver{})
	h.waitState(t, ready(preview.ModeMedia))

	h.send(t, dialog.CaptionChangedMsg{Text: "holiday"})
	state := h.waitState(t, func(s preview.Snapshot) bool { return s.Caption == "holiday" })
	assert.Equal(t, "Add a comment...", state.Placeholder)

	h.send(t, dialog.SubmitMsg{})
	msg := h.waitFor(t, func(msg tea.Msg) bool {
		_, ok := msg.(dialog.SentMsg)
		return ok
	})
	assert.Equal(t, 2, msg.(dialog.SentMsg).Count)

	assert.Equal(t, []sent{
		{kind: "text", text: "holiday"},
		{kind: "media", names: []string{"a.jpg", "b.jpg"}},
	}, h.sender.sent())
}

func TestApp_SubmitBeforeReady(t *testing.T) {
	gate := make(chan struct{})
	h := start(t, []selection.Item{photo("a.jpg")}, &fakeDeriver{gate: gate})
	defer close(gate)

	h.waitState(t, func(s preview.Snapshot) bool { return s.Phase == preview.PhaseDeriving })
	h.send(t, dialog.SubmitMsg{})
	msg := h.waitFor(t, func(msg tea.Msg) bool {
		_, ok := msg.(appevents.AppErrorMsg)
		return ok
	})
	assert.ErrorIs(t, msg.(appevents.AppErrorMsg).Err, preview.ErrNotReady)
	assert.Empty(t, h.sender.sent())
}

func TestApp_SendFailure(t *testing.T) {
	h := start(t, []selection.Item{photo("a.jpg")}, &fakeDeriver{})
	h.sender.err = errors.New("peer offline")
	h.waitState(t, ready(preview.ModeMedia))

	h.send(t, dialog.SubmitMsg{})
	msg := h.waitFor(t, func(msg tea.Msg) bool {
		_, ok := msg.(appevents.AppErrorMsg)
		return ok
	})
	assert.ErrorContains(t, msg.(appevents.AppErrorMsg).Err, "peer offline")
}

func TestApp_SubmitTwiceSendsOnce(t *testing.T) {
	h := start(t, []selection.Item{photo("a.jpg")}, &fakeDeriver{})
	h.waitState(t, ready(preview.ModeMedia))

	h.send(t, dialog.SubmitMsg{})
	h.waitFor(t, func(msg tea.Msg) bool {
		_, ok := msg.(dialog.SentMsg)
		return ok
	})
	h.send(t, dialog.SubmitMsg{})
	h.send(t, dialog.ModeSelectedMsg{Mode: preview.ModeFile})

	msg := h.waitFor(t, func(msg tea.Msg) bool {
		_, ok := msg.(appevents.AppErrorMsg)
		return ok
	})
	assert.ErrorIs(t, msg.(appevents.AppErrorMsg).Err, preview.ErrSent)
	assert.Len(t, h.sender.sent(), 1)
}

func TestApp_SubmitWhileSending(t *testing.T) {
	gate := make(chan struct{})
	h := start(t, []selection.Item{photo("a.jpg")}, &fakeDeriver{})
	h.sender.gate = gate
	h.waitState(t, ready(preview.ModeMedia))

	h.send(t, dialog.SubmitMsg{})
	h.waitState(t, func(s preview.Snapshot) bool { return s.Phase == preview.PhaseSending })
	h.send(t, dialog.SubmitMsg{})
	h.send(t, dialog.SubmitMsg{})
	close(gate)

	msg := h.waitFor(t, func(msg tea.Msg) bool {
		_, isErr := msg.(appevents.AppErrorMsg)
		_, isSent := msg.(dialog.SentMsg)
		return isErr || isSent
	})
	assert.IsType(t, dialog.SentMsg{}, msg)
	assert.Len(t, h.sender.sent(), 1)
}

func TestApp_ResubmitAfterFailure(t *testing.T) {
	h := start(t, []selection.Item{photo("a.jpg")}, &fakeDeriver{})
	h.sender.err = errors.New("peer offline")
	h.waitState(t, ready(preview.ModeMedia))

	h.send(t, dialog.SubmitMsg{})
	h.waitFor(t, func(msg tea.Msg) bool {
		_, ok := msg.(appevents.AppErrorMsg)
		return ok
	})

	h.sender.mu.Lock()
	h.sender.err = nil
	h.sender.mu.Unlock()

	h.send(t, dialog.SubmitMsg{})
	h.waitFor(t, func(msg tea.Msg) bool {
		_, ok := msg.(dialog.SentMsg)
		return ok
	})
	assert.Len(t, h.sender.sent(), 2)
}

func TestApp_ChangedFileIsNotSent(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(p, []byte("one"), 0o644))
	item, err := selection.Load(p)
	require.NoError(t, err)

	h := startWith(t, []selection.Item{item}, &fakeDeriver{}, Options{
		DeriveTimeout: time.Second,
		SendTimeout:   time.Second,
		VerifyFiles:   true,
	})
	h.waitState(t, ready(preview.ModeMedia))

	require.NoError(t, os.WriteFile(p, []byte("two"), 0o644))
	h.send(t, dialog.SubmitMsg{})
	msg := h.waitFor(t, func(msg tea.Msg) bool {
		_, ok := msg.(appevents.AppErrorMsg)
		return ok
	})
	assert.ErrorIs(t, msg.(appevents.AppErrorMsg).Err, selection.ErrChanged)
	assert.Empty(t, h.sender.sent())

	require.NoError(t, os.WriteFile(p, []byte("one"), 0o644))
	h.send(t, dialog.SubmitMsg{})
	h.waitFor(t, func(msg tea.Msg) bool {
		_, ok := msg.(dialog.SentMsg)
		return ok
	})
	assert.Len(t, h.sender.sent(), 1)
}
