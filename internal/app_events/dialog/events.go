package dialog

import (
	appevents "github.com/rescp17/previewsender/internal/app_events"
	"github.com/rescp17/previewsender/pkg/preview"
)

// --- App Events (from TUI to App) ---

// ModeSelectedMsg is sent when the user toggles media, file or collage mode.
type ModeSelectedMsg struct {
	appevents.Event
	Mode preview.SendMode
}

// MoveItemMsg is sent when the user drags a row to a new position.
type MoveItemMsg struct {
	appevents.Event
	From int
	To   int
}

// CaptionChangedMsg carries the caption field's new value.
type CaptionChangedMsg struct {
	appevents.Event
	Text string
}

// RetryMsg asks the app to derive the current mode again after a failure.
type RetryMsg struct {
	appevents.Event
}

// SubmitMsg confirms the dialog.
type SubmitMsg struct {
	appevents.Event
}

var (
	_ appevents.AppEvent = ModeSelectedMsg{}
	_ appevents.AppEvent = MoveItemMsg{}
	_ appevents.AppEvent = CaptionChangedMsg{}
	_ appevents.AppEvent = RetryMsg{}
	_ appevents.AppEvent = SubmitMsg{}
)

// --- UI Messages (from App to TUI) ---

// StateUpdateMsg carries a fresh snapshot of the dialog state.
type StateUpdateMsg struct {
	appevents.UIMessage
	State preview.Snapshot
}

// SendingMsg reports that delivery started.
type SendingMsg struct {
	appevents.UIMessage
}

// SentMsg reports that the selection was delivered.
type SentMsg struct {
	appevents.UIMessage
	Count int
}

var (
	_ appevents.AppUIMessage = StateUpdateMsg{}
	_ appevents.AppUIMessage = SendingMsg{}
	_ appevents.AppUIMessage = SentMsg{}
)
