package appevents

// AppEvent is a marker interface for events sent from the TUI to the App's logic controller.
// Only types embedding Event satisfy it.
type AppEvent interface {
	isAppEvent()
}

// Event is embedded by every event type to satisfy AppEvent.
type Event struct{}

func (Event) isAppEvent() {}

// AppUIMessage is a marker interface for messages sent from the App to the TUI.
type AppUIMessage interface {
	isUIMessage()
}

// UIMessage is embedded by every message type to satisfy AppUIMessage.
type UIMessage struct{}

func (UIMessage) isUIMessage() {}

// AppErrorMsg reports an error from the App to the TUI.
type AppErrorMsg struct {
	UIMessage
	Err error
}

var _ AppUIMessage = AppErrorMsg{}
