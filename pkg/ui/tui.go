package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	appevents "github.com/rescp17/previewsender/internal/app_events"
	"github.com/rescp17/previewsender/internal/app_events/dialog"
	"github.com/rescp17/previewsender/internal/style"
	"github.com/rescp17/previewsender/internal/util"
	"github.com/rescp17/previewsender/pkg/concurrency"
	"github.com/rescp17/previewsender/pkg/preview"
)

// AppController is the part of the app the dialog talks to.
type AppController interface {
	UIMessages() <-chan tea.Msg
	AppEvents() chan<- appevents.AppEvent
}

type focus int

const (
	focusList focus = iota
	focusCaption
)

type model struct {
	appController AppController
	keys          KeyMap
	help          help.Model
	spinner       spinner.Model
	caption       textinput.Model
	focus         focus
	state         preview.Snapshot
	cursor        int // media index, also inside collage albums
	sending       bool
	sent          int
	err           error
	quitting      bool
	seeded        bool
}

// New creates the preview dialog bound to controller.
func New(controller AppController) tea.Model {
	ti := textinput.New()
	ti.CharLimit = preview.DefaultCaptionLimit
	ti.Width = 60
	ti.Prompt = "✎ "
	ti.PromptStyle = style.HighlightFontStyle

	return model{
		appController: controller,
		keys:          DefaultKeyMap,
		help:          help.New(),
		spinner:       style.NewSpinner(),
		caption:       ti,
	}
}

// Sent reports how many items were delivered, or 0 if the dialog was
// cancelled.
func Sent(m tea.Model) int {
	if mm, ok := m.(model); ok {
		return mm.sent
	}
	return 0
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForAppMessages())
}

// listenForAppMessages is a command that listens for messages from the app controller.
func (m model) listenForAppMessages() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.appController.UIMessages()
		if !ok {
			return nil
		}
		return msg
	}
}

func (m model) dispatch(e appevents.AppEvent) {
	m.appController.AppEvents() <- e
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dialog.StateUpdateMsg:
		m.applyState(msg.State)
		return m, m.listenForAppMessages()
	case dialog.SendingMsg:
		m.sending = true
		return m, m.listenForAppMessages()
	case dialog.SentMsg:
		m.sent = msg.Count
		m.quitting = true
		return m, tea.Quit
	case appevents.AppErrorMsg:
		// A send is already in flight; keep the spinner.
		if m.sending && (errors.Is(msg.Err, concurrency.ErrBusy) || errors.Is(msg.Err, preview.ErrSent)) {
			return m, m.listenForAppMessages()
		}
		m.err = msg.Err
		m.sending = false
		return m, m.listenForAppMessages()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.sending {
			return m, nil
		}
		if m.focus == focusCaption {
			return m.updateCaption(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *model) applyState(s preview.Snapshot) {
	m.state = s
	m.err = nil
	if s.Phase == preview.PhaseSending || s.Phase == preview.PhaseSent {
		m.sending = true
	}
	if s.CaptionLimit > 0 {
		m.caption.CharLimit = s.CaptionLimit
	}
	m.caption.Placeholder = s.Placeholder
	if !m.seeded {
		m.caption.SetValue(s.Caption)
		m.seeded = true
	}
	if n := m.itemCount(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.itemCount()-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.MoveUp):
		if m.canReorder() && m.cursor > 0 {
			m.dispatch(dialog.MoveItemMsg{From: m.cursor, To: m.cursor - 1})
			m.cursor--
		}
	case key.Matches(msg, m.keys.MoveDown):
		if m.canReorder() && m.cursor < m.itemCount()-1 {
			m.dispatch(dialog.MoveItemMsg{From: m.cursor, To: m.cursor + 1})
			m.cursor++
		}
	case key.Matches(msg, m.keys.MediaMode):
		m.chooseMode(preview.ModeMedia)
	case key.Matches(msg, m.keys.FileMode):
		m.chooseMode(preview.ModeFile)
	case key.Matches(msg, m.keys.CollageMode):
		if m.state.CollageAvailable {
			m.chooseMode(preview.ModeCollage)
		}
	case key.Matches(msg, m.keys.Retry):
		if m.state.Phase == preview.PhaseFailed {
			m.dispatch(dialog.RetryMsg{})
		}
	case key.Matches(msg, m.keys.Caption):
		m.focus = focusCaption
		return m, m.caption.Focus()
	case key.Matches(msg, m.keys.Send):
		m.submit()
	}
	return m, nil
}

func (m model) updateCaption(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc, key.Matches(msg, m.keys.Caption):
		m.focus = focusList
		m.caption.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Send):
		m.submit()
		return m, nil
	}

	before := m.caption.Value()
	var cmd tea.Cmd
	m.caption, cmd = m.caption.Update(msg)
	if after := m.caption.Value(); after != before {
		m.dispatch(dialog.CaptionChangedMsg{Text: after})
	}
	return m, cmd
}

func (m *model) chooseMode(mode preview.SendMode) {
	if mode == m.state.Mode && m.state.Phase == preview.PhaseReady {
		return
	}
	m.dispatch(dialog.ModeSelectedMsg{Mode: mode})
}

func (m *model) submit() {
	if m.state.Phase != preview.PhaseReady {
		return
	}
	m.err = nil
	m.sending = true
	m.dispatch(dialog.SubmitMsg{})
}

func (m model) canReorder() bool {
	return m.state.Phase == preview.PhaseReady
}

// itemCount is the number of media the cursor walks. Album rows contribute
// each of their members.
func (m model) itemCount() int {
	if m.state.Mode != preview.ModeCollage {
		return len(m.state.Rows)
	}
	n := 0
	for _, row := range m.state.Rows {
		n += len(row.Members)
	}
	return n
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	var s strings.Builder

	title := m.state.Title
	if title == "" {
		title = "Preparing preview"
	}
	s.WriteString(style.TitleStyle.Render(title) + "\n")
	s.WriteString(m.toggleView() + "\n")
	s.WriteString(style.SeparatorStyle.Render(strings.Repeat("─", 48)) + "\n")
	s.WriteString(m.bodyView())
	s.WriteString(style.SeparatorStyle.Render(strings.Repeat("─", 48)) + "\n")
	s.WriteString(m.caption.View() + "\n")

	switch {
	case m.err != nil:
		s.WriteString("\n" + style.ErrorStyle.Render(m.err.Error()) + "\n")
	case m.sending:
		s.WriteString(fmt.Sprintf("\n%s Sending...\n", m.spinner.View()))
	}

	return style.DialogStyle.Render(s.String()) + "\n" + m.help.View(m.keys)
}

func (m model) toggleView() string {
	toggles := []struct {
		mode  preview.SendMode
		label string
	}{
		{preview.ModeMedia, "Media"},
		{preview.ModeFile, "File"},
		{preview.ModeCollage, "Album"},
	}
	var parts []string
	for _, t := range toggles {
		if t.mode == preview.ModeCollage && !m.state.CollageAvailable {
			continue
		}
		if t.mode == m.state.Mode {
			parts = append(parts, style.ActiveToggleStyle.Render(t.label))
		} else {
			parts = append(parts, style.ToggleStyle.Render(t.label))
		}
	}
	return strings.Join(parts, " ")
}

func (m model) bodyView() string {
	switch m.state.Phase {
	case preview.PhaseIdle, preview.PhaseDeriving:
		return fmt.Sprintf("%s Preparing %d item(s)...\n", m.spinner.View(), m.state.Count)
	case preview.PhaseFailed:
		msg := "unknown error"
		if m.state.Err != nil {
			msg = m.state.Err.Error()
		}
		return style.ErrorStyle.Render("Could not prepare preview: "+msg) + "\n" +
			style.HelpStyle.Render("Press r to retry or choose another mode.") + "\n"
	}

	if m.state.Mode == preview.ModeCollage {
		return m.albumView()
	}

	var s strings.Builder
	for i, row := range m.state.Rows {
		if i == m.cursor && m.focus == focusList {
			s.WriteString(style.CursorStyle.String())
		} else {
			s.WriteString(style.NoCursorStyle.String())
		}
		s.WriteString(util.PadRight(row.Title, 28) + " ")
		s.WriteString(style.DetailStyle.Render(util.PadRight(row.Detail, 24)) + " ")
		s.WriteString(util.FormatSize(row.Size) + "\n")
	}
	return s.String()
}

func (m model) albumView() string {
	var s strings.Builder
	for _, row := range m.state.Rows {
		s.WriteString(style.HighlightFontStyle.Render(util.PadRight(row.Title, 30)) + " ")
		s.WriteString(style.DetailStyle.Render(util.PadRight(fmt.Sprintf("%d items", len(row.Members)), 24)) + " ")
		s.WriteString(util.FormatSize(row.Size) + "\n")
		for j, idx := range row.Members {
			s.WriteString("  ")
			if idx == m.cursor && m.focus == focusList {
				s.WriteString(style.CursorStyle.String())
			} else {
				s.WriteString(style.NoCursorStyle.String())
			}
			name := ""
			if j < len(row.Names) {
				name = row.Names[j]
			}
			s.WriteString(name + "\n")
		}
	}
	return s.String()
}
