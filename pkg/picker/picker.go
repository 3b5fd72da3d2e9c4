package picker

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rescp17/previewsender/internal/style"
	"github.com/rescp17/previewsender/internal/util"
)

type mode int

const (
	modeBrowse mode = iota
	modeInput
)

// --- Key Map ---
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Left         key.Binding // Page up
	Right        key.Binding // Page down
	Open         key.Binding
	Parent       key.Binding
	ToggleSelect key.Binding
	ToggleInput  key.Binding
	Confirm      key.Binding
	Quit         key.Binding
}

var DefaultKeyMap = KeyMap{
	Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
	Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
	Left:         key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "page up")),
	Right:        key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "page down")),
	Open:         key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open dir")),
	Parent:       key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "parent dir")),
	ToggleSelect: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle select")),
	ToggleInput:  key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "input path")),
	Confirm:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Quit:         key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc/ctrl+c", "quit/back")),
}

// --- Model ---

// Model browses directories and collects files to preview. Selection order
// is kept, since it becomes the order the files are sent in.
type Model struct {
	path     string
	lastPath string // For relative path resolution
	items    []fs.DirEntry
	selected map[string]struct{}
	order    []string
	cursor   int
	keys     KeyMap
	quitting bool
	done     bool
	mode     mode
	input    textinput.Model
	inputErr error
	height   int // For viewport height
	offset   int // For scrolling
}

func New() Model {
	ti := textinput.New()
	ti.Placeholder = "path to a folder"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 80
	ti.Cursor.Style = style.HighlightFontStyle
	ti.PromptStyle = style.DirStyle

	wd, err := os.Getwd()
	if err != nil {
		slog.Warn("Could not get working directory", "error", err)
	}

	return Model{
		lastPath: wd,
		selected: make(map[string]struct{}),
		keys:     DefaultKeyMap,
		mode:     modeInput,
		input:    ti,
	}
}

// Selected returns the chosen paths in the order they were picked. It is
// empty unless the user confirmed.
func (m Model) Selected() []string {
	if !m.done {
		return nil
	}
	return append([]string(nil), m.order...)
}

// --- Bubble Tea Methods ---
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting || m.done {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			if m.mode == modeInput && m.path != "" {
				m.mode = modeBrowse
				m.input.Blur()
				m.input.Reset()
				m.inputErr = nil
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		}

		switch m.mode {
		case modeBrowse:
			return m.updateBrowse(msg)
		case modeInput:
			return m.updateInput(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleInput):
		m.mode = modeInput
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset--
			}
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.visibleItems() {
				m.offset++
			}
		}

	case key.Matches(msg, m.keys.Right):
		m.page(m.visibleItems())

	case key.Matches(msg, m.keys.Left):
		m.page(-m.visibleItems())

	case key.Matches(msg, m.keys.Open):
		if len(m.items) > 0 && m.items[m.cursor].IsDir() {
			if err := m.SetPath(filepath.Join(m.path, m.items[m.cursor].Name())); err != nil {
				m.inputErr = err
			}
		}

	case key.Matches(msg, m.keys.Parent):
		if err := m.SetPath(filepath.Dir(m.path)); err != nil {
			m.inputErr = err
		}

	case key.Matches(msg, m.keys.ToggleSelect):
		if len(m.items) == 0 || m.items[m.cursor].IsDir() {
			return m, nil
		}
		m.toggle(filepath.Join(m.path, m.items[m.cursor].Name()))

	case key.Matches(msg, m.keys.Confirm):
		if len(m.order) > 0 {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) page(delta int) {
	visible := m.visibleItems()
	m.cursor = clamp(m.cursor+delta, 0, len(m.items)-1)
	m.offset = clamp(m.offset+delta, 0, len(m.items)-visible)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m *Model) toggle(path string) {
	if _, ok := m.selected[path]; ok {
		delete(m.selected, path)
		for i, p := range m.order {
			if p == path {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
		return
	}
	m.selected[path] = struct{}{}
	m.order = append(m.order, path)
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Confirm) {
		if err := m.SetPath(m.input.Value()); err != nil {
			m.inputErr = err
			return m, nil
		}
		m.input.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// SetPath loads the directory at path and switches to browsing.
func (m *Model) SetPath(path string) error {
	absPath, err := util.ResolveDir(m.lastPath, path)
	if err != nil {
		return err
	}
	items, err := os.ReadDir(absPath)
	if err != nil {
		return fmt.Errorf("could not read directory: %w", err)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Name() < items[j].Name()
	})

	m.path = absPath
	m.lastPath = absPath
	m.items = items
	m.cursor = 0
	m.offset = 0
	m.inputErr = nil
	m.mode = modeBrowse
	m.input.Blur()
	return nil
}

func (m Model) View() string {
	if m.quitting || m.done {
		return ""
	}
	var s strings.Builder

	s.WriteString("Enter a path to browse, or select files below. " + m.helpView() + "\n \n")
	s.WriteString(m.input.View())
	if m.inputErr != nil {
		s.WriteString("\n" + style.ErrorStyle.Render(m.inputErr.Error()))
	}
	s.WriteString("\n\n")

	if m.path == "" {
		return s.String()
	}
	s.WriteString(fmt.Sprintf("Browsing: %s (%d selected)\n\n", m.path, len(m.order)))

	const (
		nameWidth = 36
		sizeWidth = 12
		typeWidth = 30
	)
	s.WriteString(
		style.HeaderStyle.Render(util.PadRight("", 6)) +
			style.HeaderStyle.Render(util.PadRight("Name", nameWidth)) + " " +
			style.HeaderStyle.Render(util.PadRight("Size", sizeWidth)) + " " +
			style.HeaderStyle.Render(util.PadRight("Type", typeWidth)) + "\n",
	)

	start := clamp(m.offset, 0, len(m.items))
	end := clamp(m.offset+m.visibleItems(), start, len(m.items))

	for i, item := range m.items[start:end] {
		if m.cursor == start+i {
			s.WriteString(style.CursorStyle.String())
		} else {
			s.WriteString(style.NoCursorStyle.String())
		}

		path := filepath.Join(m.path, item.Name())
		if _, ok := m.selected[path]; ok {
			s.WriteString(style.SelectedStyle.String())
		} else {
			s.WriteString(style.DeselectedStyle.String())
		}

		name, size, kind := item.Name(), "", ""
		if item.IsDir() {
			name += "/"
			size = "<DIR>"
		} else {
			if info, err := item.Info(); err == nil {
				size = util.FormatSize(info.Size())
			}
			if mt, err := mimetype.DetectFile(path); err == nil {
				kind = mt.String()
			}
		}

		nameCell := util.PadRight(name, nameWidth)
		if item.IsDir() {
			nameCell = style.DirStyle.Render(nameCell)
		}
		s.WriteString(nameCell + " " +
			util.PadRight(size, sizeWidth) + " " +
			style.DetailStyle.Render(util.PadRight(kind, typeWidth)) + "\n")
	}

	if len(m.items) > m.visibleItems() {
		s.WriteString(fmt.Sprintf("\n... %d/%d ...\n", m.cursor+1, len(m.items)))
	}
	return s.String()
}

func (m Model) helpView() string {
	return style.HelpStyle.Render(
		fmt.Sprintf("'%s' select, '%s' open, '%s' browse, '%s' confirm, '%s' quit",
			m.keys.ToggleSelect.Help().Key, m.keys.Open.Help().Key, m.keys.ToggleInput.Help().Key, m.keys.Confirm.Help().Key, m.keys.Quit.Help().Key),
	)
}

func (m *Model) visibleItems() int {
	headerHeight := 8
	if m.inputErr != nil {
		headerHeight++
	}
	visible := m.height - headerHeight
	if visible < 1 {
		visible = 15
	}
	return visible
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
