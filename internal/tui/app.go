// Package tui provides the interactive settings editor.
package tui

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/pnw-recruiter/internal/config"
)

// View represents the current screen.
type View int

const (
	ViewMenu View = iota
	ViewForm
	ViewConfirmExit
)

// Menu entries after the editable categories.
const (
	menuSave  = "Save Changes"
	menuReset = "Reset Changes"
	menuExit  = "Exit"
)

type statusKind int

const (
	statusNone statusKind = iota
	statusOK
	statusWarn
	statusError
)

// Model is the settings editor model.
type Model struct {
	path    string
	working *config.Settings
	dirty   bool

	view        View
	width       int
	height      int
	selectedIdx int
	form        FormModel

	status     string
	statusKind statusKind
}

// New creates an editor for the settings file at path, starting from s.
func New(path string, s *config.Settings) Model {
	return Model{
		path:    path,
		working: s.Clone(),
		view:    ViewMenu,
	}
}

// Settings returns the working copy, including unsaved changes.
func (m Model) Settings() *config.Settings {
	return m.working.Clone()
}

// Dirty reports whether there are unsaved changes.
func (m Model) Dirty() bool {
	return m.dirty
}

func menuItems() []string {
	items := make([]string, 0, len(categories)+3)
	for _, c := range categories {
		items = append(items, c.title)
	}
	return append(items, menuSave, menuReset, menuExit)
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ViewForm:
			return m.handleFormKey(msg)
		case ViewConfirmExit:
			return m.handleConfirmKey(msg)
		default:
			return m.handleMenuKey(msg)
		}
	}

	if m.view == ViewForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := menuItems()

	switch {
	case key.Matches(msg, keys.Quit):
		return m.exit()

	case key.Matches(msg, keys.Up), key.Matches(msg, keys.ShiftTab):
		m.selectedIdx = (m.selectedIdx - 1 + len(items)) % len(items)

	case key.Matches(msg, keys.Down), key.Matches(msg, keys.Tab):
		m.selectedIdx = (m.selectedIdx + 1) % len(items)

	case key.Matches(msg, keys.Enter):
		if m.selectedIdx < len(categories) {
			m.form = NewFormModel(categories[m.selectedIdx], m.working, m.width)
			m.view = ViewForm
			m.setStatus(statusNone, "")
			return m, nil
		}
		switch items[m.selectedIdx] {
		case menuSave:
			m.save()
		case menuReset:
			m.reset()
		case menuExit:
			return m.exit()
		}
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.view = ViewMenu
		m.setStatus(statusNone, "")
		return m, nil

	case key.Matches(msg, keys.ForceQuit):
		return m.exit()

	case key.Matches(msg, keys.Apply):
		return m.applyForm()

	case key.Matches(msg, keys.Enter):
		if m.form.OnLastField() {
			return m.applyForm()
		}
		m.form.Next()
		return m, nil

	case key.Matches(msg, keys.Tab), key.Matches(msg, keys.FieldDown):
		m.form.Next()
		return m, nil

	case key.Matches(msg, keys.ShiftTab), key.Matches(msg, keys.FieldUp):
		m.form.Prev()
		return m, nil
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Yes), key.Matches(msg, keys.ForceQuit):
		log.Info().Str("path", m.path).Msg("Editor closed, unsaved changes discarded")
		return m, tea.Quit
	case key.Matches(msg, keys.No), key.Matches(msg, keys.Escape):
		m.view = ViewMenu
	}
	return m, nil
}

func (m Model) applyForm() (tea.Model, tea.Cmd) {
	next, changed, err := m.form.Apply(m.working)
	if err != nil {
		return m, nil
	}
	if changed {
		m.working = next
		m.dirty = true
		m.setStatus(statusWarn, fmt.Sprintf("%s updated, not saved yet", m.form.cat.title))
	}
	m.view = ViewMenu
	return m, nil
}

func (m *Model) save() {
	if err := m.working.Validate(); err != nil {
		m.setStatus(statusError, firstLine(err.Error()))
		return
	}
	if err := config.Save(m.path, m.working); err != nil {
		log.Error().Err(err).Str("path", m.path).Msg("Failed to save settings")
		m.setStatus(statusError, err.Error())
		return
	}
	log.Info().Str("path", m.path).Msg("Settings saved")
	m.dirty = false
	m.setStatus(statusOK, "Saved to "+m.path)
}

func (m *Model) reset() {
	s, err := readOrDefault(m.path)
	if err != nil {
		m.setStatus(statusError, err.Error())
		return
	}
	m.working = s
	m.dirty = false
	m.setStatus(statusOK, "Changes discarded")
}

func (m Model) exit() (tea.Model, tea.Cmd) {
	if m.dirty {
		m.view = ViewConfirmExit
		return m, nil
	}
	return m, tea.Quit
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

// View renders the editor.
func (m Model) View() string {
	var sections []string
	sections = append(sections, headerStyle.Render("⚑ PnW Recruiter Settings"))

	switch m.view {
	case ViewForm:
		sections = append(sections, m.form.View(m.width))
		sections = append(sections, renderHelp(formHelp))
	case ViewConfirmExit:
		sections = append(sections, m.renderMenu())
		sections = append(sections, statusWarnStyle.Render("You have unsaved changes. Exit anyway? (y/n)"))
	default:
		sections = append(sections, m.renderMenu())
		if s := m.renderStatus(); s != "" {
			sections = append(sections, s)
		}
		sections = append(sections, renderHelp(menuHelp))
	}

	return strings.Join(sections, "\n")
}

func (m Model) renderMenu() string {
	var lines []string
	for i, item := range menuItems() {
		if i == m.selectedIdx {
			lines = append(lines, menuItemSelectedStyle.Render("▸ "+item))
		} else {
			lines = append(lines, menuItemStyle.Render("  "+item))
		}
	}
	if m.dirty {
		lines = append(lines, "", statusWarnStyle.Render("● unsaved changes"))
	}
	return menuStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderStatus() string {
	switch m.statusKind {
	case statusOK:
		return statusOKStyle.Render("✓ " + m.status)
	case statusWarn:
		return statusWarnStyle.Render(m.status)
	case statusError:
		return statusErrorStyle.Render("✗ " + m.status)
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// readOrDefault reads the settings file, falling back to defaults when it does not exist yet.
func readOrDefault(path string) (*config.Settings, error) {
	s, err := config.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.DefaultSettings(), nil
	}
	return s, err
}

// Run opens the editor on path and blocks until the operator exits.
func Run(path string) error {
	s, err := readOrDefault(path)
	if err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("Editor opened")

	program := tea.NewProgram(New(path, s), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

// Key bindings
var keys = struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Escape    key.Binding
	Enter     key.Binding
	Apply     key.Binding
	Tab       key.Binding
	ShiftTab  key.Binding
	Up        key.Binding
	Down      key.Binding
	FieldUp   key.Binding
	FieldDown key.Binding
	Yes       key.Binding
	No        key.Binding
}{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	Escape:    key.NewBinding(key.WithKeys("esc")),
	Enter:     key.NewBinding(key.WithKeys("enter")),
	Apply:     key.NewBinding(key.WithKeys("ctrl+s")),
	Tab:       key.NewBinding(key.WithKeys("tab")),
	ShiftTab:  key.NewBinding(key.WithKeys("shift+tab")),
	Up:        key.NewBinding(key.WithKeys("up", "k")),
	Down:      key.NewBinding(key.WithKeys("down", "j")),
	FieldUp:   key.NewBinding(key.WithKeys("up")),
	FieldDown: key.NewBinding(key.WithKeys("down")),
	Yes:       key.NewBinding(key.WithKeys("y", "Y")),
	No:        key.NewBinding(key.WithKeys("n", "N")),
}
