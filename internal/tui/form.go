package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xonecas/pnw-recruiter/internal/config"
)

const formCharLimit = 2000

// FormModel edits one category. Inputs start blank; a blank input keeps the current value.
type FormModel struct {
	cat    category
	inputs []textinput.Model
	focus  int
	err    string
}

// NewFormModel creates a form for cat showing the values in s.
func NewFormModel(cat category, s *config.Settings, width int) FormModel {
	inputs := make([]textinput.Model, len(cat.fields))
	for i, f := range cat.fields {
		ti := textinput.New()
		ti.Prompt = inputPromptStyle.Render("> ")
		ti.Placeholder = f.display(s)
		ti.CharLimit = formCharLimit
		ti.Width = inputWidth(width)
		if f.kind == kindSecret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		inputs[i] = ti
	}

	fm := FormModel{cat: cat, inputs: inputs}
	fm.setFocus(0)
	return fm
}

func inputWidth(width int) int {
	if width <= 0 {
		return 60
	}
	return max(20, width-10)
}

func (f *FormModel) setFocus(i int) {
	n := len(f.inputs)
	f.focus = ((i % n) + n) % n
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

// Next moves focus to the following field, wrapping around.
func (f *FormModel) Next() { f.setFocus(f.focus + 1) }

// Prev moves focus to the previous field, wrapping around.
func (f *FormModel) Prev() { f.setFocus(f.focus - 1) }

// OnLastField reports whether the last field has focus.
func (f FormModel) OnLastField() bool { return f.focus == len(f.inputs)-1 }

// Update forwards a message to the focused input.
func (f FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// Apply returns a copy of s with every non-blank input parsed into it.
// On the first invalid input s is left alone and focus moves to the offending field.
func (f *FormModel) Apply(s *config.Settings) (*config.Settings, bool, error) {
	next := s.Clone()
	changed := false
	for i, fld := range f.cat.fields {
		v := f.inputs[i].Value()
		if strings.TrimSpace(v) == "" {
			continue
		}
		// Passwords may legitimately carry surrounding spaces.
		if fld.kind != kindSecret {
			v = strings.TrimSpace(v)
		}
		if err := fld.set(next, v); err != nil {
			f.err = err.Error()
			f.setFocus(i)
			return s, false, err
		}
		changed = true
	}
	f.err = ""
	return next, changed, nil
}

// View renders the form.
func (f FormModel) View(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(f.cat.title))
	b.WriteString("\n\n")

	labelWidth := 0
	for _, fld := range f.cat.fields {
		labelWidth = max(labelWidth, lipgloss.Width(fld.label))
	}

	for i, fld := range f.cat.fields {
		style := labelStyle
		if i == f.focus {
			style = labelFocusedStyle
		}
		b.WriteString(style.Width(labelWidth).Render(fld.label))
		b.WriteString("  ")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}

	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(statusErrorStyle.Render("✗ " + f.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimmedStyle.Render("Leave a field blank to keep its current value."))

	box := formStyle
	if width > 0 {
		box = box.Width(width - 2)
	}
	return box.Render(b.String())
}
