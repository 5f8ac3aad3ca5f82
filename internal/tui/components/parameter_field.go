package components

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/flipcalc/internal/tui/tuistyles"
)

// ParameterField is a numeric text input with a nudge step.
type ParameterField struct {
	Name        string
	Label       string
	Unit        string // e.g., "%", " months"
	Step        float64
	Integer     bool
	Description string

	input textinput.Model
	err   error
}

// NewParameterField creates a field holding value.
func NewParameterField(name, label string, value, step float64) *ParameterField {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 16
	ti.Width = 16

	f := &ParameterField{
		Name:  name,
		Label: label,
		Step:  step,
		input: ti,
	}
	f.SetValue(value)
	return f
}

// WithUnit sets the unit suffix
func (f *ParameterField) WithUnit(unit string) *ParameterField {
	f.Unit = unit
	return f
}

// WithInteger restricts the field to whole numbers
func (f *ParameterField) WithInteger() *ParameterField {
	f.Integer = true
	f.SetValue(math.Round(f.parsedOrZero()))
	return f
}

// WithDescription adds a description/help text
func (f *ParameterField) WithDescription(desc string) *ParameterField {
	f.Description = desc
	return f
}

// Focus gives the field keyboard focus.
func (f *ParameterField) Focus() tea.Cmd {
	return f.input.Focus()
}

// Blur removes keyboard focus.
func (f *ParameterField) Blur() {
	f.input.Blur()
}

// Focused reports whether the field has focus.
func (f *ParameterField) Focused() bool {
	return f.input.Focused()
}

// Text returns the raw input.
func (f *ParameterField) Text() string {
	return f.input.Value()
}

// SetText replaces the raw input and re-parses it.
func (f *ParameterField) SetText(s string) {
	f.input.SetValue(s)
	f.input.CursorEnd()
	_, f.err = f.parse()
}

// SetValue formats v into the input.
func (f *ParameterField) SetValue(v float64) {
	if f.Integer {
		f.SetText(strconv.FormatInt(int64(math.Round(v)), 10))
		return
	}
	f.SetText(strconv.FormatFloat(v, 'f', -1, 64))
}

// Value parses the input.
func (f *ParameterField) Value() (float64, error) {
	return f.parse()
}

// Err is the last parse error, if any.
func (f *ParameterField) Err() error {
	return f.err
}

// Nudge moves the value by dir steps. Unparseable input is left alone.
func (f *ParameterField) Nudge(dir int) bool {
	v, err := f.parse()
	if err != nil {
		return false
	}
	f.SetValue(v + f.Step*float64(dir))
	return true
}

// Update forwards a key to the input and re-parses.
func (f *ParameterField) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	_, f.err = f.parse()
	return cmd
}

func (f *ParameterField) parse() (float64, error) {
	s := strings.TrimSpace(f.input.Value())
	if s == "" {
		return 0, errors.New("value required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if f.Integer && v != math.Trunc(v) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return v, nil
}

func (f *ParameterField) parsedOrZero() float64 {
	v, _ := f.parse()
	return v
}

// Render returns the styled field on one line, plus an error line when the
// input does not parse.
func (f *ParameterField) Render() string {
	labelStyle := tuistyles.ParameterLabelStyle
	valueStyle := tuistyles.ParameterValueStyle
	marker := "  "
	if f.Focused() {
		labelStyle = labelStyle.Foreground(tuistyles.ColorPrimary)
		valueStyle = valueStyle.Foreground(tuistyles.ColorAccent)
		marker = tuistyles.SelectedItemStyle.Render("▸ ")
	}

	line := marker + labelStyle.Render(f.Label) + valueStyle.Render(f.input.View())
	if f.Unit != "" {
		line += tuistyles.SubtitleStyle.Render(f.Unit)
	}

	if f.err != nil {
		line += "\n    " + tuistyles.ErrorStyle.Render(f.err.Error())
	} else if f.Focused() && f.Description != "" {
		line += "\n    " + lipgloss.NewStyle().
			Foreground(tuistyles.ColorMuted).
			Italic(true).
			Render(f.Description)
	}

	return line
}
