package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nlaurent/deckops/internal/session"
)

// newSessionFocus identifies which field of the new-session dialog has focus.
type newSessionFocus int

const (
	focusTitle newSessionFocus = iota
	focusPath
	focusGroup
	focusTool
)

// NewSessionDialog collects the fields of session.NewSessionParams. A
// non-empty group_path that names a group not yet in the tree is created on
// submit (GroupTree.CreateGroup, in Home.submitNewSession), per
// spec.md §4.6's "create-group via dialog" — there is no separate
// create-group modal in this core.
type NewSessionDialog struct {
	visible bool
	width   int
	height  int

	titleInput textinput.Model
	pathInput  textinput.Model
	groupInput textinput.Model

	tools      []string
	toolCursor int

	focus         newSessionFocus
	pathCycler    session.CompletionCycler
	validationErr string
}

// NewNewSessionDialog creates a new-session dialog.
func NewNewSessionDialog() *NewSessionDialog {
	title := textinput.New()
	title.Placeholder = "Session title"
	title.CharLimit = MaxNameLength
	title.Width = 30

	path := textinput.New()
	path.Placeholder = "Project directory"
	path.Width = 40

	group := textinput.New()
	group.Placeholder = "Group (optional, e.g. work/frontend)"
	group.Width = 30

	return &NewSessionDialog{
		titleInput: title,
		pathInput:  path,
		groupInput: group,
		tools:      []string{"claude", "gemini", "opencode", "codex", "shell"},
	}
}

// Show opens the dialog, pre-filling title with a generated unique name and
// group with the group the cursor was on (if any).
func (d *NewSessionDialog) Show(instances []*session.Instance, defaultGroupPath, defaultPath string) {
	d.visible = true
	d.focus = focusTitle
	d.validationErr = ""
	d.toolCursor = 0
	d.pathCycler.Reset()

	d.titleInput.SetValue(session.GenerateUniqueSessionName(instances, defaultGroupPath))
	d.pathInput.SetValue(defaultPath)
	d.groupInput.SetValue(defaultGroupPath)

	d.titleInput.Focus()
	d.pathInput.Blur()
	d.groupInput.Blur()
}

// Hide hides the dialog.
func (d *NewSessionDialog) Hide() {
	d.visible = false
	d.titleInput.Blur()
	d.pathInput.Blur()
	d.groupInput.Blur()
}

// IsVisible returns whether the dialog is visible.
func (d *NewSessionDialog) IsVisible() bool {
	return d.visible
}

// SetSize updates dialog dimensions.
func (d *NewSessionDialog) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// Validate checks the current field values, returning an error message or "".
func (d *NewSessionDialog) Validate() string {
	if strings.TrimSpace(d.titleInput.Value()) == "" {
		return "Session title cannot be empty"
	}
	if len(d.titleInput.Value()) > MaxNameLength {
		return fmt.Sprintf("Title too long (max %d characters)", MaxNameLength)
	}
	if strings.TrimSpace(d.pathInput.Value()) == "" {
		return "Project directory cannot be empty"
	}
	return ""
}

// SetError sets an inline validation error displayed inside the dialog.
func (d *NewSessionDialog) SetError(msg string) {
	d.validationErr = msg
}

// Params returns the NewSessionParams built from the current field values.
func (d *NewSessionDialog) Params() session.NewSessionParams {
	tool := ""
	if d.toolCursor >= 0 && d.toolCursor < len(d.tools) {
		tool = d.tools[d.toolCursor]
	}
	return session.NewSessionParams{
		Title:       strings.TrimSpace(d.titleInput.Value()),
		ProjectPath: strings.TrimSpace(d.pathInput.Value()),
		GroupPath:   strings.TrimSpace(d.groupInput.Value()),
		Tool:        tool,
	}
}

func (d *NewSessionDialog) focusedInput() *textinput.Model {
	switch d.focus {
	case focusTitle:
		return &d.titleInput
	case focusPath:
		return &d.pathInput
	case focusGroup:
		return &d.groupInput
	default:
		return nil
	}
}

// Update routes a key to the focused field; Tab/Shift+Tab cycle focus
// through title -> path -> group -> tool -> title, and left/right cycle the
// tool picker. Directory completions for the path field come from
// GetDirectoryCompletions via pathCycler, cycled with Tab while that field
// has focus and a partial path has been typed.
func (d *NewSessionDialog) Update(msg tea.KeyMsg) (*NewSessionDialog, tea.Cmd) {
	if !d.visible {
		return d, nil
	}

	switch msg.String() {
	case "tab":
		if d.focus == focusPath {
			if !d.pathCycler.IsActive() {
				matches, _ := session.GetDirectoryCompletions(d.pathInput.Value())
				d.pathCycler.SetMatches(matches)
			}
			if d.pathCycler.IsActive() {
				d.pathInput.SetValue(d.pathCycler.Next())
				d.pathInput.CursorEnd()
				return d, nil
			}
		}
		d.advanceFocus(1)
		return d, nil
	case "shift+tab":
		d.advanceFocus(-1)
		return d, nil
	case "left":
		if d.focus == focusTool {
			d.toolCursor = (d.toolCursor - 1 + len(d.tools)) % len(d.tools)
			return d, nil
		}
	case "right":
		if d.focus == focusTool {
			d.toolCursor = (d.toolCursor + 1) % len(d.tools)
			return d, nil
		}
	}

	if input := d.focusedInput(); input != nil {
		d.pathCycler.Reset()
		var cmd tea.Cmd
		*input, cmd = input.Update(msg)
		return d, cmd
	}
	return d, nil
}

func (d *NewSessionDialog) advanceFocus(delta int) {
	d.focusedBlur()
	targets := []newSessionFocus{focusTitle, focusPath, focusGroup, focusTool}
	idx := 0
	for i, t := range targets {
		if t == d.focus {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(targets)) % len(targets)
	d.focus = targets[idx]
	d.focusedFocus()
}

func (d *NewSessionDialog) focusedBlur() {
	if input := d.focusedInput(); input != nil {
		input.Blur()
	}
}

func (d *NewSessionDialog) focusedFocus() {
	if input := d.focusedInput(); input != nil {
		input.Focus()
	}
}

// View renders the dialog.
func (d *NewSessionDialog) View() string {
	if !d.visible {
		return ""
	}

	labelStyle := lipgloss.NewStyle().Foreground(ColorTextDim)
	activeLabelStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	field := func(focus newSessionFocus, label string, view string) string {
		style := labelStyle
		if d.focus == focus {
			style = activeLabelStyle
		}
		return style.Render(label) + "\n" + view
	}

	toolName := "(none)"
	if d.toolCursor >= 0 && d.toolCursor < len(d.tools) && d.tools[d.toolCursor] != "" {
		toolName = d.tools[d.toolCursor]
	}
	toolStyle := labelStyle
	if d.focus == focusTool {
		toolStyle = activeLabelStyle
	}
	toolLine := toolStyle.Render("Tool:") + " ◂ " + toolName + " ▸"

	parts := []string{
		field(focusTitle, "Title:", d.titleInput.View()),
		field(focusPath, "Path:", d.pathInput.View()),
		field(focusGroup, "Group:", d.groupInput.View()),
		toolLine,
	}

	if d.validationErr != "" {
		errStyle := lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
		parts = append(parts, errStyle.Render("⚠ "+d.validationErr))
	}

	hintStyle := lipgloss.NewStyle().Foreground(ColorComment)
	parts = append(parts, "", hintStyle.Render("Tab next field │ Enter create │ Esc cancel"))

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	dialogWidth := 54
	if d.width > 0 && d.width < dialogWidth+10 {
		dialogWidth = d.width - 10
	}

	box := DialogBoxStyle.Width(dialogWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, DialogTitleStyle.Render("New Session"), "", content),
	)
	return centerInScreen(box, d.width, d.height)
}
