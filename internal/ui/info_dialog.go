package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InfoDialog shows a single message and waits for any key to dismiss it.
// Used to surface action failures (attach/delete reported back by the outer
// loop) and the "use Agent view to delete" notice, per spec's info-dialog
// error-reporting contract: nothing in the core panics or swallows these.
type InfoDialog struct {
	visible bool
	title   string
	message string
	width   int
	height  int
}

// NewInfoDialog creates a new info dialog.
func NewInfoDialog() *InfoDialog {
	return &InfoDialog{}
}

// Show displays title/message and makes the dialog visible.
func (d *InfoDialog) Show(title, message string) {
	d.visible = true
	d.title = title
	d.message = message
}

// Hide hides the dialog.
func (d *InfoDialog) Hide() {
	d.visible = false
}

// IsVisible returns whether the dialog is visible.
func (d *InfoDialog) IsVisible() bool {
	return d.visible
}

// SetSize updates dialog dimensions.
func (d *InfoDialog) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// Update dismisses the dialog on any key.
func (d *InfoDialog) Update(msg tea.KeyMsg) (*InfoDialog, tea.Cmd) {
	if d.visible {
		d.Hide()
	}
	return d, nil
}

// View renders the dialog.
func (d *InfoDialog) View() string {
	if !d.visible {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).MarginBottom(1)
	msgStyle := lipgloss.NewStyle().Foreground(ColorText)
	hintStyle := lipgloss.NewStyle().Foreground(ColorComment).MarginTop(1)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(d.title),
		msgStyle.Render(d.message),
		hintStyle.Render("Press any key to dismiss"),
	)

	dialogWidth := 50
	if d.width > 0 && d.width < dialogWidth+10 {
		dialogWidth = d.width - 10
	}

	box := DialogBoxStyle.Width(dialogWidth).Render(content)
	return centerInScreen(box, d.width, d.height)
}
