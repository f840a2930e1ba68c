package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nlaurent/deckops/internal/session"
)

// View renders the full HomeView: header, flattened list pane, footer menu,
// and — when one is occupied — the active dialog overlay in place of the
// list.
func (h *Home) View() string {
	if h.hasDialog() {
		return h.renderDialogs()
	}

	header := h.renderHeader()
	list := h.renderList()
	footer := h.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, list, footer)
}

func (h *Home) renderDialogs() string {
	switch {
	case h.help.IsVisible():
		return h.help.View()
	case h.newDialog.IsVisible():
		return h.newDialog.View()
	case h.renameDlg.IsVisible():
		return h.renameDlg.View()
	case h.confirmDlg.IsVisible():
		return h.confirmDlg.View()
	case h.infoDlg.IsVisible():
		return h.infoDlg.View()
	case h.settingsDlg.IsVisible():
		return h.settingsDlg.View()
	}
	return ""
}

func (h *Home) renderHeader() string {
	viewModeName := "Agent"
	if h.viewMode == ViewTerminal {
		viewModeName = "Terminal"
	}

	title := TitleStyle.Render(fmt.Sprintf(" deckops · %s · %s ", h.profile, viewModeName))

	if h.searchActive {
		prompt := SearchPromptStyle.Render("/") + h.searchQuery
		box := SearchBoxStyle.Render(prompt)
		return lipgloss.JoinHorizontal(lipgloss.Top, title, " ", box)
	}

	if len(h.searchMatches) > 0 {
		hint := SubtitleStyle.Render(fmt.Sprintf(" match %d/%d (n/N to cycle) ", h.searchMatchIdx+1, len(h.searchMatches)))
		return lipgloss.JoinHorizontal(lipgloss.Top, title, hint)
	}

	return title
}

func (h *Home) renderList() string {
	if len(h.flatItems) == 0 {
		return DimStyle.Render("No sessions yet — press 'n' to create one.")
	}

	var lines []string
	for i, item := range h.flatItems {
		selected := i == h.cursor
		switch item.Kind {
		case session.ItemGroup:
			lines = append(lines, h.renderGroupRow(item, selected))
		case session.ItemSession:
			lines = append(lines, h.renderSessionRow(item, selected))
		}
	}
	return strings.Join(lines, "\n")
}

func (h *Home) renderGroupRow(item session.Item, selected bool) string {
	indent := strings.Repeat("  ", item.Depth)
	expand := "▾"
	if item.Collapsed {
		expand = "▸"
	}

	nameStyle, countStyle, expandStyle := GroupNameStyle, GroupCountStyle, GroupExpandStyle
	if selected {
		nameStyle, countStyle, expandStyle = GroupNameSelStyle, GroupCountSelStyle, GroupExpandSelStyle
	}

	row := fmt.Sprintf("%s%s %s %s", indent, expandStyle.Render(expand), nameStyle.Render(item.GroupName),
		countStyle.Render(fmt.Sprintf("(%d)", item.SessionCount)))
	if selected {
		return SessionItemSelectedStyle.Render(row)
	}
	return row
}

func (h *Home) renderSessionRow(item session.Item, selected bool) string {
	indent := strings.Repeat("  ", item.Depth)
	inst := h.instanceByID[item.SessionID]
	if inst == nil {
		return indent + DimStyle.Render("(missing session)")
	}

	status := StatusIndicator(string(inst.Status))
	icon := ToolIcon(inst.Tool)
	titleStyle := SessionTitleDefault
	if inst.Status == session.StatusError {
		titleStyle = SessionTitleError
	} else if inst.Status == session.StatusRunning {
		titleStyle = SessionTitleActive
	}
	if selected {
		titleStyle = SessionTitleSelStyle
	}

	prefix := "  "
	if selected {
		prefix = SessionSelectionPrefix.Render("▶ ")
	}

	row := fmt.Sprintf("%s%s%s %s %s", indent, prefix, status, icon, titleStyle.Render(inst.Title))
	if selected {
		return SessionItemSelectedStyle.Render(row)
	}
	return row
}

func (h *Home) renderFooter() string {
	return h.menu.View()
}
