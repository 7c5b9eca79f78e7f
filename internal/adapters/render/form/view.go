package form

import (
	"fmt"
	"strings"

	"github.com/bnema/waapi-creator/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// headerHeight is the number of rows above the input and output panes.
const headerHeight = 9

func (m Model) View() string {
	if m.modal != "" {
		return m.modalView()
	}

	rows := []string{
		m.titleRow(),
		m.parentRow(),
		m.typeRow(),
		m.flagRow(),
		m.createRow(),
		m.panes(),
		m.helpRow(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) titleRow() string {
	pin := m.checkbox("Pin", m.pinned, m.focus == focusPin)
	connect := m.buttonView("Connect to WAAPI", m.focus == focusConnect, m.state != stateDisconnected)

	return lipgloss.JoinHorizontal(lipgloss.Center,
		m.styles.title.Render("WAAPI Creator"),
		"  ",
		pin,
		"  ",
		connect,
		"  ",
		m.statusView(),
	)
}

func (m Model) statusView() string {
	switch m.state {
	case stateConnecting:
		return m.styles.status.Render(m.spinner.View() + " connecting...")
	case stateConnected:
		return m.styles.statusOK.Render("connected: " + m.info.String())
	default:
		return m.styles.statusWarn.Render("disconnected")
	}
}

func (m Model) parentRow() string {
	parent := m.styles.muted.Render("none")
	if !m.selection.Empty() {
		parent = m.styles.value.Render(m.selection.Object.Label())
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.label.Render("Parent from selected:"),
		parent,
	)
}

func (m Model) typeRow() string {
	search := m.search.View()
	if m.focus == focusSearch {
		search = m.styles.focused.Render("> ") + search
	} else {
		search = "  " + search
	}

	selected := m.SelectedType()
	if selected == "" {
		selected = m.styles.muted.Render("(no match)")
	}
	dropdown := fmt.Sprintf("< %s >", selected)
	if m.focus == focusTypeList {
		dropdown = m.styles.focused.Render(dropdown)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.label.Render("Type to create:"),
		"Search",
		search,
		"  ",
		dropdown,
	)
}

func (m Model) flagRow() string {
	var parts []string
	if m.flagVisible(domain.PropertyIsVoice) {
		parts = append(parts, m.checkbox(m.flagLabel(domain.PropertyIsVoice), m.isVoice, m.focus == focusVoice))
	}
	if m.flagVisible(domain.PropertyRandomOrSequence) {
		parts = append(parts, m.checkbox(m.flagLabel(domain.PropertyRandomOrSequence), m.isRandom, m.focus == focusRandom))
	}

	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "  ")
}

func (m Model) flagLabel(property string) string {
	flag := m.catalog.At(m.typeIndex).Flag
	if flag == nil || flag.Property != property {
		return property
	}
	return flag.Label
}

func (m Model) createRow() string {
	label := "Create"
	if m.submitting {
		label = m.spinner.View() + " Creating"
	}
	return m.buttonView(label, m.focus == focusCreate, m.submitting)
}

func (m Model) panes() string {
	input := m.pane("Input", m.names.View(), m.focus == focusNames)
	output := m.pane("Output", m.output.View(), m.focus == focusOutput)

	return lipgloss.JoinHorizontal(lipgloss.Top, input, " ", output)
}

func (m Model) pane(title, body string, focused bool) string {
	frame := m.styles.frame
	if focused {
		frame = m.styles.frameFocused
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.frameTitle.Render(title+":"),
		frame.Render(body),
	)
}

func (m Model) helpRow() string {
	bindings := m.keys.helpLine()
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		help := b.Help()
		parts = append(parts, fmt.Sprintf("%s %s", help.Key, help.Desc))
	}
	return m.styles.help.Render(strings.Join(parts, " • "))
}

func (m Model) checkbox(label string, checked, focused bool) string {
	box := "[ ]"
	if checked {
		box = "[x]"
	}
	text := box + " " + label
	if focused {
		return m.styles.focused.Render(text)
	}
	return text
}

func (m Model) buttonView(label string, focused, disabled bool) string {
	switch {
	case disabled:
		return m.styles.buttonDisabled.Render(label)
	case focused:
		return m.styles.buttonFocused.Render(label)
	default:
		return m.styles.button.Render(label)
	}
}

func (m Model) modalView() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.modalTitle.Render("Error"),
		"",
		m.modal,
		"",
		m.styles.help.Render("enter/esc to dismiss"),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.styles.modal.Render(body))
}
