package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/waapi-creator/internal/application"
	"github.com/bnema/waapi-creator/internal/domain"
	"github.com/bnema/waapi-creator/internal/ports"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Creator is the application surface the form drives.
type Creator interface {
	Connect(ctx context.Context) (application.Connection, error)
	CreateObjects(ctx context.Context, session ports.Session, batch domain.BatchRequest, report application.Report) (application.BatchResult, error)
	Disconnect(session ports.Session) error
}

type focusArea int

const (
	focusPin focusArea = iota
	focusConnect
	focusSearch
	focusTypeList
	focusVoice
	focusRandom
	focusNames
	focusCreate
	focusOutput
	focusCount
)

type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
)

const (
	defaultWidth  = 100
	defaultHeight = 32
	noType        = -1
)

type connectedMsg struct {
	conn application.Connection
}

type connectFailedMsg struct {
	err error
}

type selectionMsg struct {
	objects []domain.Object
}

type selectionClosedMsg struct {
	updates <-chan []domain.Object
}

type createDoneMsg struct {
	lines []string
	err   error
}

type Options struct {
	Context        context.Context
	Creator        Creator
	Catalog        domain.Catalog
	DefaultType    string
	Pin            bool
	OnNameConflict domain.NameConflict
}

type Model struct {
	ctx            context.Context
	creator        Creator
	catalog        domain.Catalog
	onNameConflict domain.NameConflict
	keys           keyMap
	styles         styles

	focus      focusArea
	pinned     bool
	state      connState
	submitting bool

	session   ports.Session
	updates   <-chan []domain.Object
	info      domain.ToolInfo
	selection domain.Selection

	search    textinput.Model
	typeIndex int
	isVoice   bool
	isRandom  bool
	names     textarea.Model
	output    viewport.Model
	logLines  []string
	spinner   spinner.Model
	modal     string

	width  int
	height int
}

func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	catalog := opts.Catalog
	if catalog.Len() == 0 {
		catalog = domain.DefaultCatalog()
	}

	search := textinput.New()
	search.Prompt = ""
	search.Placeholder = "search type"
	search.CharLimit = 64
	search.Width = 24

	names := textarea.New()
	names.Placeholder = "one object name per line"
	names.ShowLineNumbers = false

	m := Model{
		ctx:            ctx,
		creator:        opts.Creator,
		catalog:        catalog,
		onNameConflict: opts.OnNameConflict,
		keys:           newKeyMap(),
		styles:         newStyles(),
		focus:          focusConnect,
		pinned:         opts.Pin,
		typeIndex:      0,
		search:         search,
		names:          names,
		output:         viewport.New(0, 0),
		spinner:        spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69")))),
	}

	for _, objectType := range catalog.Types() {
		if objectType.Flag == nil {
			continue
		}
		switch objectType.Flag.Property {
		case domain.PropertyIsVoice:
			m.isVoice = objectType.Flag.Default
		case domain.PropertyRandomOrSequence:
			m.isRandom = objectType.Flag.Default
		}
	}
	if i := catalog.IndexOf(opts.DefaultType); i >= 0 {
		m.typeIndex = i
	}
	m.search.SetValue(m.SelectedType())
	m.resize(defaultWidth, defaultHeight)

	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Session returns the live session, if any, so the caller can close it after
// the program exits.
func (m Model) Session() ports.Session {
	return m.session
}

func (m Model) Pinned() bool {
	return m.pinned
}

func (m Model) SelectedType() string {
	if m.typeIndex == noType {
		return ""
	}
	return m.catalog.At(m.typeIndex).Name
}

func (m Model) Log() []string {
	out := make([]string, len(m.logLines))
	copy(out, m.logLines)
	return out
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case connectedMsg:
		return m.onConnected(msg.conn)
	case connectFailedMsg:
		m.state = stateDisconnected
		m.appendLog(application.UserMessage(msg.err))
		m.modal = application.UserMessage(msg.err)
		return m, nil
	case selectionMsg:
		if next, changed := m.selection.Apply(msg.objects); changed {
			m.selection = next
		}
		return m, waitForSelection(m.updates)
	case selectionClosedMsg:
		if msg.updates != m.updates || m.state != stateConnected {
			return m, nil
		}
		if m.session != nil {
			_ = m.creator.Disconnect(m.session)
		}
		m.session = nil
		m.updates = nil
		m.state = stateDisconnected
		m.appendLog("Connection to Wwise closed")
		return m, nil
	case createDoneMsg:
		m.submitting = false
		for _, line := range msg.lines {
			m.appendLog(line)
		}
		var precondition *application.PreconditionError
		if msg.err != nil && !errors.As(msg.err, &precondition) {
			m.modal = application.UserMessage(msg.err)
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.modal != "" {
		if key.Matches(msg, m.keys.Dismiss) {
			m.modal = ""
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		return m, m.moveFocus(1)
	case key.Matches(msg, m.keys.Prev):
		return m, m.moveFocus(-1)
	case key.Matches(msg, m.keys.Connect):
		return m.startConnect()
	case key.Matches(msg, m.keys.Create):
		return m.startCreate()
	}

	switch m.focus {
	case focusPin:
		if key.Matches(msg, m.keys.Activate) {
			return m.togglePin()
		}
	case focusConnect:
		if key.Matches(msg, m.keys.Activate) {
			return m.startConnect()
		}
	case focusCreate:
		if key.Matches(msg, m.keys.Activate) {
			return m.startCreate()
		}
	case focusVoice:
		if key.Matches(msg, m.keys.Activate) {
			m.isVoice = !m.isVoice
		}
	case focusRandom:
		if key.Matches(msg, m.keys.Activate) {
			m.isRandom = !m.isRandom
		}
	case focusTypeList:
		switch {
		case key.Matches(msg, m.keys.Left):
			m.cycleType(-1)
		case key.Matches(msg, m.keys.Right):
			m.cycleType(1)
		}
	case focusSearch:
		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if m.search.Value() != before {
			m.applySearch(m.search.Value())
		}
		return m, cmd
	default:
		return m.updateFocused(msg)
	}

	return m, nil
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusNames:
		m.names, cmd = m.names.Update(msg)
	case focusOutput:
		m.output, cmd = m.output.Update(msg)
	case focusSearch:
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

func (m Model) togglePin() (tea.Model, tea.Cmd) {
	m.pinned = !m.pinned
	if m.pinned {
		return m, tea.EnterAltScreen
	}
	return m, tea.ExitAltScreen
}

func (m Model) startConnect() (tea.Model, tea.Cmd) {
	if m.state != stateDisconnected {
		return m, nil
	}

	m.state = stateConnecting
	return m, tea.Batch(m.connectCmd(), m.spinner.Tick)
}

func (m Model) connectCmd() tea.Cmd {
	ctx := m.ctx
	creator := m.creator
	return func() tea.Msg {
		conn, err := creator.Connect(ctx)
		if err != nil {
			return connectFailedMsg{err: err}
		}
		return connectedMsg{conn: conn}
	}
}

func (m Model) onConnected(conn application.Connection) (tea.Model, tea.Cmd) {
	m.state = stateConnected
	m.session = conn.Session
	m.updates = conn.Updates
	m.info = conn.Info
	m.selection = conn.Selection
	m.appendLog(fmt.Sprintf("Connected to %s", conn.Info))

	return m, waitForSelection(m.updates)
}

func waitForSelection(updates <-chan []domain.Object) tea.Cmd {
	if updates == nil {
		return nil
	}

	return func() tea.Msg {
		objects, ok := <-updates
		if !ok {
			return selectionClosedMsg{updates: updates}
		}
		return selectionMsg{objects: objects}
	}
}

func (m Model) startCreate() (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	m.submitting = true
	return m, tea.Batch(m.createCmd(), m.spinner.Tick)
}

func (m Model) createCmd() tea.Cmd {
	ctx := m.ctx
	creator := m.creator
	session := m.session
	batch := m.batchRequest()

	return func() tea.Msg {
		var lines []string
		_, err := creator.CreateObjects(ctx, session, batch, func(line string) {
			lines = append(lines, line)
		})
		return createDoneMsg{lines: lines, err: err}
	}
}

func (m Model) batchRequest() domain.BatchRequest {
	return domain.BatchRequest{
		Names:          domain.ParseNames(m.names.Value()),
		Parent:         m.selection.Object.ID,
		Type:           m.SelectedType(),
		IsVoice:        m.isVoice,
		IsRandom:       m.isRandom,
		OnNameConflict: m.onNameConflict,
	}
}

// applySearch selects the first type matching the typed prefix, or clears
// the type when nothing matches.
func (m *Model) applySearch(prefix string) {
	match, ok := m.catalog.MatchPrefix(prefix)
	if !ok {
		m.typeIndex = noType
		return
	}
	m.typeIndex = m.catalog.IndexOf(match.Name)
}

func (m *Model) cycleType(step int) {
	count := m.catalog.Len()
	if count == 0 {
		return
	}

	next := 0
	if m.typeIndex != noType {
		next = (m.typeIndex + step + count) % count
	}
	m.typeIndex = next
	m.search.SetValue(m.SelectedType())
	m.search.CursorEnd()
}

func (m Model) flagVisible(property string) bool {
	if m.typeIndex == noType {
		return false
	}
	flag := m.catalog.At(m.typeIndex).Flag
	return flag != nil && flag.Property == property
}

func (m *Model) moveFocus(step int) tea.Cmd {
	m.blurFocused()

	next := m.focus
	for range focusCount {
		next = (next + focusArea(step) + focusCount) % focusCount
		if m.focusable(next) {
			break
		}
	}
	m.focus = next

	switch m.focus {
	case focusSearch:
		return m.search.Focus()
	case focusNames:
		return m.names.Focus()
	}
	return nil
}

func (m Model) focusable(f focusArea) bool {
	switch f {
	case focusVoice:
		return m.flagVisible(domain.PropertyIsVoice)
	case focusRandom:
		return m.flagVisible(domain.PropertyRandomOrSequence)
	default:
		return true
	}
}

func (m *Model) blurFocused() {
	switch m.focus {
	case focusSearch:
		m.search.Blur()
	case focusNames:
		m.names.Blur()
	}
}

func (m *Model) appendLog(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	m.logLines = append(m.logLines, line)
	m.output.SetContent(strings.Join(m.logLines, "\n"))
	m.output.GotoBottom()
}

func (m Model) busy() bool {
	return m.state == stateConnecting || m.submitting
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	paneWidth := max((width-4)/2, 20)
	paneHeight := max(height-headerHeight-2, 5)

	m.names.SetWidth(paneWidth)
	m.names.SetHeight(paneHeight)
	m.output.Width = paneWidth
	m.output.Height = paneHeight
	m.output.SetContent(strings.Join(m.logLines, "\n"))
}
