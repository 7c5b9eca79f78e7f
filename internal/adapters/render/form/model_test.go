package form

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/waapi-creator/internal/application"
	"github.com/bnema/waapi-creator/internal/domain"
	"github.com/bnema/waapi-creator/internal/ports"
	"github.com/bnema/waapi-creator/internal/ports/mocks"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type remoteFailure struct {
	message string
}

func (e remoteFailure) Error() string         { return "ak.wwise.invalid_arguments: " + e.message }
func (e remoteFailure) RemoteMessage() string { return e.message }

type stubConnector struct {
	session ports.Session
	err     error
}

func (c stubConnector) Connect(context.Context) (ports.Session, error) {
	return c.session, c.err
}

func newTestModel(t *testing.T, connector ports.Connector) Model {
	t.Helper()

	return New(Options{
		Context: context.Background(),
		Creator: application.NewCreator(connector, nil),
		Catalog: domain.DefaultCatalog(),
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func typeSearch(t *testing.T, m Model, text string) Model {
	t.Helper()

	for m.focus != focusSearch {
		m.moveFocus(1)
	}
	m.search.SetValue("")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func connectedModel(t *testing.T, session *mocks.MockSession, selection domain.Object) (Model, chan []domain.Object) {
	t.Helper()

	updates := make(chan []domain.Object, 1)
	session.On("Info", mock.Anything).Return(domain.ToolInfo{DisplayName: "Wwise", Version: "v2023.1.0"}, nil).Once()
	session.On("SelectedObjects", mock.Anything).Return([]domain.Object{selection}, nil).Once()
	session.On("WatchSelection", mock.Anything).Return((<-chan []domain.Object)(updates), nil).Once()

	m := newTestModel(t, stubConnector{session: session})
	msg := m.connectCmd()()
	m, _ = update(t, m, msg)
	require.Equal(t, stateConnected, m.state)

	return m, updates
}

func TestNewSelectsFirstTypeByDefault(t *testing.T) {
	m := newTestModel(t, nil)

	assert.Equal(t, "ActorMixer", m.SelectedType())
	assert.Equal(t, "ActorMixer", m.search.Value())
	assert.False(t, m.isVoice)
	assert.True(t, m.isRandom)
}

func TestNewHonoursDefaultType(t *testing.T) {
	m := New(Options{Catalog: domain.DefaultCatalog(), DefaultType: domain.TypeSound})

	assert.Equal(t, domain.TypeSound, m.SelectedType())
	assert.True(t, m.flagVisible(domain.PropertyIsVoice))
	assert.False(t, m.flagVisible(domain.PropertyRandomOrSequence))
}

func TestSearchSelectsFirstPrefixMatch(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		voice  bool
		random bool
	}{
		{name: "random container", input: "Ran", want: domain.TypeRandomSequenceContainer, random: true},
		{name: "case insensitive", input: "sou", want: domain.TypeSound, voice: true},
		{name: "no match", input: "zzz", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := typeSearch(t, newTestModel(t, nil), tt.input)

			assert.Equal(t, tt.want, m.SelectedType())
			assert.Equal(t, tt.voice, m.flagVisible(domain.PropertyIsVoice))
			assert.Equal(t, tt.random, m.flagVisible(domain.PropertyRandomOrSequence))
		})
	}
}

func TestTypeListCyclesAndUpdatesSearch(t *testing.T) {
	m := newTestModel(t, nil)
	m.focus = focusTypeList

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "Attenuation", m.SelectedType())
	assert.Equal(t, "Attenuation", m.search.Value())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "WorkUnit", m.SelectedType())
}

func TestFocusSkipsHiddenCheckboxes(t *testing.T) {
	m := newTestModel(t, nil)
	m.focus = focusTypeList

	m.moveFocus(1)
	assert.Equal(t, focusNames, m.focus)

	m = typeSearch(t, m, "Sou")
	m.focus = focusTypeList
	m.moveFocus(1)
	assert.Equal(t, focusVoice, m.focus)
	m.moveFocus(1)
	assert.Equal(t, focusNames, m.focus)
}

func TestTogglePinSwitchesScreenMode(t *testing.T) {
	m := New(Options{Catalog: domain.DefaultCatalog(), Pin: true})
	m.focus = focusPin

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Pinned())
	require.NotNil(t, cmd)

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	assert.True(t, m.Pinned())
	require.NotNil(t, cmd)
}

func TestConnectAdoptsSessionAndSelection(t *testing.T) {
	session := mocks.NewMockSession(t)
	parent := domain.Object{ID: "{p}", Name: "Drums", Type: "ActorMixer"}

	m, updates := connectedModel(t, session, parent)

	assert.Equal(t, session, m.Session())
	assert.Equal(t, parent, m.selection.Object)
	assert.Equal(t, []string{"Connected to Wwise v2023.1.0"}, m.Log())
	assert.Contains(t, m.View(), "Drums | ActorMixer")

	close(updates)
}

func TestConnectButtonIgnoredWhileConnected(t *testing.T) {
	session := mocks.NewMockSession(t)
	m, _ := connectedModel(t, session, domain.Object{ID: "{p}"})

	_, cmd := m.startConnect()
	assert.Nil(t, cmd)
}

func TestConnectFailureShowsModal(t *testing.T) {
	m := newTestModel(t, stubConnector{err: errors.New("dial tcp 127.0.0.1:8080: connection refused")})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Equal(t, stateConnecting, m.state)

	m, _ = update(t, m, m.connectCmd()())
	assert.Equal(t, stateDisconnected, m.state)
	assert.Contains(t, m.modal, "connection refused")
	assert.Len(t, m.Log(), 1)
	assert.Contains(t, m.View(), "connection refused")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.modal)
}

func TestSelectionPushNeedsExactlyOneObject(t *testing.T) {
	session := mocks.NewMockSession(t)
	first := domain.Object{ID: "{a}", Name: "A", Type: "Folder"}
	m, updates := connectedModel(t, session, first)

	m, cmd := update(t, m, selectionMsg{objects: []domain.Object{{ID: "{b}"}, {ID: "{c}"}}})
	assert.Equal(t, first, m.selection.Object)
	assert.NotNil(t, cmd)

	second := domain.Object{ID: "{d}", Name: "D", Type: "Bus"}
	m, _ = update(t, m, selectionMsg{objects: []domain.Object{second}})
	assert.Equal(t, second, m.selection.Object)

	m, _ = update(t, m, selectionMsg{objects: nil})
	assert.Equal(t, second, m.selection.Object)

	close(updates)
}

func TestWaitForSelectionReadsChannel(t *testing.T) {
	updates := make(chan []domain.Object, 1)
	updates <- []domain.Object{{ID: "{a}"}}

	msg := waitForSelection(updates)()
	assert.Equal(t, selectionMsg{objects: []domain.Object{{ID: "{a}"}}}, msg)

	close(updates)
	assert.Equal(t, selectionClosedMsg{updates: updates}, waitForSelection(updates)())
	assert.Nil(t, waitForSelection(nil))
}

func TestClosedSelectionStreamDisconnects(t *testing.T) {
	session := mocks.NewMockSession(t)
	m, updates := connectedModel(t, session, domain.Object{ID: "{p}"})
	session.On("Close").Return(nil).Once()

	close(updates)
	m, _ = update(t, m, waitForSelection(updates)())

	assert.Equal(t, stateDisconnected, m.state)
	assert.Nil(t, m.Session())
	assert.Equal(t, "Connection to Wwise closed", m.Log()[len(m.Log())-1])
}

func TestCreateWithoutConnectionLogsOnly(t *testing.T) {
	m := newTestModel(t, nil)
	m.names.SetValue("Kick")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	assert.True(t, m.submitting)

	m, _ = update(t, m, m.createCmd()())
	assert.False(t, m.submitting)
	assert.Empty(t, m.modal)
	assert.Equal(t, []string{"Cannot connect to Wwise"}, m.Log())
}

func TestCreateSendsOneCallPerName(t *testing.T) {
	session := mocks.NewMockSession(t)
	parent := domain.Object{ID: "{p}", Name: "Drums", Type: "ActorMixer"}
	m, updates := connectedModel(t, session, parent)
	defer close(updates)

	m = typeSearch(t, m, "Sou")
	m.isVoice = true
	m.names.SetValue("Kick\nSnare")

	for _, name := range []string{"Kick", "Snare"} {
		session.On("CreateObject", mock.Anything, domain.CreationRequest{
			Parent:     "{p}",
			Type:       domain.TypeSound,
			Name:       name,
			Properties: map[string]bool{domain.PropertyIsVoice: true},
		}).Return(domain.Object{ID: domain.ObjectID("{" + name + "}"), Name: name, Type: domain.TypeSound}, nil).Once()
	}

	m, _ = update(t, m, m.createCmd()())

	assert.Empty(t, m.modal)
	assert.Equal(t, []string{
		"Connected to Wwise v2023.1.0",
		"Create Kick successfully",
		"Create Snare successfully",
	}, m.Log())
}

func TestCreateRemoteFailureShowsModal(t *testing.T) {
	session := mocks.NewMockSession(t)
	m, updates := connectedModel(t, session, domain.Object{ID: "{p}"})
	defer close(updates)
	m.names.SetValue("Kick\nSnare")

	session.On("CreateObject", mock.Anything, mock.Anything).
		Return(domain.Object{}, remoteFailure{message: "Name already exists"}).Once()

	m, _ = update(t, m, m.createCmd()())

	assert.Equal(t, "Name already exists", m.modal)
	assert.Equal(t, "Failed to create Kick: Name already exists", m.Log()[len(m.Log())-1])
}

func TestViewShowsTypeSpecificCheckbox(t *testing.T) {
	m := newTestModel(t, nil)
	assert.NotContains(t, m.View(), "Is voice")
	assert.NotContains(t, m.View(), "Is random")

	m = typeSearch(t, m, "Sou")
	assert.Contains(t, m.View(), "Is voice")

	m = typeSearch(t, m, "Ran")
	assert.Contains(t, m.View(), "Is random")
	assert.NotContains(t, m.View(), "Is voice")
}
