// Package ui implements the terminal client for cardroomd rooms. It is
// a bubbletea program fed by two sources: keyboard input and the room
// snapshots the server pushes over the websocket. The server is the
// single source of truth; the UI never predicts game state, it only
// renders the latest snapshot and offers the actions it lists.
package ui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cardroomd/cardroomd/pkg/client"
	"github.com/cardroomd/cardroomd/pkg/poker"
)

// screenState represents the different UI screens
type screenState int

const (
	stateMainMenu screenState = iota
	stateCreateRoom
	stateJoinRoom
	stateRoom
	stateBetInput
	stateSetBlinds
)

type menuOption string

const (
	optionCreateRoom menuOption = "Create a room"
	optionJoinRoom   menuOption = "Join a room"
	optionQuit       menuOption = "Quit"

	optionStartHand menuOption = "Start hand"
	optionAddBot    menuOption = "Add a bot"
	optionSetBlinds menuOption = "Set blinds"
	optionLeaveRoom menuOption = "Leave room"

	optionFold  menuOption = "Fold"
	optionCheck menuOption = "Check"
	optionCall  menuOption = "Call"
	optionBet   menuOption = "Bet"
	optionRaise menuOption = "Raise"
	optionAllIn menuOption = "All-in"
)

// Model is the UI state
type Model struct {
	client     *client.Client
	playerName string

	state        screenState
	selectedItem int
	menuOptions  []menuOption

	// Create room form fields
	smallBlind        string
	bigBlind          string
	startingStack     string
	selectedFormField int

	// Join room form
	codeInput string

	// Set blinds form
	newSmallBlind string
	newBigBlind   string

	// Bet input
	betKind   poker.ActionKind
	betAmount string
	betMin    int64
	betMax    int64

	// Latest room snapshot from the server; nil while not seated.
	room *poker.RoomSnapshot

	err     error
	message string
}

// NewModel creates the initial UI state for a connected client.
func NewModel(c *client.Client, playerName string) Model {
	return Model{
		client:        c,
		playerName:    playerName,
		state:         stateMainMenu,
		menuOptions:   mainMenuOptions(),
		smallBlind:    "10",
		bigBlind:      "20",
		startingStack: "1000",
	}
}

func mainMenuOptions() []menuOption {
	return []menuOption{optionCreateRoom, optionJoinRoom, optionQuit}
}

// Init starts listening for server pushes.
func (m Model) Init() tea.Cmd {
	return waitForServer(m.client)
}

// Update handles incoming messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case serverMsg:
		// Always re-arm the listener before anything else.
		cmds = append(cmds, waitForServer(m.client))

		switch msg.Name {
		case client.MsgRoom:
			m.room = msg.Room
			m.err = nil
			m.message = ""
			if m.room == nil {
				break
			}
			// A snapshot while still on a menu or form screen means the
			// create/join succeeded.
			switch m.state {
			case stateMainMenu, stateCreateRoom, stateJoinRoom:
				m.state = stateRoom
				m.selectedItem = 0
			case stateBetInput:
				// The turn moved on while the amount was being typed.
				if len(m.room.Actions) == 0 {
					m.state = stateRoom
				}
			}
			m.rebuildRoomMenu()

		case client.MsgError:
			m.message = msg.Message
		}

	case connClosedMsg:
		m.err = fmt.Errorf("connection to server lost")
		return m, tea.Quit

	case errorMsg:
		m.err = msg
	}

	return m, tea.Batch(cmds...)
}

// rebuildRoomMenu recomputes the selectable options from the latest
// snapshot. During a hand the options mirror snapshot.Actions, so the
// menu only ever offers what the server will accept.
func (m *Model) rebuildRoomMenu() {
	r := m.room
	if r == nil {
		m.menuOptions = mainMenuOptions()
		return
	}

	me := r.Viewer()
	isHost := me != nil && me.IsHost

	var opts []menuOption
	switch r.State {
	case poker.StateLobby:
		if isHost {
			opts = append(opts, optionStartHand, optionAddBot, optionSetBlinds)
		}
		opts = append(opts, optionLeaveRoom)
	case poker.StateShowdown:
		if isHost {
			opts = append(opts, optionStartHand, optionSetBlinds)
		}
		opts = append(opts, optionLeaveRoom)
	case poker.StateHand:
		for _, a := range r.Actions {
			switch a.Kind {
			case poker.ActionFold:
				opts = append(opts, optionFold)
			case poker.ActionCheck:
				opts = append(opts, optionCheck)
			case poker.ActionCall:
				opts = append(opts, optionCall)
			case poker.ActionBet:
				opts = append(opts, optionBet)
			case poker.ActionRaise:
				opts = append(opts, optionRaise)
			case poker.ActionAllIn:
				opts = append(opts, optionAllIn)
			}
		}
		opts = append(opts, optionLeaveRoom)
	default:
		opts = append(opts, optionLeaveRoom)
	}

	m.menuOptions = opts
	if m.selectedItem >= len(opts) {
		m.selectedItem = 0
	}
}

// actionOption finds the server-offered bounds for an action kind.
func (m *Model) actionOption(kind poker.ActionKind) (poker.ActionOption, bool) {
	if m.room == nil {
		return poker.ActionOption{}, false
	}
	for _, a := range m.room.Actions {
		if a.Kind == kind {
			return a, true
		}
	}
	return poker.ActionOption{}, false
}

// leaveRoom resets the UI to the main menu and tells the server.
func (m *Model) leaveRoom() tea.Cmd {
	m.room = nil
	m.state = stateMainMenu
	m.selectedItem = 0
	m.menuOptions = mainMenuOptions()
	return leaveRoomCmd(m.client)
}

func parseChips(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Run drives the UI until the player quits or the connection drops.
func Run(c *client.Client, playerName string) error {
	p := tea.NewProgram(NewModel(c, playerName), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
