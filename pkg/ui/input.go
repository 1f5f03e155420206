package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cardroomd/cardroomd/pkg/poker"
)

// handleKey processes keyboard input based on the current screen.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.state {
	case stateMainMenu:
		return m.handleMainMenuKey(msg)
	case stateCreateRoom:
		return m.handleCreateRoomKey(msg)
	case stateJoinRoom:
		return m.handleJoinRoomKey(msg)
	case stateRoom:
		return m.handleRoomKey(msg)
	case stateBetInput:
		return m.handleBetInputKey(msg)
	case stateSetBlinds:
		return m.handleSetBlindsKey(msg)
	}
	return nil
}

func (m *Model) handleMainMenuKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "up", "k":
		if m.selectedItem > 0 {
			m.selectedItem--
		}
	case "down", "j":
		if m.selectedItem < len(m.menuOptions)-1 {
			m.selectedItem++
		}
	case "enter", " ":
		switch m.menuOptions[m.selectedItem] {
		case optionCreateRoom:
			m.state = stateCreateRoom
			m.selectedFormField = 0
		case optionJoinRoom:
			m.state = stateJoinRoom
			m.codeInput = ""
		case optionQuit:
			return tea.Quit
		}
	}
	return nil
}

func (m *Model) handleCreateRoomKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		m.state = stateMainMenu
		m.selectedItem = 0
	case "up", "k":
		if m.selectedFormField > 0 {
			m.selectedFormField--
		}
	case "down", "j":
		if m.selectedFormField < 2 {
			m.selectedFormField++
		}
	case "enter":
		return createRoomCmd(m.client, m.playerName,
			parseChips(m.smallBlind), parseChips(m.bigBlind), parseChips(m.startingStack))
	case "backspace":
		switch m.selectedFormField {
		case 0:
			m.smallBlind = trimLast(m.smallBlind)
		case 1:
			m.bigBlind = trimLast(m.bigBlind)
		case 2:
			m.startingStack = trimLast(m.startingStack)
		}
	default:
		if isDigit(msg.String()) {
			switch m.selectedFormField {
			case 0:
				m.smallBlind += msg.String()
			case 1:
				m.bigBlind += msg.String()
			case 2:
				m.startingStack += msg.String()
			}
		}
	}
	return nil
}

func (m *Model) handleJoinRoomKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.state = stateMainMenu
		m.selectedItem = 0
	case "enter":
		if m.codeInput != "" {
			return joinRoomCmd(m.client, m.codeInput, m.playerName)
		}
	case "backspace":
		m.codeInput = trimLast(m.codeInput)
	default:
		// Room codes are short and alphanumeric; uppercase as typed so
		// the screen matches what the host reads out.
		s := msg.String()
		if len(s) == 1 && isAlnumChar(s[0]) && len(m.codeInput) < 8 {
			m.codeInput += strings.ToUpper(s)
		}
	}
	return nil
}

func (m *Model) handleRoomKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.selectedItem > 0 {
			m.selectedItem--
		}
	case "down", "j":
		if m.selectedItem < len(m.menuOptions)-1 {
			m.selectedItem++
		}
	case "enter", " ":
		if m.selectedItem >= len(m.menuOptions) {
			return nil
		}
		return m.selectRoomOption(m.menuOptions[m.selectedItem])
	}
	return nil
}

func (m *Model) selectRoomOption(opt menuOption) tea.Cmd {
	switch opt {
	case optionStartHand:
		return startHandCmd(m.client)
	case optionAddBot:
		return addBotCmd(m.client)
	case optionSetBlinds:
		if m.room != nil {
			m.newSmallBlind = fmt.Sprintf("%d", m.room.SmallBlind)
			m.newBigBlind = fmt.Sprintf("%d", m.room.BigBlind)
		}
		m.selectedFormField = 0
		m.state = stateSetBlinds
	case optionLeaveRoom:
		return m.leaveRoom()
	case optionFold:
		return actionCmd(m.client, string(poker.ActionFold), 0)
	case optionCheck:
		return actionCmd(m.client, string(poker.ActionCheck), 0)
	case optionCall:
		return actionCmd(m.client, string(poker.ActionCall), 0)
	case optionAllIn:
		return actionCmd(m.client, string(poker.ActionAllIn), 0)
	case optionBet, optionRaise:
		kind := poker.ActionBet
		if opt == optionRaise {
			kind = poker.ActionRaise
		}
		a, ok := m.actionOption(kind)
		if !ok {
			return nil
		}
		m.betKind = kind
		m.betMin = a.Min
		m.betMax = a.Max
		m.betAmount = fmt.Sprintf("%d", a.Min)
		m.state = stateBetInput
	}
	return nil
}

func (m *Model) handleBetInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		m.state = stateRoom
	case "enter":
		if m.betAmount == "" {
			return nil
		}
		amount := parseChips(m.betAmount)
		m.state = stateRoom
		return actionCmd(m.client, string(m.betKind), amount)
	case "backspace":
		m.betAmount = trimLast(m.betAmount)
	default:
		if isDigit(msg.String()) {
			m.betAmount += msg.String()
		}
	}
	return nil
}

func (m *Model) handleSetBlindsKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		m.state = stateRoom
	case "up", "k":
		if m.selectedFormField > 0 {
			m.selectedFormField--
		}
	case "down", "j":
		if m.selectedFormField < 1 {
			m.selectedFormField++
		}
	case "enter":
		m.state = stateRoom
		return setBlindsCmd(m.client, parseChips(m.newSmallBlind), parseChips(m.newBigBlind))
	case "backspace":
		if m.selectedFormField == 0 {
			m.newSmallBlind = trimLast(m.newSmallBlind)
		} else {
			m.newBigBlind = trimLast(m.newBigBlind)
		}
	default:
		if isDigit(msg.String()) {
			if m.selectedFormField == 0 {
				m.newSmallBlind += msg.String()
			} else {
				m.newBigBlind += msg.String()
			}
		}
	}
	return nil
}

func trimLast(s string) string {
	if len(s) == 0 {
		return s
	}
	return s[:len(s)-1]
}

func isDigit(s string) bool {
	return len(s) == 1 && s[0] >= '0' && s[0] <= '9'
}

func isAlnumChar(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
