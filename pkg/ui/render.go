package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cardroomd/cardroomd/pkg/poker"
)

// View renders the current state of the UI
func (m Model) View() string {
	var s string

	if m.err != nil {
		s += errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
	}
	if m.message != "" {
		s += errorStyle.Render(m.message) + "\n\n"
	}

	switch m.state {
	case stateMainMenu:
		s += m.renderMainMenu()
	case stateCreateRoom:
		s += m.renderCreateRoom()
	case stateJoinRoom:
		s += m.renderJoinRoom()
	case stateRoom:
		s += m.renderRoom()
	case stateBetInput:
		s += m.renderBetInput()
	case stateSetBlinds:
		s += m.renderSetBlinds()
	}

	return s
}

func (m Model) renderMainMenu() string {
	var s string
	s += titleStyle.Render("cardroom") + "\n\n"
	s += fmt.Sprintf("  Playing as %s\n\n", m.playerName)

	for i, option := range m.menuOptions {
		if i == m.selectedItem {
			s += focusedStyle.Render(fmt.Sprintf("> %s", option)) + "\n"
		} else {
			s += blurredStyle.Render(fmt.Sprintf("  %s", option)) + "\n"
		}
	}

	s += "\n" + helpStyle.Render("Use arrow keys and Enter, 'q' to quit")
	return s
}

func (m Model) renderCreateRoom() string {
	var s string
	s += titleStyle.Render("Create a room") + "\n\n"

	fields := []struct {
		label string
		value string
	}{
		{"Small blind", m.smallBlind},
		{"Big blind", m.bigBlind},
		{"Starting stack", m.startingStack},
	}

	for i, field := range fields {
		style := blurredStyle
		if i == m.selectedFormField {
			style = focusedStyle
		}
		s += style.Render(fmt.Sprintf("%s %s: %s",
			func() string {
				if i == m.selectedFormField {
					return ">"
				}
				return " "
			}(),
			field.label,
			field.value,
		)) + "\n"
	}

	s += "\n" + helpStyle.Render("Type to edit, Enter to create the room, Esc to go back")
	return s
}

func (m Model) renderJoinRoom() string {
	var s string
	s += titleStyle.Render("Join a room") + "\n\n"
	s += focusedStyle.Render(fmt.Sprintf("Room code: %s", m.codeInput)) + "\n\n"
	s += helpStyle.Render("Enter the code the host read out, then press Enter")
	return s
}

func (m Model) renderBetInput() string {
	var s string
	verb := "Bet"
	if m.betKind == poker.ActionRaise {
		verb = "Raise to"
	}
	s += titleStyle.Render(fmt.Sprintf("%s how much?", verb)) + "\n\n"
	s += fmt.Sprintf("  Minimum: %d   Maximum: %d\n\n", m.betMin, m.betMax)
	s += focusedStyle.Render(fmt.Sprintf("Amount: %s", m.betAmount)) + "\n\n"
	s += helpStyle.Render("The amount is your total for this street. Enter to confirm, Esc to cancel")
	return s
}

func (m Model) renderSetBlinds() string {
	var s string
	s += titleStyle.Render("Set blinds") + "\n\n"

	fields := []struct {
		label string
		value string
	}{
		{"Small blind", m.newSmallBlind},
		{"Big blind", m.newBigBlind},
	}

	for i, field := range fields {
		style := blurredStyle
		if i == m.selectedFormField {
			style = focusedStyle
		}
		s += style.Render(fmt.Sprintf("%s %s: %s",
			func() string {
				if i == m.selectedFormField {
					return ">"
				}
				return " "
			}(),
			field.label,
			field.value,
		)) + "\n"
	}

	s += "\n" + helpStyle.Render("Applies from the next hand. Enter to confirm, Esc to cancel")
	return s
}

func (m Model) renderRoom() string {
	r := m.room
	if r == nil {
		return helpStyle.Render("Waiting for the room...")
	}

	var s string
	s += titleStyle.Render(fmt.Sprintf("Room %s", r.Code)) + "  " + m.renderStageLine() + "\n\n"

	if r.State == poker.StateLobby {
		s += m.renderLobby()
	} else {
		s += m.renderGame()
	}

	for i, option := range m.menuOptions {
		label := m.optionLabel(option)
		if i == m.selectedItem {
			s += focusedStyle.Render(fmt.Sprintf("> %s", label)) + "\n"
		} else {
			s += blurredStyle.Render(fmt.Sprintf("  %s", label)) + "\n"
		}
	}

	s += "\n" + helpStyle.Render("Arrow keys and Enter to act, ctrl+c to quit")
	return s
}

func (m Model) renderStageLine() string {
	r := m.room
	switch r.State {
	case poker.StateLobby:
		return gameInfoStyle.Render("lobby")
	case poker.StateHand:
		stage := strings.ToUpper(string(r.Stage))
		if r.CurrentSeat == r.YourSeat {
			return turnStyle.Render(stage + "  your turn")
		}
		return gameInfoStyle.Render(stage)
	case poker.StateReveal:
		return gameInfoStyle.Render("REVEAL")
	case poker.StateShowdown:
		return gameInfoStyle.Render("SHOWDOWN")
	}
	return ""
}

func (m Model) renderLobby() string {
	r := m.room
	var s string

	s += fmt.Sprintf("  Blinds %d/%d\n\n", r.SmallBlind, r.BigBlind)

	s += "  Players:\n"
	for _, p := range r.Players {
		line := fmt.Sprintf("    Seat %d  %-16s %6d chips", p.Seat, p.Name, p.Stack)
		var badges []string
		if p.IsHost {
			badges = append(badges, "host")
		}
		if p.IsBot {
			badges = append(badges, "bot")
		}
		if !p.Connected {
			badges = append(badges, "away")
		}
		if p.Seat == r.YourSeat {
			badges = append(badges, "you")
		}
		if len(badges) > 0 {
			line += "  (" + strings.Join(badges, ", ") + ")"
		}
		if p.Seat == r.YourSeat {
			line = youStyle.Render(line)
		} else if !p.Connected {
			line = foldedStyle.Render(line)
		}
		s += line + "\n"
	}
	s += "\n"

	if len(r.Players) < 2 {
		s += helpStyle.Render(fmt.Sprintf("  Share the code %s with friends to fill the table", r.Code)) + "\n"
	}

	s += m.renderEvents()
	return s
}

func (m Model) renderGame() string {
	r := m.room
	var s string

	s += m.renderCommunity() + "\n"
	s += m.renderYourCards()

	info := fmt.Sprintf("Pot: %d", r.Pot)
	if r.CurrentBet > 0 {
		info += fmt.Sprintf(" | To match: %d", r.CurrentBet)
	}
	info += fmt.Sprintf(" | Blinds: %d/%d", r.SmallBlind, r.BigBlind)
	s += gameInfoStyle.Render("  "+info) + "\n\n"

	s += m.renderSeats()

	if len(r.Winners) > 0 && r.State != poker.StateHand {
		s += m.renderWinners()
	}
	if len(r.Odds) > 0 {
		s += m.renderOdds()
	}

	s += m.renderEvents()
	return s
}

// renderCommunity draws the board with placeholders for undealt cards so
// the table keeps its shape from preflop to river.
func (m Model) renderCommunity() string {
	r := m.room
	cards := make([]string, 0, 5)
	for _, c := range r.Community {
		cards = append(cards, renderCard(c))
	}
	for i := len(r.Community); i < 5; i++ {
		cards = append(cards, cardStyle.Render(" · "))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m Model) renderYourCards() string {
	me := m.room.Viewer()
	if me == nil || len(me.Hole) == 0 {
		return ""
	}
	cards := make([]string, 0, 2)
	for _, c := range me.Hole {
		cards = append(cards, renderCard(c))
	}
	out := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	if me.HandDesc != "" {
		out = lipgloss.JoinHorizontal(lipgloss.Center, out, gameInfoStyle.Render("  "+me.HandDesc))
	}
	return out + "\n"
}

func (m Model) renderSeats() string {
	r := m.room
	var b strings.Builder
	for _, p := range r.Players {
		line := fmt.Sprintf("  Seat %d  %-16s %6d", p.Seat, p.Name, p.Stack)
		if p.BetThisRound > 0 {
			line += fmt.Sprintf("  bet %d", p.BetThisRound)
		}

		var badges []string
		if p.Seat == r.DealerSeat {
			badges = append(badges, "D")
		}
		if p.AllIn {
			badges = append(badges, "all-in")
		}
		if p.Folded {
			badges = append(badges, "folded")
		}
		if !p.Connected {
			badges = append(badges, "away")
		}
		if p.IsBot {
			badges = append(badges, "bot")
		}
		if len(badges) > 0 {
			line += "  (" + strings.Join(badges, ", ") + ")"
		}

		// Opponent cards show up once the hand reaches the reveal, or
		// for spectators the whole way through.
		if p.Seat != r.YourSeat && len(p.Hole) > 0 {
			line += "  " + inlineCards(p.Hole)
		} else if p.Seat != r.YourSeat && p.HoleCount > 0 && !p.Folded {
			line += "  " + strings.Repeat("🂠 ", p.HoleCount)
		}
		if p.HandDesc != "" && p.Seat != r.YourSeat {
			line += gameInfoStyle.Render("  " + p.HandDesc)
		}

		switch {
		case p.Folded:
			line = foldedStyle.Render(line)
		case p.Seat == r.CurrentSeat:
			line = turnStyle.Render(line)
		case p.Seat == r.YourSeat:
			line = youStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderWinners() string {
	var lines []string
	for _, w := range m.room.Winners {
		names := strings.Join(w.Names, ", ")
		if w.Hand != "" {
			lines = append(lines, fmt.Sprintf("%s wins %d with %s", names, w.Amount, w.Hand))
		} else {
			lines = append(lines, fmt.Sprintf("%s wins %d", names, w.Amount))
		}
	}
	return potStyle.Render(strings.Join(lines, "\n")) + "\n"
}

func (m Model) renderOdds() string {
	r := m.room
	names := make(map[int]string, len(r.Players))
	for _, p := range r.Players {
		names[p.Seat] = p.Name
	}
	var parts []string
	for _, o := range r.Odds {
		parts = append(parts, fmt.Sprintf("%s %.0f%%", names[o.Seat], o.Win*100))
	}
	return gameInfoStyle.Render("  Win odds: "+strings.Join(parts, "  ")) + "\n"
}

func (m Model) renderEvents() string {
	r := m.room
	if len(r.Events) == 0 {
		return ""
	}
	tail := r.Events
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	var s string
	s += "\n"
	for _, e := range tail {
		s += eventStyle.Render(e) + "\n"
	}
	s += "\n"
	return s
}

// optionLabel decorates action options with the amounts the server
// quoted so the player knows the cost before selecting.
func (m Model) optionLabel(opt menuOption) string {
	switch opt {
	case optionCall:
		if a, ok := m.actionOption(poker.ActionCall); ok {
			return fmt.Sprintf("Call %d", a.Call)
		}
	case optionBet:
		if a, ok := m.actionOption(poker.ActionBet); ok {
			return fmt.Sprintf("Bet (min %d)", a.Min)
		}
	case optionRaise:
		if a, ok := m.actionOption(poker.ActionRaise); ok {
			return fmt.Sprintf("Raise (min %d)", a.Min)
		}
	case optionAllIn:
		if a, ok := m.actionOption(poker.ActionAllIn); ok {
			return fmt.Sprintf("All-in (%d)", a.Max)
		}
	}
	return string(opt)
}

func renderCard(c poker.Card) string {
	if c.Suit() == poker.Hearts || c.Suit() == poker.Diamonds {
		return redCardStyle.Render(c.String())
	}
	return cardStyle.Render(c.String())
}

// inlineCards formats hole cards as plain colored text for the compact
// seat rows, where bordered card boxes would break the line layout.
func inlineCards(cards []poker.Card) string {
	var parts []string
	for _, c := range cards {
		if c.Suit() == poker.Hearts || c.Suit() == poker.Diamonds {
			parts = append(parts, errorStyle.Render(c.String()))
		} else {
			parts = append(parts, c.String())
		}
	}
	return strings.Join(parts, " ")
}
