package server

import "github.com/cardroomd/cardroomd/pkg/poker"

// Client commands arrive as JSON with a "name" discriminator and the
// command's fields flattened alongside it.
const (
	cmdCreateRoom = "createRoom"
	cmdJoinRoom   = "joinRoom"
	cmdLeaveRoom  = "leaveRoom"
	cmdSetBlinds  = "setBlinds"
	cmdStartHand  = "startHand"
	cmdAction     = "action"
	cmdAddBot     = "addBot"
)

// Server messages reuse the same envelope in the other direction.
const (
	msgWelcome = "welcome"
	msgRoom    = "room"
	msgError   = "error"
)

type baseCmd struct {
	Name string `json:"name"`
}

type createRoomCmd struct {
	PlayerName    string `json:"playerName"`
	SmallBlind    int64  `json:"smallBlind,omitempty"`
	BigBlind      int64  `json:"bigBlind,omitempty"`
	StartingStack int64  `json:"startingStack,omitempty"`
}

type joinRoomCmd struct {
	Code       string `json:"code"`
	PlayerName string `json:"playerName"`
}

type setBlindsCmd struct {
	SmallBlind int64 `json:"smallBlind"`
	BigBlind   int64 `json:"bigBlind"`
}

type actionCmd struct {
	Kind   string `json:"kind"`
	Amount int64  `json:"amount,omitempty"`
}

type addBotCmd struct {
	BotName string `json:"botName,omitempty"`
}

// serverMsg is the single outbound envelope. Name selects which of the
// optional fields are present.
type serverMsg struct {
	Name     string               `json:"name"`
	PlayerID string               `json:"playerID,omitempty"`
	Room     *poker.RoomSnapshot  `json:"room,omitempty"`
	Context  string               `json:"context,omitempty"`
	Message  string               `json:"message,omitempty"`
}
