package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cardroomd/cardroomd/pkg/client"
)

// Message types delivered into the bubbletea loop.
type serverMsg client.Message
type connClosedMsg struct{}
type errorMsg error

// waitForServer blocks on the client's push channel and converts the
// next message into a tea.Msg. Update re-arms it after every receive.
func waitForServer(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		m, ok := <-c.Messages
		if !ok {
			return connClosedMsg{}
		}
		return serverMsg(m)
	}
}

func createRoomCmd(c *client.Client, name string, smallBlind, bigBlind, stack int64) tea.Cmd {
	return func() tea.Msg {
		if err := c.CreateRoom(name, smallBlind, bigBlind, stack); err != nil {
			return errorMsg(err)
		}
		return nil
	}
}

func joinRoomCmd(c *client.Client, code, name string) tea.Cmd {
	return func() tea.Msg {
		if err := c.JoinRoom(code, name); err != nil {
			return errorMsg(err)
		}
		return nil
	}
}

func leaveRoomCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		if err := c.LeaveRoom(); err != nil {
			return errorMsg(err)
		}
		return nil
	}
}

func startHandCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		if err := c.StartHand(); err != nil {
			return errorMsg(err)
		}
		return nil
	}
}

func addBotCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		if err := c.AddBot(""); err != nil {
			return errorMsg(err)
		}
		return nil
	}
}

func setBlindsCmd(c *client.Client, smallBlind, bigBlind int64) tea.Cmd {
	return func() tea.Msg {
		if err := c.SetBlinds(smallBlind, bigBlind); err != nil {
			return errorMsg(err)
		}
		return nil
	}
}

func actionCmd(c *client.Client, kind string, amount int64) tea.Cmd {
	return func() tea.Msg {
		if err := c.Action(kind, amount); err != nil {
			return errorMsg(err)
		}
		return nil
	}
}
