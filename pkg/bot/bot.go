// Package bot runs a headless client that fills a seat in an existing
// room and plays a passive check-call game. It is the out-of-process
// counterpart to the server-side bots added with the addBot command,
// useful for exercising a server from the outside.
package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/decred/slog"

	"github.com/cardroomd/cardroomd/pkg/client"
	"github.com/cardroomd/cardroomd/pkg/poker"
)

// Config describes one bot seat.
type Config struct {
	// ServerURL is the cardroomd websocket URL.
	ServerURL string

	// Code is the room to join. Required.
	Code string

	// Name is the display name at the table. Empty derives one from the
	// process id.
	Name string

	// Think is how long to sit before acting on each turn.
	Think time.Duration

	Log slog.Logger
}

// Run connects, joins the room, and answers every turn until ctx is
// canceled or the connection drops.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Code == "" {
		return errors.New("room code is required")
	}
	log := cfg.Log
	if log == nil {
		log = slog.Disabled
	}
	name := cfg.Name
	if name == "" {
		name = fmt.Sprintf("shill-%d", os.Getpid())
	}

	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	c, err := client.Dial(dialCtx, cfg.ServerURL, "", log)
	cancel()
	if err != nil {
		return fmt.Errorf("cannot reach server: %w", err)
	}
	defer c.Close()

	if err := c.JoinRoom(cfg.Code, name); err != nil {
		return err
	}
	log.Infof("Joined room %s as %s", cfg.Code, name)

	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-c.Messages:
			if !ok {
				return errors.New("connection lost")
			}
			switch m.Name {
			case client.MsgError:
				log.Warnf("Server: %s", m.Message)
			case client.MsgRoom:
				if m.Room == nil || len(m.Room.Actions) == 0 {
					continue
				}
				kind := ChooseAction(m.Room.Actions)
				log.Debugf("Acting: %s", kind)
				if cfg.Think > 0 {
					select {
					case <-ctx.Done():
						return nil
					case <-time.After(cfg.Think):
					}
				}
				if err := c.Action(string(kind), 0); err != nil {
					return err
				}
			}
		}
	}
}

// ChooseAction picks the most passive action offered: check when free,
// call when not, fold only when the server offers nothing cheaper.
func ChooseAction(actions []poker.ActionOption) poker.ActionKind {
	for _, a := range actions {
		if a.Kind == poker.ActionCheck {
			return poker.ActionCheck
		}
	}
	for _, a := range actions {
		if a.Kind == poker.ActionCall {
			return poker.ActionCall
		}
	}
	return poker.ActionFold
}
