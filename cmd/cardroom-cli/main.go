package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cardroomd/cardroomd/pkg/client"
	"github.com/cardroomd/cardroomd/pkg/logging"
	"github.com/cardroomd/cardroomd/pkg/ui"
)

func realMain() error {
	var (
		serverURL  string
		name       string
		dataDir    string
		debugLevel string
	)
	flag.StringVar(&serverURL, "server", "ws://127.0.0.1:8080/ws", "Server websocket URL")
	flag.StringVar(&name, "name", "", "Display name at the table")
	flag.StringVar(&dataDir, "datadir", "", "Directory for session and log files (default ~/.cardroom)")
	flag.StringVar(&debugLevel, "debuglevel", "info", "Logging level: trace, debug, info, warn, error")
	flag.Parse()

	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home dir: %v", err)
		}
		dataDir = filepath.Join(home, ".cardroom")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return fmt.Errorf("cannot create data dir: %v", err)
	}

	// The UI owns the terminal, so logs only go to the file.
	logBackend, err := logging.NewLogBackend(logging.LogConfig{
		LogFile:    filepath.Join(dataDir, "logs", "cardroom-cli.log"),
		DebugLevel: debugLevel,
		Quiet:      true,
	})
	if err != nil {
		return fmt.Errorf("failed to init logging: %v", err)
	}
	defer logBackend.Close()
	log := logBackend.Logger("CLI")

	// Reusing the stored session id keeps the same seat across restarts.
	sessPath := filepath.Join(dataDir, "session")
	sessionID := ""
	if b, err := os.ReadFile(sessPath); err == nil {
		sessionID = strings.TrimSpace(string(b))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	c, err := client.Dial(ctx, serverURL, sessionID, log)
	cancel()
	if err != nil {
		return fmt.Errorf("cannot reach server: %v", err)
	}
	defer c.Close()

	if err := os.WriteFile(sessPath, []byte(c.PlayerID), 0o600); err != nil {
		log.Warnf("Cannot persist session id: %v", err)
	}

	if name == "" {
		name = "guest"
	}
	log.Infof("Connected to %s as %s (%s)", serverURL, name, c.PlayerID)

	return ui.Run(c, name)
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
