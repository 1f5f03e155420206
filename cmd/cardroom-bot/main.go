package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardroomd/cardroomd/pkg/bot"
	"github.com/cardroomd/cardroomd/pkg/logging"
)

var (
	serverURL  = flag.String("server", "ws://127.0.0.1:8080/ws", "Server websocket URL")
	code       = flag.String("code", "", "Room code to join (required)")
	name       = flag.String("name", "", "Display name at the table")
	thinkMs    = flag.Int("thinkms", 800, "Delay before acting in milliseconds")
	debugLevel = flag.String("debuglevel", "info", "Logging level: trace, debug, info, warn, error")
)

func realMain() error {
	flag.Parse()

	logBackend, err := logging.NewLogBackend(logging.LogConfig{DebugLevel: *debugLevel})
	if err != nil {
		return fmt.Errorf("failed to init logging: %v", err)
	}
	defer logBackend.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return bot.Run(ctx, bot.Config{
		ServerURL: *serverURL,
		Code:      *code,
		Name:      *name,
		Think:     time.Duration(*thinkMs) * time.Millisecond,
		Log:       logBackend.Logger("BOT"),
	})
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
