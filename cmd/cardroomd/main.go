package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/cardroomd/cardroomd/pkg/logging"
	"github.com/cardroomd/cardroomd/pkg/server"
)

func realMain() error {
	var (
		host          string
		port          int
		portFile      string
		seed          int64
		smallBlind    int64
		bigBlind      int64
		startingStack int64
		revealMs      int
		interHandMs   int
		botThinkMs    int
		debugLevel    string
		logFile       string
	)
	flag.StringVar(&host, "host", "127.0.0.1", "Host to listen on")
	flag.IntVar(&port, "port", 8080, "Port to listen on (0 for a random free port)")
	flag.StringVar(&portFile, "portfile", "", "If set, write the selected port to this file")
	flag.Int64Var(&seed, "seed", 0, "Deterministic RNG seed for decks (0 = random)")
	flag.Int64Var(&smallBlind, "smallblind", 0, "Default small blind for new rooms (0 = built-in default)")
	flag.Int64Var(&bigBlind, "bigblind", 0, "Default big blind for new rooms (0 = built-in default)")
	flag.Int64Var(&startingStack, "stack", 0, "Default starting stack for new rooms (0 = built-in default)")
	flag.IntVar(&revealMs, "revealms", 0, "Pause on the card reveal in milliseconds (0 = built-in default)")
	flag.IntVar(&interHandMs, "interhandms", 0, "Pause between hands in milliseconds (0 = built-in default)")
	flag.IntVar(&botThinkMs, "botthinkms", 0, "Bot think time in milliseconds (0 = built-in default)")
	flag.StringVar(&debugLevel, "debuglevel", "info", "Logging level: trace, debug, info, warn, error, or a subsys=level list")
	flag.StringVar(&logFile, "logfile", "", "Rotating log file path (empty = stderr only)")
	flag.Parse()

	if seed == 0 {
		if env := os.Getenv("CARDROOM_SEED"); env != "" {
			if v, err := strconv.ParseInt(env, 10, 64); err == nil {
				seed = v
			}
		}
	}

	logBackend, err := logging.NewLogBackend(logging.LogConfig{
		LogFile:    logFile,
		DebugLevel: debugLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to init logging: %v", err)
	}
	defer logBackend.Close()
	log := logBackend.Logger("SRVR")

	srv := server.New(server.Config{
		Log:            log,
		RoomLog:        logBackend.Logger("ROOM"),
		SmallBlind:     smallBlind,
		BigBlind:       bigBlind,
		StartingStack:  startingStack,
		RevealDelay:    time.Duration(revealMs) * time.Millisecond,
		InterHandDelay: time.Duration(interHandMs) * time.Millisecond,
		BotThinkDelay:  time.Duration(botThinkMs) * time.Millisecond,
		Seed:           seed,
	})

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("failed to listen: %v", err)
	}

	// Optionally write chosen port
	if portFile != "" {
		_, p, _ := net.SplitHostPort(lis.Addr().String())
		_ = os.WriteFile(portFile, []byte(p), 0600)
	}

	httpSrv := &http.Server{Handler: srv.Handler()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(lis)
	}()

	log.Infof("Listening on %s", lis.Addr())

	select {
	case <-ctx.Done():
		log.Infof("Shutting down")
		srv.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve error: %v", err)
		}
		return nil
	}
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
