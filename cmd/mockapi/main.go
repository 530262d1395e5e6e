package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/secops-console/internal/config"
	"github.com/jrsteele09/secops-console/internal/logging"
	"github.com/jrsteele09/secops-console/mockapi"
	"github.com/jrsteele09/secops-console/users"
	fakeuserrepo "github.com/jrsteele09/secops-console/users/repofake"
	"github.com/rs/zerolog/log"
)

const (
	demoUsername = "analyst"
	demoPassword = "analyst123"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running mock API")
	}
	log.Info().Msg("Mock API stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Recovered from panic: %v", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(c.GetLogLevel(), c.GetEnv())
	displayAppname(c.GetAppName() + " API")

	accounts := fakeuserrepo.NewFakeAccountRepo()
	if err := addDemoAccount(accounts); err != nil {
		return err
	}

	api, err := mockapi.New(c, accounts)
	if err != nil {
		return err
	}
	mockapi.Seed(api.Store(), time.Now().UTC(), mockapi.DefaultSeedOptions())

	server := &http.Server{Addr: c.GetPort(), Handler: api.Handler(), ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(server) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func addDemoAccount(accounts users.AccountRepo) error {
	hash, err := users.HashPassword(demoPassword)
	if err != nil {
		return fmt.Errorf("users.HashPassword: %w", err)
	}
	err = accounts.Create(&users.Account{
		Username:     demoUsername,
		PasswordHash: hash,
		Role:         users.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("accounts.Create: %w", err)
	}
	log.Info().Str("username", demoUsername).Str("password", demoPassword).Msg("Demo account ready")
	return nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Mock API listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
