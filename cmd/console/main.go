package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/secops-console/apiclient"
	"github.com/jrsteele09/secops-console/auth"
	"github.com/jrsteele09/secops-console/credentials"
	"github.com/jrsteele09/secops-console/dashboard"
	"github.com/jrsteele09/secops-console/internal/config"
	"github.com/jrsteele09/secops-console/internal/logging"
	"github.com/jrsteele09/secops-console/loginevents"
	"github.com/jrsteele09/secops-console/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const usage = `usage: console <command> [flags]

commands:
  login -u <username> [-p <password>]
  register -u <username> [-p <password>] [-email <address>]
  logout
  whoami
  verify
  open [-hours N] [-interval D] <path>
  alerts [-severity S] [-resolved true|false] [-limit N] [-skip N]
  resolve [-reopen] <alert id>
  events [-user ID] [-anomaly true|false] [-limit N] [-skip N] [event id]
  analyze -user-id ID -u <username> -ip <address> [-city C -country C -lat N -lon N] [-time T] [-failed]
`

// app is everything a command needs, built once per process.
type app struct {
	cfg       config.Config
	out       io.Writer
	in        io.Reader
	auth      *auth.Service
	sessions  *session.Manager
	dashboard *dashboard.Service
	events    *loginevents.Service
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		displayAppname(config.New().GetAppName())
		fmt.Print(usage)
		return nil
	}

	a, cleanup, err := newApp(ctx, config.New())
	if err != nil {
		return err
	}
	defer cleanup()

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprint(os.Stderr, usage)
		return errors.Errorf("unknown command %q", args[0])
	}
	return cmd(ctx, a, args[1:])
}

func newApp(ctx context.Context, c config.Config) (*app, func(), error) {
	logging.Setup(c.GetLogLevel(), c.GetEnv())

	store, err := credentials.Open(ctx, c)
	if err != nil {
		return nil, nil, errors.Wrap(err, "credentials.Open")
	}
	cleanup := func() {
		if closer, ok := store.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				log.Err(err).Msg("closing credential store")
			}
		}
	}

	client, err := apiclient.New(c.GetAPIBaseURL(), store, apiclient.WithTimeout(c.GetHTTPTimeout()))
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	authService, err := auth.NewService(client, store)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	sessions, err := session.NewManager(authService)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	state := sessions.Bootstrap(ctx)
	log.Debug().Str("phase", state.Phase().String()).Str("backend", string(c.GetCredentialBackend())).Msg("Session restored")

	return &app{
		cfg:       c,
		out:       &lockedWriter{w: os.Stdout},
		in:        os.Stdin,
		auth:      authService,
		sessions:  sessions,
		dashboard: dashboard.NewService(client),
		events:    loginevents.NewService(client),
	}, cleanup, nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
