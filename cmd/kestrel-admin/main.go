package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/pigeonsec/kestrel-admin/internal/config"
	"github.com/pigeonsec/kestrel-admin/internal/console"
	"github.com/pigeonsec/kestrel-admin/internal/logging"
	"github.com/pigeonsec/kestrel-admin/internal/session"
	"github.com/pigeonsec/kestrel-admin/internal/tui"
	"github.com/pigeonsec/kestrel-admin/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// errReported means the failure was already shown to the operator.
var errReported = errors.New("reported")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// cli is everything a subcommand needs, built once from the configuration.
type cli struct {
	cfg *config.Config
	log zerolog.Logger
	mgr *session.Manager
	api *client.Client
	out io.Writer
	in  io.Reader
}

func tokenStore(cfg *config.Config) session.TokenStore {
	if cfg.TokenStore == config.StoreBolt {
		return session.NewBoltStore(cfg.TokenPath)
	}
	return session.NewFileStore(cfg.TokenPath)
}

func newCLI(cfg *config.Config, log zerolog.Logger, out io.Writer, in io.Reader) *cli {
	mgr := session.NewManager(tokenStore(cfg), log)
	api := client.New(cfg.APIURL, mgr,
		client.WithTimeout(cfg.Timeout()),
		client.WithLogger(log),
		client.WithUserAgent("kestrel-admin/"+version),
	)
	mgr.SetAuthenticator(api)
	return &cli{cfg: cfg, log: log, mgr: mgr, api: api, out: out, in: in}
}

// orchestrator returns a ResourceOrchestrator that prints notices to e.out.
func (e *cli) orchestrator() *console.Orchestrator {
	return console.New(e.api, e.mgr,
		console.WithLogger(e.log),
		console.WithNotifier(console.NotifierFunc(func(n console.Notice) {
			fmt.Fprintln(e.out, formatNotice(n))
		})),
	)
}

func run(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "version", "-v":
			fmt.Println("kestrel-admin " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		}
	}

	path, err := config.Path()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	log, closer, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close() //nolint:errcheck

	e := newCLI(cfg, log, os.Stdout, os.Stdin)
	if len(args) == 0 {
		return e.runTUI()
	}
	return e.dispatch(args[0], args[1:])
}

func (e *cli) dispatch(cmd string, args []string) error {
	switch cmd {
	case "logout":
		return e.runLogout()
	case "login", "status", "iocs", "feeds", "keys", "set-access", "import":
	default:
		return fmt.Errorf("unknown command %q (see kestrel-admin help)", cmd)
	}

	e.restore(context.Background())
	switch cmd {
	case "login":
		return e.runLogin(args)
	case "status":
		return e.runStatus()
	case "iocs":
		return e.runIOCs(args)
	case "feeds":
		return e.runFeeds()
	case "keys":
		return e.runKeys()
	case "set-access":
		return e.runSetAccess(args)
	case "import":
		return e.runImport(args)
	}
	return nil
}

// restore verifies a token left by an earlier run so nothing is sent with
// it unchecked. A rejected token is discarded and the commands that need a
// session fail locally.
func (e *cli) restore(ctx context.Context) {
	err := e.mgr.Restore(ctx)
	if err != nil && !errors.Is(err, session.ErrNothingToRestore) {
		e.log.Info().Err(err).Msg("stored session not restored")
	}
}

func (e *cli) runTUI() error {
	bridge := tui.NewBridge()
	orch := console.New(e.api, e.mgr, console.WithNotifier(bridge), console.WithLogger(e.log))
	app := tui.NewApp(e.mgr, orch, bridge, e.api.BaseURL())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
