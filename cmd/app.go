package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"luckydraw/internal/config"
	"luckydraw/internal/metrics"
	"luckydraw/internal/services"
	"luckydraw/internal/storage"

	"github.com/google/logger"
	"github.com/urfave/cli/v2"
)

// logOutput receives info and warning logs regardless of verbosity, so
// skipped roster lines and persistence warnings always reach the operator.
var logOutput io.Writer = os.Stderr

// newApp creates the command line app with sane defaults.
func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "luckydraw"
	app.Usage = "Prize drawing engine"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to a TOML config file",
			EnvVars: []string{config.EnvPrefix + "CONFIG"},
		},
	}
	app.Action = cli.ShowAppHelp
	app.Commands = []*cli.Command{
		{
			Action:      startServer,
			Name:        "serve",
			Usage:       "Start the HTTP API",
			Category:    "Server",
			Description: `Loads the rosters, restores the winner ledger and serves the draw API.`,
		},
		{
			Action:      runDraw,
			Name:        "draw",
			Usage:       "Draw the winners of one tier",
			ArgsUsage:   "<tier>",
			Category:    "Operator",
			Description: `Runs a single draw against the configured store and prints the winners.`,
		},
		{
			Action:   listWinners,
			Name:     "winners",
			Usage:    "Print the winner ledger, most recent first",
			Category: "Operator",
		},
		{
			Action:   resetSession,
			Name:     "reset",
			Usage:    "Clear the winner ledger and refill every pool",
			Category: "Operator",
		},
	}
	return app
}

// engine bundles everything a command needs and how to release it.
type engine struct {
	cfg     *config.Config
	service *services.LotteryService
	metrics *metrics.Metrics
	store   storage.Store
	log     *logger.Logger
}

func (e *engine) Close() {
	if err := e.store.Close(); err != nil {
		logger.Warningf("Closing store: %v", err)
	}
	e.log.Close()
}

func loadEngine(c *cli.Context) (*engine, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	log := logger.Init("luckydraw", cfg.Server.Verbose, false, logOutput)

	registry := services.NewRegistry(cfg.Server.Delimiter)
	for _, r := range cfg.Rosters {
		if r.Data != "" {
			registry.Load(r.Name, strings.NewReader(r.Data))
			continue
		}
		if _, err := registry.LoadFile(r.Name, r.Path); err != nil {
			log.Close()
			return nil, err
		}
	}

	store, err := storage.Open(c.Context, cfg.Store.Options())
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	ids, err := services.NewIDGenerator(cfg.Server.NodeID)
	if err != nil {
		store.Close()
		log.Close()
		return nil, err
	}

	m := metrics.New()
	service, err := services.NewLotteryService(
		registry,
		cfg.Tiers,
		storage.NewLedgerRepository(store, cfg.Store.Key),
		services.WithIDGenerator(ids),
		services.WithMetrics(m),
	)
	if err != nil {
		store.Close()
		log.Close()
		return nil, err
	}

	if err := service.Load(c.Context); err != nil {
		logger.Warningf("Continuing without the persisted ledger: %v", err)
	}

	return &engine{cfg: cfg, service: service, metrics: m, store: store, log: log}, nil
}

func runDraw(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: luckydraw draw <tier>", 2)
	}

	e, err := loadEngine(c)
	if err != nil {
		return err
	}
	defer e.Close()

	result, err := e.service.Draw(c.Context, c.Args().First())
	if err != nil {
		if services.IsUserError(err) {
			return cli.Exit(err.Error(), 1)
		}
		return err
	}

	for i, w := range result.Winners {
		fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\n", i+1, w.Code, w.Name)
	}
	if result.Warning != "" {
		fmt.Fprintf(c.App.ErrWriter, "warning: %s\n", result.Warning)
	}
	return nil
}

func listWinners(c *cli.Context) error {
	e, err := loadEngine(c)
	if err != nil {
		return err
	}
	defer e.Close()

	for _, w := range e.service.GetLedgerSnapshot() {
		fmt.Fprintf(c.App.Writer, "%s\t%s %s\t%s\t%s\n",
			w.Timestamp.Local().Format("02/01 15:04"), w.TierIcon, w.TierDisplayName, w.Code, w.Name)
	}
	return nil
}

func resetSession(c *cli.Context) error {
	e, err := loadEngine(c)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.service.Reset(c.Context); err != nil {
		fmt.Fprintf(c.App.ErrWriter, "warning: %v\n", err)
	}
	fmt.Fprintln(c.App.Writer, "Session reset.")
	return nil
}
