package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"liftbank/src/api"
	"liftbank/src/config"
	"liftbank/src/fleet"
	"liftbank/src/logger"
	"liftbank/src/network"
	"liftbank/src/store"
	"liftbank/src/timer"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigFile, "YAML config file, optional when left at the default")
	envFile := flag.String("env", config.DefaultEnvFile, "dotenv file with LIFTBANK_* overrides")
	httpAddr := flag.String("http", config.DefaultHTTPAddr, "HTTP listen address, empty to disable")
	quicAddr := flag.String("quic", config.DefaultQUICAddr, "QUIC listen address, empty to disable")
	elevators := flag.Int("elevators", 0, "number of elevators to create at startup")
	flag.Parse()

	log := logger.GetLogger()
	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "http":
			cfg.HTTPAddr = *httpAddr
		case "quic":
			cfg.QUICAddr = *quicAddr
		case "elevators":
			cfg.Elevators = *elevators
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}
	level, _ := logger.ParseLevel(cfg.LogLevel)
	if err := logger.Configure(level, cfg.LogFile); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f := fleet.New(store.NewMemoryStore())
	defer f.Close()
	if cfg.Elevators > 0 {
		if _, err := f.Initialize(cfg.Elevators); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize fleet")
		}
	}

	serverErr := make(chan error, 2)
	running := 0
	if cfg.HTTPAddr != "" {
		running++
		go func() { serverErr <- api.New(f).ListenAndServe(ctx, cfg.HTTPAddr) }()
	}
	if cfg.QUICAddr != "" {
		srv, err := network.Listen(f, cfg.QUICAddr)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to start QUIC transport")
		}
		running++
		go func() { serverErr <- srv.Serve(ctx) }()
	}

	var stepTimeout <-chan time.Time
	if cfg.StepInterval > 0 {
		var stepAction chan<- timer.TimerAction
		stepTimeout, stepAction = timer.Init(ctx, cfg.StepInterval)
		stepAction <- timer.Start
		log.Info().Dur("interval", cfg.StepInterval).Msg("Simulation clock started")
	}

	failed := false
	for running > 0 {
		select {
		case <-stepTimeout:
			moves, err := f.StepAll()
			if err != nil {
				log.Error().Err(err).Msg("Clock step failed")
				continue
			}
			for _, move := range moves {
				log.Debug().
					Int("elevator", move.ElevatorID).
					Int("from", move.From).
					Int("to", move.To).
					Bool("completed", move.Completed).
					Msg("Clock step")
			}
		case err := <-serverErr:
			running--
			if err != nil {
				log.Error().Err(err).Msg("Server stopped")
				failed = true
				stop()
			}
		}
	}

	log.Info().Msg("Shut down")
	if failed {
		f.Close()
		os.Exit(1)
	}
}
