package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/steemtx/internal/logging"
	"github.com/danmuck/steemtx/internal/server"
	"github.com/rs/zerolog/log"
)

func main() {
	logging.ConfigureRuntime()
	configPath := flag.String("config", defaultConfigPath, "signd TOML config")
	addr := flag.String("addr", "", "listen address override")
	flag.Parse()

	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})
	cfg, err := loadConfig(*configPath, explicit)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load signd config")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	log.Info().Str("path", *configPath).Str("chain", string(cfg.DefaultChain)).Msg("loaded signd config")

	opts, err := serverOptions(cfg, os.Getenv)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load signing key")
	}
	if opts.Signer == nil {
		log.Warn().
			Str("wif_env", cfg.Server.WIFEnv).
			Str("token_env", cfg.Server.TokenEnv).
			Msg("signing disabled: key or token not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := server.New(opts).Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("signd stopped")
	}
}
