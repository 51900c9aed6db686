package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/steemtx/internal/auth"
	"github.com/danmuck/steemtx/internal/config"
	"github.com/danmuck/steemtx/internal/keys"
	"github.com/danmuck/steemtx/internal/server"
	"github.com/danmuck/steemtx/internal/tx"
)

const defaultConfigPath = "cmd/steemtx-signd/config.toml"

// loadConfig reads path when it exists. A missing default path falls back to
// the built-in defaults; a missing explicit path is an error.
func loadConfig(path string, explicit bool) (config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return config.Default(), nil
		}
		return config.Config{}, fmt.Errorf("load signd config: %w", err)
	}
	return config.LoadFile(path)
}

// serverOptions wires the key and token from the environment variables the
// config names. Either one missing leaves signing disabled.
func serverOptions(cfg config.Config, getenv func(string) string) (server.Options, error) {
	opts := server.Options{ID: "steemtx-signd", Config: cfg}
	wif := strings.TrimSpace(getenv(cfg.Server.WIFEnv))
	token := strings.TrimSpace(getenv(cfg.Server.TokenEnv))
	if wif == "" {
		opts.Builder = tx.NewBuilder(cfg)
		return opts, nil
	}
	priv, err := keys.DecodeWIF(wif)
	if err != nil {
		return server.Options{}, fmt.Errorf("$%s: %w", cfg.Server.WIFEnv, err)
	}
	b := tx.NewBuilder(cfg, tx.WithPrivateKey(priv))
	opts.Builder = b
	if token == "" {
		return opts, nil
	}
	signer, err := b.Signer()
	if err != nil {
		return server.Options{}, err
	}
	opts.Signer = signer
	opts.Validator = auth.StaticToken{Token: token}
	return opts, nil
}
