package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/danmuck/steemtx/internal/config"
	"github.com/danmuck/steemtx/internal/keys"
	"github.com/danmuck/steemtx/internal/logging"
	"github.com/danmuck/steemtx/internal/tx"
)

func main() {
	logging.ConfigureRuntime()
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "serialize", "digest", "payload", "sign":
		return cmdTx(args[0], args[1:], in, out, errOut)
	case "keys":
		return cmdKeys(args[1:], out, errOut)
	case "config":
		return cmdConfig(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "steemtx: Steem/Hive transaction codec and signer")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  steemtx serialize [--config <toml>] [--chain <name>] <tx.json|->")
	fmt.Fprintln(w, "  steemtx digest    [--config <toml>] [--chain <name>] <tx.json|->")
	fmt.Fprintln(w, "  steemtx payload   [--config <toml>] [--chain <name>] <tx.json|->")
	fmt.Fprintln(w, "  steemtx sign      [--config <toml>] [--chain <name>] [--wif-env <VAR>] [--timeout <d>] <tx.json|->")
	fmt.Fprintln(w, "  steemtx keys public [--wif-env <VAR>] [--prefix <STM>]")
	fmt.Fprintln(w, "  steemtx keys derive --account <name> --role <owner|active|posting|memo> [--password-env <VAR>] [--prefix <STM>]")
	fmt.Fprintln(w, "  steemtx config init [--kind signer|network] [--output <path>] [--force]")
	fmt.Fprintln(w, "  steemtx config validate <path>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - tx.json: {chain, ref_block_num, ref_block_prefix, expiration, head_block, operations: [[\"vote\", {...}]]}")
	fmt.Fprintln(w, "  - head_block: {number, id (hex), time}; explicit header fields override it")
	fmt.Fprintln(w, "  - private keys are read from the environment only (default $STEEMTX_WIF)")
}

type txFlags struct {
	configPath string
	chain      string
	wifEnv     string
	timeout    time.Duration
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

func readInput(path string, in io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(in)
	}
	return os.ReadFile(path)
}

func cmdTx(name string, args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(errOut)
	var f txFlags
	fs.StringVar(&f.configPath, "config", "", "TOML config overlay")
	fs.StringVar(&f.chain, "chain", "", "chain when the document names none")
	fs.StringVar(&f.wifEnv, "wif-env", "", "environment variable holding the WIF (sign only)")
	fs.DurationVar(&f.timeout, "timeout", 10*time.Second, "canonical search deadline (sign only)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(errOut, "usage: steemtx %s [flags] <tx.json|->\n", name)
		return 2
	}
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return 1
	}
	raw, err := readInput(fs.Arg(0), in)
	if err != nil {
		fmt.Fprintf(errOut, "read transaction: %v\n", err)
		return 1
	}
	var req tx.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		fmt.Fprintf(errOut, "invalid transaction document: %v\n", err)
		return 1
	}
	if req.Chain == "" && f.chain != "" {
		req.Chain = config.Chain(strings.ToLower(f.chain))
	}

	opts := []tx.Option{}
	if name == "sign" {
		env := f.wifEnv
		if env == "" {
			env = cfg.Server.WIFEnv
		}
		wif := strings.TrimSpace(os.Getenv(env))
		if wif == "" {
			fmt.Fprintf(errOut, "sign: %v: set $%s\n", tx.ErrMissingSigningKey, env)
			return 1
		}
		opts = append(opts, tx.WithWIF(wif))
	}
	b := tx.NewBuilder(cfg, opts...)
	t, err := b.Transaction(req)
	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", name, err)
		return 1
	}
	codec := b.Codec()

	switch name {
	case "serialize":
		bs, err := codec.Serialize(t)
		if err != nil {
			fmt.Fprintf(errOut, "serialize: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintln(out, hex.EncodeToString(bs))
	case "digest":
		d, err := codec.Digest(t)
		if err != nil {
			fmt.Fprintf(errOut, "digest: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintln(out, hex.EncodeToString(d[:]))
	case "payload":
		return writePayload(b, t, out, errOut)
	case "sign":
		signer, err := b.Signer()
		if err != nil {
			fmt.Fprintf(errOut, "sign: %v\n", err)
			return 1
		}
		ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		defer cancel()
		if _, err := signer.Sign(ctx, t); err != nil {
			fmt.Fprintf(errOut, "sign: %v\n", err)
			return 1
		}
		return writePayload(b, t, out, errOut)
	}
	return 0
}

func writePayload(b *tx.Builder, t *tx.Transaction, out io.Writer, errOut io.Writer) int {
	p, err := b.Payload(t)
	if err != nil {
		fmt.Fprintf(errOut, "payload: %v\n", err)
		return 1
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		fmt.Fprintf(errOut, "payload: %v\n", err)
		return 1
	}
	return 0
}

func cmdKeys(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: steemtx keys <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: public, derive")
		return 2
	}
	switch args[0] {
	case "public":
		fs := flag.NewFlagSet("keys public", flag.ContinueOnError)
		fs.SetOutput(errOut)
		wifEnv := fs.String("wif-env", config.DefaultWIFEnv, "environment variable holding the WIF")
		prefix := fs.String("prefix", "STM", "public key prefix")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		priv, err := keys.DecodeWIF(os.Getenv(*wifEnv))
		if err != nil {
			fmt.Fprintf(errOut, "keys public: $%s: %v\n", *wifEnv, err)
			return 1
		}
		_, _ = fmt.Fprintln(out, keys.FormatPublicKey(priv.PubKey(), *prefix))
		return 0
	case "derive":
		fs := flag.NewFlagSet("keys derive", flag.ContinueOnError)
		fs.SetOutput(errOut)
		account := fs.String("account", "", "account name")
		role := fs.String("role", "active", "key role: owner|active|posting|memo")
		passwordEnv := fs.String("password-env", "STEEMTX_PASSWORD", "environment variable holding the master password")
		prefix := fs.String("prefix", "STM", "public key prefix")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *account == "" || !knownRole(*role) {
			fmt.Fprintln(errOut, "usage: steemtx keys derive --account <name> --role <owner|active|posting|memo>")
			return 2
		}
		password := os.Getenv(*passwordEnv)
		if password == "" {
			fmt.Fprintf(errOut, "keys derive: set $%s\n", *passwordEnv)
			return 1
		}
		priv, err := keys.FromLogin(*account, *role, password)
		if err != nil {
			fmt.Fprintf(errOut, "keys derive: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintf(out, "wif: %s\npublic: %s\n", keys.EncodeWIF(priv), keys.FormatPublicKey(priv.PubKey(), *prefix))
		return 0
	default:
		fmt.Fprintf(errOut, "unknown keys subcommand: %s\n", args[0])
		return 2
	}
}

func knownRole(role string) bool {
	for _, r := range keys.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func cmdConfig(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: steemtx config <init|validate> ...")
		return 2
	}
	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("config init", flag.ContinueOnError)
		fs.SetOutput(errOut)
		kind := fs.String("kind", "signer", "config kind: signer|network")
		output := fs.String("output", "steemtx.toml", "output path for config template")
		force := fs.Bool("force", false, "overwrite existing config file")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if err := config.WriteTemplate(*output, *kind, *force); err != nil {
			fmt.Fprintf(errOut, "config init: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintf(out, "wrote %s config template to %s\n", *kind, *output)
		return 0
	case "validate":
		if len(args) != 2 {
			fmt.Fprintln(errOut, "usage: steemtx config validate <path>")
			return 2
		}
		cfg, err := config.LoadFile(args[1])
		if err != nil {
			fmt.Fprintf(errOut, "config validate: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintf(out, "valid: default_chain=%s networks=%d\n", cfg.DefaultChain, len(cfg.Networks))
		return 0
	default:
		fmt.Fprintf(errOut, "unknown config subcommand: %s\n", args[0])
		return 2
	}
}
