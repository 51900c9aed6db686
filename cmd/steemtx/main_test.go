package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/steemtx/internal/keys"
	"github.com/danmuck/steemtx/internal/testutil/testlog"
)

const voteDoc = `{
	"chain": "steem",
	"ref_block_num": 48524,
	"ref_block_prefix": 1164960351,
	"expiration": "2016-08-08T12:24:17",
	"operations": [["vote", {"voter": "xeroc", "author": "xeroc", "permlink": "piston", "weight": 10000}]]
}`

const voteHex = "0000000000000000000000000000000000000000000000000000000000000000" +
	"8cbd5fe26f45f179a857" + "01" + "00057865726f63057865726f6306706973746f6e1027" + "00"

func writeDoc(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tx.json")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestSerializeFromFileAndStdin(t *testing.T) {
	testlog.Start(t)
	code, out, errOut := runCLI(t, "", "serialize", writeDoc(t, voteDoc))
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if strings.TrimSpace(out) != voteHex {
		t.Fatalf("unexpected hex %s", out)
	}
	code, out, _ = runCLI(t, voteDoc, "serialize", "-")
	if code != 0 || strings.TrimSpace(out) != voteHex {
		t.Fatalf("stdin serialize failed: %d %s", code, out)
	}
}

func TestDigestAndPayload(t *testing.T) {
	testlog.Start(t)
	path := writeDoc(t, voteDoc)
	code, out, errOut := runCLI(t, "", "digest", path)
	if code != 0 || len(strings.TrimSpace(out)) != 64 {
		t.Fatalf("digest exit %d out=%q err=%s", code, out, errOut)
	}
	code, out, errOut = runCLI(t, "", "payload", path)
	if code != 0 {
		t.Fatalf("payload exit %d: %s", code, errOut)
	}
	var p map[string]any
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("payload json: %v", err)
	}
	if p["expiration"] != "2016-08-08T12:24:17" {
		t.Fatalf("unexpected payload %v", p)
	}
}

func TestSignReadsKeyFromEnvironment(t *testing.T) {
	testlog.Start(t)
	path := writeDoc(t, voteDoc)
	t.Setenv("STEEMTX_TEST_WIF", "")
	code, _, errOut := runCLI(t, "", "sign", "--wif-env", "STEEMTX_TEST_WIF", path)
	if code != 1 || !strings.Contains(errOut, "missing signing key") {
		t.Fatalf("expected missing key failure, got %d %s", code, errOut)
	}

	priv, err := keys.FromLogin("xeroc", "active", "cli test")
	if err != nil {
		t.Fatalf("FromLogin: %v", err)
	}
	t.Setenv("STEEMTX_TEST_WIF", keys.EncodeWIF(priv))
	code, out, errOut := runCLI(t, "", "sign", "--wif-env", "STEEMTX_TEST_WIF", path)
	if code != 0 {
		t.Fatalf("sign exit %d: %s", code, errOut)
	}
	var p struct {
		Signatures []string `json:"signatures"`
	}
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("signed payload json: %v", err)
	}
	if len(p.Signatures) != 1 || len(p.Signatures[0]) != 130 {
		t.Fatalf("unexpected signatures %v", p.Signatures)
	}
	if strings.Contains(out, keys.EncodeWIF(priv)) || strings.Contains(errOut, keys.EncodeWIF(priv)) {
		t.Fatalf("private key leaked into output")
	}
}

func TestErrorsAndUsage(t *testing.T) {
	testlog.Start(t)
	if code, _, _ := runCLI(t, ""); code != 2 {
		t.Fatalf("no args should exit 2, got %d", code)
	}
	if code, _, _ := runCLI(t, "", "frobnicate"); code != 2 {
		t.Fatalf("unknown command should exit 2, got %d", code)
	}
	if code, out, _ := runCLI(t, "", "help"); code != 0 || !strings.Contains(out, "steemtx serialize") {
		t.Fatalf("help should print usage")
	}
	bad := writeDoc(t, `{"expiration": "2016-08-08T12:24:17", "operations": [["teleport", {}]]}`)
	if code, _, errOut := runCLI(t, "", "serialize", bad); code != 1 || !strings.Contains(errOut, "unknown operation type") {
		t.Fatalf("unknown op should fail, got %d %s", code, errOut)
	}
	if code, _, _ := runCLI(t, "", "serialize", filepath.Join(t.TempDir(), "missing.json")); code != 1 {
		t.Fatalf("missing file should exit 1")
	}
}

func TestKeysCommands(t *testing.T) {
	testlog.Start(t)
	t.Setenv("STEEMTX_TEST_PASSWORD", "hunter2")
	code, out, errOut := runCLI(t, "", "keys", "derive", "--account", "alice", "--role", "posting", "--password-env", "STEEMTX_TEST_PASSWORD")
	if code != 0 {
		t.Fatalf("derive exit %d: %s", code, errOut)
	}
	var wif, public string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if v, ok := strings.CutPrefix(line, "wif: "); ok {
			wif = v
		}
		if v, ok := strings.CutPrefix(line, "public: "); ok {
			public = v
		}
	}
	if wif == "" || !strings.HasPrefix(public, "STM") {
		t.Fatalf("unexpected derive output %q", out)
	}

	t.Setenv("STEEMTX_TEST_WIF", wif)
	code, out, errOut = runCLI(t, "", "keys", "public", "--wif-env", "STEEMTX_TEST_WIF")
	if code != 0 || strings.TrimSpace(out) != public {
		t.Fatalf("public mismatch: %d %q %s", code, out, errOut)
	}
	if code, _, _ := runCLI(t, "", "keys", "derive", "--account", "alice", "--role", "janitor"); code != 2 {
		t.Fatalf("unknown role should exit 2")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "steemtx.toml")
	if code, _, errOut := runCLI(t, "", "config", "init", "--output", path); code != 0 {
		t.Fatalf("init exit %d: %s", code, errOut)
	}
	if code, _, _ := runCLI(t, "", "config", "init", "--output", path); code != 1 {
		t.Fatalf("init without --force should refuse to overwrite")
	}
	code, out, errOut := runCLI(t, "", "config", "validate", path)
	if code != 0 || !strings.Contains(out, "default_chain=steem") {
		t.Fatalf("validate exit %d out=%q err=%s", code, out, errOut)
	}
	code, out, _ = runCLI(t, "", "serialize", "--config", path, writeDoc(t, voteDoc))
	if code != 0 || strings.TrimSpace(out) != voteHex {
		t.Fatalf("serialize with config failed: %d %s", code, out)
	}
}
