package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "signer":
		return signerTemplate, nil
	case "network":
		return networkTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const signerTemplate = `default_chain = "steem"
expiry_window = "10m"
max_sign_attempts = 1000

[server]
addr = ":8090"
cors_origins = ["http://localhost:3000"]
wif_env = "STEEMTX_WIF"
token_env = "STEEMTX_SIGN_TOKEN"
`

const networkTemplate = `default_chain = "local"

[networks.local]
chain_id = "0000000000000000000000000000000000000000000000000000000000000001"
address_prefix = "TST"

[networks.local.core]
symbol = "TESTS"
nai = "@@000000021"
precision = 3

[networks.local.debt]
symbol = "TBD"
nai = "@@000000013"
precision = 3

[networks.local.vest]
symbol = "VESTS"
nai = "@@000000037"
precision = 6
`
