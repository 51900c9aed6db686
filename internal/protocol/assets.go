package protocol

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danmuck/steemtx/internal/config"
)

// AssetBook resolves the three registered assets of each chain.
type AssetBook struct {
	networks     map[config.Chain]config.Network
	defaultChain config.Chain
	chains       []config.Chain
}

// DefaultAssets is built from config.Default and never mutated.
var DefaultAssets = NewAssetBook(config.Default())

func NewAssetBook(cfg config.Config) *AssetBook {
	b := &AssetBook{
		networks:     make(map[config.Chain]config.Network, len(cfg.Networks)),
		defaultChain: cfg.DefaultChain,
	}
	for chain, n := range cfg.Networks {
		b.networks[chain] = n
		b.chains = append(b.chains, chain)
	}
	sort.Slice(b.chains, func(i, j int) bool { return b.chains[i] < b.chains[j] })
	return b
}

func (b *AssetBook) DefaultChain() config.Chain {
	return b.defaultChain
}

func (b *AssetBook) Network(chain config.Chain) (config.Network, bool) {
	n, ok := b.networks[chain]
	return n, ok
}

// Lookup finds symbol among chain's assets.
func (b *AssetBook) Lookup(chain config.Chain, symbol string) (config.Asset, error) {
	return b.find(chain, func(a config.Asset) bool { return a.Symbol == symbol }, symbol)
}

// LookupNAI finds an asset by its numeric asset identifier.
func (b *AssetBook) LookupNAI(chain config.Chain, nai string) (config.Asset, error) {
	return b.find(chain, func(a config.Asset) bool { return a.NAI == nai }, nai)
}

// LookupWire finds an asset by the symbol it carries on the wire.
func (b *AssetBook) LookupWire(chain config.Chain, symbol string) (config.Asset, error) {
	return b.find(chain, func(a config.Asset) bool { return a.Encoded() == symbol }, symbol)
}

func (b *AssetBook) find(chain config.Chain, match func(config.Asset) bool, label string) (config.Asset, error) {
	n, ok := b.networks[chain]
	if !ok {
		return config.Asset{}, fmt.Errorf("%w: unknown chain %q", ErrUnregisteredAsset, chain)
	}
	for _, a := range n.Assets() {
		if match(a) {
			return a, nil
		}
	}
	return config.Asset{}, fmt.Errorf("%w: %s on %s", ErrUnregisteredAsset, label, chain)
}

// resolveChain returns chain when set. Otherwise it picks the single chain
// registering the asset, falling back to the default chain when several do.
func (b *AssetBook) resolveChain(chain config.Chain, match func(config.Asset) bool, label string) (config.Chain, error) {
	if chain != "" {
		return chain, nil
	}
	var found []config.Chain
	for _, c := range b.chains {
		for _, a := range b.networks[c].Assets() {
			if match(a) {
				found = append(found, c)
				break
			}
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrUnregisteredAsset, label)
	case 1:
		return found[0], nil
	}
	for _, c := range found {
		if c == b.defaultChain {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %s is ambiguous across %s", ErrUnregisteredAsset, label, joinChains(found))
}

func joinChains(chains []config.Chain) string {
	parts := make([]string, len(chains))
	for i, c := range chains {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}
