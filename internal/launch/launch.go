// Package launch defines the boundary to the on-chain create/sell workflow.
//
// The scheduler core treats these operations as opaque: it sequences and
// records them but does not know how a transaction is built or confirmed.
package launch

import (
	"context"

	"mintbot/internal/wallet"
)

// TokenMeta is one candidate token: the immutable inputs of a create call.
type TokenMeta struct {
	Name   string `json:"name" yaml:"name"`
	Symbol string `json:"symbol" yaml:"symbol"`
	// URI points at the token's off-chain metadata (image, description).
	URI string `json:"uri" yaml:"uri"`
}

// CreateResult reports a confirmed token creation.
type CreateResult struct {
	// Mint is the address of the newly created token.
	Mint string
	// Amount is the quantity of tokens the wallet received.
	Amount uint64
}

// Launcher performs the external workflow for one wallet.
//
// CreateToken is never retried by callers: a lost success signal after a
// partial on-chain commit would otherwise duplicate the mint. SellTokens is
// safe to retry and callers are expected to.
type Launcher interface {
	CreateToken(ctx context.Context, w wallet.Wallet, meta TokenMeta) (CreateResult, error)
	SellTokens(ctx context.Context, w wallet.Wallet, mint string, amount uint64) (signature string, err error)
}
