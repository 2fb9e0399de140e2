package core

import (
	"context"
	"time"
)

// WalletAddress is the publicly discoverable metadata of an Open Payments
// account, optionally joined with the client key material this engine uses
// to act on the account's behalf. Immutable once resolved; the resolver
// re-fetches after its cache TTL.
type WalletAddress struct {
	URL            string `json:"id"`
	PublicName     string `json:"publicName,omitempty"`
	AssetCode      string `json:"assetCode"`
	AssetScale     int32  `json:"assetScale"`
	AuthServer     string `json:"authServer"`
	ResourceServer string `json:"resourceServer"`

	// key material comes from config, never from the wire
	KeyID      string `json:"-"`
	PrivateKey string `json:"-"`

	ResolvedAt time.Time `json:"-"`
}

// ClientKey pairs a key id with its private key for one wallet address.
// The private key is opaque to the engine.
type ClientKey struct {
	KeyID      string
	PrivateKey string
}

type WalletResolver interface {
	Resolve(ctx context.Context, url string) (*WalletAddress, error)
}
