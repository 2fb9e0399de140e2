package core

import "context"

type GrantState uint8

const (
	_ GrantState = iota
	GrantStateRequested
	GrantStateInteractive
	GrantStateGranted
	GrantStateRevoked
)

func (s GrantState) String() string {
	switch s {
	case GrantStateRequested:
		return "Requested"
	case GrantStateInteractive:
		return "Interactive"
	case GrantStateGranted:
		return "Granted"
	case GrantStateRevoked:
		return "Revoked"
	default:
		return "Unknown"
	}
}

const (
	AccessTypeIncomingPayment = "incoming-payment"
	AccessTypeOutgoingPayment = "outgoing-payment"
	AccessTypeQuote           = "quote"
)

// GrantCap bounds the total amount a recurring grant may move.
type GrantCap struct {
	TotalAmount string   `json:"totalAmount"`
	Actions     []string `json:"actions,omitempty"`
}

// GrantLimits restricts what an outgoing-payment access token may do.
// Interval, Cap and Iterations only make sense for recurring grants.
type GrantLimits struct {
	DebitAmount   *Amount   `json:"debitAmount,omitempty"`
	ReceiveAmount *Amount   `json:"receiveAmount,omitempty"`
	Interval      string    `json:"interval,omitempty"`
	Iterations    int       `json:"iterations,omitempty"`
	Cap           *GrantCap `json:"cap,omitempty"`
}

// GrantParams describes one grant request. Interactive requests must carry
// FinishURI and Nonce; the nonce is generated once per request and never
// reused.
type GrantParams struct {
	AccessType  string
	Actions     []string
	Wallet      *WalletAddress // wallet whose auth server receives the request
	Identifier  string         // wallet address the access is bound to
	Limits      *GrantLimits
	Interactive bool
	FinishURI   string
	Nonce       string
}

// Grant is the engine's view of a GNAP grant. For interactive grants the
// access token stays empty until continuation succeeds.
type Grant struct {
	ID               string     `json:"id,omitempty"`
	State            GrantState `json:"state"`
	AccessToken      string     `json:"-"`
	ContinueURI      string     `json:"continue_uri,omitempty"`
	ContinueToken    string     `json:"-"`
	InteractRedirect string     `json:"interact_redirect,omitempty"`
	FinishNonce      string     `json:"finish_nonce,omitempty"`
}

type GrantService interface {
	Request(ctx context.Context, params GrantParams) (*Grant, error)
	// Continue exchanges an interact_ref for the final access token. Callers
	// must have a nil VerifyFinish first; continuing with an unverified
	// interaction is a protocol violation.
	Continue(ctx context.Context, continueURI, continueToken, interactRef string) (*Grant, error)
	VerifyFinish(id, finishNonce, interactRef, authServer, receivedHash string) error
}
