package grant

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/constructoken/openpay/core"
	"github.com/go-resty/resty/v2"
	"github.com/zyedidia/generic/cache"
)

type Config struct {
	// ClientName and ClientURI identify this engine to auth servers.
	ClientName string
	ClientURI  string
	// TokenTTL bounds how long a cached non-interactive token is reused.
	TokenTTL time.Duration
}

func New(client *resty.Client, cfg Config) core.GrantService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}

	return &service{
		client: client,
		cfg:    cfg,
		tokens: cache.New[string, cachedToken](64),
	}
}

type cachedToken struct {
	value     string
	expiresAt time.Time
}

type service struct {
	client *resty.Client
	cfg    Config

	tokens *cache.Cache[string, cachedToken]
	mux    sync.RWMutex
}

type accessRequest struct {
	Type       string            `json:"type"`
	Actions    []string          `json:"actions"`
	Identifier string            `json:"identifier,omitempty"`
	Limits     *core.GrantLimits `json:"limits,omitempty"`
}

type accessTokenRequest struct {
	Access []accessRequest `json:"access"`
}

type clientDisplay struct {
	Name string `json:"name"`
	URI  string `json:"uri,omitempty"`
}

type clientRef struct {
	Display clientDisplay `json:"display"`
}

type finishRequest struct {
	Method string `json:"method"`
	URI    string `json:"uri"`
	Nonce  string `json:"nonce"`
}

type interactRequest struct {
	Start  []string      `json:"start"`
	Finish finishRequest `json:"finish"`
}

type grantRequest struct {
	AccessToken accessTokenRequest `json:"access_token"`
	Client      clientRef          `json:"client"`
	Interact    *interactRequest   `json:"interact,omitempty"`
}

type tokenValue struct {
	Value  string `json:"value"`
	Manage string `json:"manage,omitempty"`
}

type grantResponse struct {
	AccessToken *tokenValue `json:"access_token,omitempty"`
	Interact    *struct {
		Redirect string `json:"redirect"`
		Finish   string `json:"finish"`
	} `json:"interact,omitempty"`
	Continue *struct {
		AccessToken tokenValue `json:"access_token"`
		URI         string     `json:"uri"`
	} `json:"continue,omitempty"`
}

func (s *service) Request(ctx context.Context, params core.GrantParams) (*core.Grant, error) {
	if params.Wallet == nil || params.Wallet.AuthServer == "" {
		return nil, &core.GrantRequestError{Err: fmt.Errorf("no auth server")}
	}

	authServer := params.Wallet.AuthServer

	if !params.Interactive {
		if token, ok := s.cachedToken(authServer, params.AccessType); ok {
			return &core.Grant{State: core.GrantStateGranted, AccessToken: token}, nil
		}
	}

	body := grantRequest{
		AccessToken: accessTokenRequest{
			Access: []accessRequest{{
				Type:       params.AccessType,
				Actions:    params.Actions,
				Identifier: params.Identifier,
				Limits:     params.Limits,
			}},
		},
		Client: clientRef{Display: clientDisplay{Name: s.cfg.ClientName, URI: s.cfg.ClientURI}},
	}

	if params.Interactive {
		if params.FinishURI == "" || params.Nonce == "" {
			return nil, &core.GrantRequestError{AuthServer: authServer, Err: fmt.Errorf("interactive grant needs finish uri and nonce")}
		}

		body.Interact = &interactRequest{
			Start: []string{"redirect"},
			Finish: finishRequest{
				Method: "redirect",
				URI:    params.FinishURI,
				Nonce:  params.Nonce,
			},
		}
	}

	var out grantResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post(authServer)

	if err != nil {
		return nil, &core.GrantRequestError{AuthServer: authServer, Err: err}
	}

	if resp.IsError() {
		return nil, &core.GrantRequestError{AuthServer: authServer, Status: resp.StatusCode(), Err: fmt.Errorf("%s", resp.Status())}
	}

	if params.Interactive {
		if out.Interact == nil || out.Continue == nil {
			return nil, &core.GrantRequestError{AuthServer: authServer, Err: fmt.Errorf("auth server returned no interaction")}
		}

		return &core.Grant{
			State:            core.GrantStateInteractive,
			InteractRedirect: out.Interact.Redirect,
			FinishNonce:      out.Interact.Finish,
			ContinueURI:      out.Continue.URI,
			ContinueToken:    out.Continue.AccessToken.Value,
		}, nil
	}

	if out.AccessToken == nil || out.AccessToken.Value == "" {
		return nil, &core.GrantRequestError{AuthServer: authServer, Err: fmt.Errorf("auth server returned no access token")}
	}

	s.storeToken(authServer, params.AccessType, out.AccessToken.Value)
	return &core.Grant{State: core.GrantStateGranted, AccessToken: out.AccessToken.Value}, nil
}

func (s *service) Continue(ctx context.Context, continueURI, continueToken, interactRef string) (*core.Grant, error) {
	var out grantResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "GNAP "+continueToken).
		SetBody(map[string]string{"interact_ref": interactRef}).
		SetResult(&out).
		Post(continueURI)

	if err != nil {
		return nil, &core.GrantContinuationError{ContinueURI: continueURI, Err: err}
	}

	if resp.IsError() {
		return nil, &core.GrantContinuationError{ContinueURI: continueURI, Status: resp.StatusCode(), Err: fmt.Errorf("%s", resp.Status())}
	}

	if out.AccessToken == nil || out.AccessToken.Value == "" {
		return nil, &core.GrantContinuationError{ContinueURI: continueURI, Err: fmt.Errorf("continuation returned no access token")}
	}

	return &core.Grant{State: core.GrantStateGranted, AccessToken: out.AccessToken.Value}, nil
}

// VerifyFinish implements the redirect-finish hash check: the consent proof
// is base64(SHA-256("{id}\n{finishNonce}\n{interactRef}\n{authServer}")).
// It must succeed before Continue is called.
func (s *service) VerifyFinish(id, finishNonce, interactRef, authServer, receivedHash string) error {
	if subtle.ConstantTimeCompare([]byte(FinishHash(id, finishNonce, interactRef, authServer)), []byte(receivedHash)) != 1 {
		return &core.HashVerificationError{ID: id}
	}

	return nil
}

// FinishHash computes the expected interaction hash for the given inputs.
func FinishHash(id, finishNonce, interactRef, authServer string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\n%s\n%s\n%s", id, finishNonce, interactRef, authServer)))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (s *service) cachedToken(authServer, accessType string) (string, bool) {
	s.mux.RLock()
	t, ok := s.tokens.Get(authServer + "|" + accessType)
	s.mux.RUnlock()

	if !ok || time.Now().After(t.expiresAt) {
		return "", false
	}

	return t.value, true
}

func (s *service) storeToken(authServer, accessType, value string) {
	s.mux.Lock()
	s.tokens.Put(authServer+"|"+accessType, cachedToken{
		value:     value,
		expiresAt: time.Now().Add(s.cfg.TokenTTL),
	})
	s.mux.Unlock()
}
