package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/layer-3/siwe-auth/internal/siwe"
)

// ErrAuthenticationFailed is returned when the server refused a sign-in
var ErrAuthenticationFailed = errors.New("authentication failed")

// Wallet signs text with the key of the connected account
type Wallet interface {
	Address() common.Address
	SignMessage(text string) (string, error)
}

// SessionInfo describes an issued session
type SessionInfo struct {
	Token     string    `json:"token"`
	Address   string    `json:"address"`
	ChainID   uint64    `json:"chainId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionStatus is the server's view of a credential
type SessionStatus struct {
	Status  Status `json:"status"`
	Address string `json:"address,omitempty"`
	ChainID uint64 `json:"chainId,omitempty"`
}

// API talks to the auth endpoints. It keeps cookies, so the nonce and the
// signed message travel in the same client context.
type API struct {
	base *url.URL
	http *http.Client
	now  func() time.Time
}

// NewAPI creates a client for the service at baseURL. A nil httpClient gets
// a default client with a cookie jar.
func NewAPI(baseURL string, httpClient *http.Client) (*API, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}

	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient = &http.Client{Jar: jar, Timeout: 15 * time.Second}
	}

	return &API{base: base, http: httpClient, now: time.Now}, nil
}

// Nonce fetches a fresh challenge nonce
func (a *API) Nonce(ctx context.Context) (string, error) {
	var resp struct {
		Nonce string `json:"nonce"`
	}
	if err := a.do(ctx, http.MethodGet, "/auth/nonce", "", nil, &resp); err != nil {
		return "", err
	}
	if resp.Nonce == "" {
		return "", errors.New("empty nonce")
	}
	return resp.Nonce, nil
}

// Message builds the sign-in message for this service
func (a *API) Message(address common.Address, chainID uint64, nonce, statement string) *siwe.Message {
	return &siwe.Message{
		Domain:    a.base.Host,
		Address:   address,
		Statement: statement,
		URI:       a.base.Scheme + "://" + a.base.Host,
		Version:   siwe.Version1,
		ChainID:   chainID,
		Nonce:     nonce,
		IssuedAt:  siwe.NewTimestamp(a.now()),
	}
}

// SignIn runs the whole flow: nonce, message, wallet signature, authorize
func (a *API) SignIn(ctx context.Context, wallet Wallet, chainID uint64, statement string) (*SessionInfo, error) {
	nonce, err := a.Nonce(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	text, err := a.Message(wallet.Address(), chainID, nonce, statement).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build message: %w", err)
	}

	signature, err := wallet.SignMessage(text)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}

	return a.Authorize(ctx, text, signature)
}

// Authorize submits a signed message
func (a *API) Authorize(ctx context.Context, message, signature string) (*SessionInfo, error) {
	body := map[string]string{"message": message, "signature": signature}

	var info SessionInfo
	if err := a.do(ctx, http.MethodPost, "/auth/authorize", "", body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Session asks the server whether token is still a valid session
func (a *API) Session(ctx context.Context, token string) (*SessionStatus, error) {
	var status SessionStatus
	if err := a.do(ctx, http.MethodGet, "/auth/session", token, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SignOut ends the session behind token
func (a *API) SignOut(ctx context.Context, token string) error {
	return a.do(ctx, http.MethodPost, "/auth/signout", token, nil, nil)
}

func (a *API) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base.JoinPath(path).String(), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrAuthenticationFailed
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
