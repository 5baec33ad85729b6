package client

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/siwe-auth/internal/eth"
	"github.com/sirupsen/logrus"
)

const (
	NoticeTitle       = "Session Invalidated"
	NoticeDescription = "Wallet disconnected or account changed. Please sign in again."

	defaultSignOutTimeout = 10 * time.Second
)

// WalletState is one observation of the connected wallet
type WalletState struct {
	Connected bool
	Address   string
	ChainID   uint64
}

// SignOuter tells the server a session is over
type SignOuter interface {
	SignOut(ctx context.Context, token string) error
}

// Notifier surfaces a notice to the user
type Notifier interface {
	Notify(title, description string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(title, description string)

func (f NotifierFunc) Notify(title, description string) { f(title, description) }

// Watcher keeps the local session in line with the connected wallet. A
// credential can be cryptographically valid yet belong to an account the
// wallet no longer controls; the watcher drops such sessions.
type Watcher struct {
	session *SessionState
	signOut SignOuter
	notify  Notifier
	log     logrus.FieldLogger
	timeout time.Duration
	pending sync.WaitGroup
}

// NewWatcher creates a watcher over session. notify may be nil.
func NewWatcher(session *SessionState, signOut SignOuter, notify Notifier, log logrus.FieldLogger) *Watcher {
	return &Watcher{
		session: session,
		signOut: signOut,
		notify:  notify,
		log:     log.WithField("component", "watcher"),
		timeout: defaultSignOutTimeout,
	}
}

// Observe compares one wallet observation with the session and invalidates
// the session when the wallet disconnected or switched accounts. It reports
// whether the session was invalidated.
func (w *Watcher) Observe(state WalletState) bool {
	snap := w.session.Snapshot()
	if snap.Status != StatusAuthenticated {
		return false
	}
	if state.Connected && sameAccount(state.Address, snap.Subject) {
		return false
	}

	// Local state goes first so a failing server call cannot keep it alive.
	w.session.Clear()

	w.log.WithFields(logrus.Fields{
		"subject":   snap.Subject,
		"connected": state.Connected,
		"address":   state.Address,
	}).Info("session invalidated by wallet change")

	if w.notify != nil {
		w.notify.Notify(NoticeTitle, NoticeDescription)
	}

	if w.signOut != nil && snap.Token != "" {
		w.pending.Add(1)
		go func() {
			defer w.pending.Done()
			ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
			defer cancel()
			if err := w.signOut.SignOut(ctx, snap.Token); err != nil {
				w.log.WithError(err).Warn("sign-out request failed")
			}
		}()
	}

	return true
}

// Run observes wallet updates until the channel closes or ctx is done
func (w *Watcher) Run(ctx context.Context, updates <-chan WalletState) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case state, ok := <-updates:
			if !ok {
				return nil
			}
			w.Observe(state)
		}
	}
}

// Wait blocks until every sign-out request started by the watcher returned
func (w *Watcher) Wait() {
	w.pending.Wait()
}

func sameAccount(a, b string) bool {
	na, err := eth.NormalizeAddress(a)
	if err != nil {
		return false
	}
	nb, err := eth.NormalizeAddress(b)
	if err != nil {
		return false
	}
	return na == nb
}
