// Package wallet performs the account-access handshake with a wallet
// provider and tracks the connection status shown on the page.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cryptopulse/internal/domain"

	"github.com/rs/zerolog/log"
)

var (
	ErrProviderAbsent   = errors.New("wallet provider not available")
	ErrProviderRejected = errors.New("wallet connection rejected")
)

const (
	StatusNotInstalled = "MetaMask not installed."
	StatusConnecting   = "Connecting..."
	StatusRejected     = "Connection rejected or failed."
)

// Provider requests account access from a wallet.
type Provider interface {
	RequestAccounts(ctx context.Context) ([]string, error)
}

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Connector holds the single wallet session for the process. A nil provider
// means no wallet capability is installed.
type Connector struct {
	provider Provider

	mu      sync.Mutex
	state   State
	status  string
	session domain.WalletSession
	attempt uint64
}

func NewConnector(p Provider) *Connector {
	return &Connector{provider: p}
}

// Connect requests accounts from the provider. Calls made while another is
// still connecting each send their own request; the newest one decides the
// final status.
func (c *Connector) Connect(ctx context.Context) (domain.WalletSession, error) {
	if c.provider == nil {
		c.mu.Lock()
		c.attempt++
		c.state = StateDisconnected
		c.status = StatusNotInstalled
		c.session = domain.WalletSession{}
		c.mu.Unlock()
		log.Warn().Msg("wallet connect requested but no provider is configured")
		return domain.WalletSession{}, ErrProviderAbsent
	}

	c.mu.Lock()
	c.attempt++
	attempt := c.attempt
	c.state = StateConnecting
	c.status = StatusConnecting
	c.mu.Unlock()

	accounts, err := c.provider.RequestAccounts(ctx)
	if err == nil && (len(accounts) == 0 || accounts[0] == "") {
		err = errors.New("provider returned no accounts")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	latest := attempt == c.attempt

	if err != nil {
		if latest {
			c.state = StateDisconnected
			c.status = StatusRejected
			c.session = domain.WalletSession{}
		}
		log.Warn().Err(err).Msg("wallet connection error")
		return domain.WalletSession{}, fmt.Errorf("%w: %w", ErrProviderRejected, err)
	}

	session := domain.WalletSession{Address: accounts[0]}
	if latest {
		c.state = StateConnected
		c.status = "Connected: " + ShortAddress(session.Address)
		c.session = session
	}
	return session, nil
}

// Status is the text for the page's wallet status element.
func (c *Connector) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Connector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Connector) Session() domain.WalletSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Available reports whether a provider is configured.
func (c *Connector) Available() bool { return c.provider != nil }

// ShortAddress keeps the first 6 and last 4 characters: 0xABCD...7890.
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
