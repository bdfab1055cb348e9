// Package provider owns the RPC connection and the wallet session. The form
// only ever sees a read-only View of it.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/wallet"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// ErrConnectInProgress is returned when Connect is called while another
// Connect has not finished.
var ErrConnectInProgress = errors.New("connect already in progress")

// State is the wallet session state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// ConnectorFactory builds the ordered connector list for a network. store
// may be nil when authorization memory is disabled.
type ConnectorFactory func(n chain.Network, store *wallet.SessionStore) []wallet.Connector

// Provider holds the network, its endpoint and connectors, and the session.
type Provider struct {
	network    chain.Network
	endpoint   string // override; empty means the cluster URL
	factory    ConnectorFactory
	session    *wallet.SessionStore
	conn       chain.Connection
	clientOpts []chain.ClientOption
	log        *zap.Logger

	memoMu     sync.Mutex
	memoKey    chain.Network
	memoSet    bool
	memoURL    string
	connectors []wallet.Connector
	connOnce   sync.Once

	mu        sync.RWMutex
	state     State
	active    wallet.Connector
	publicKey solana.PublicKey
	listeners []func(State)
}

// Option configures a Provider.
type Option func(*Provider)

// WithEndpoint uses url instead of the cluster's public RPC.
func WithEndpoint(url string) Option {
	return func(p *Provider) { p.endpoint = url }
}

// WithConnectors sets the connector factory.
func WithConnectors(f ConnectorFactory) Option {
	return func(p *Provider) { p.factory = f }
}

// WithConnection replaces the RPC connection built from the endpoint.
func WithConnection(c chain.Connection) Option {
	return func(p *Provider) { p.conn = c }
}

// WithSessionStore enables authorization memory for AutoConnect.
func WithSessionStore(s *wallet.SessionStore) Option {
	return func(p *Provider) { p.session = s }
}

// WithClientOptions passes options to the Solana client built for the endpoint.
func WithClientOptions(opts ...chain.ClientOption) Option {
	return func(p *Provider) { p.clientOpts = append(p.clientOpts, opts...) }
}

// WithLogger sets the debug logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.log = l
		}
	}
}

// New returns a disconnected provider for network.
func New(network chain.Network, opts ...Option) *Provider {
	p := &Provider{
		network: network,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.factory == nil {
		p.factory = func(chain.Network, *wallet.SessionStore) []wallet.Connector { return nil }
	}
	return p
}

// Network returns the network the provider was built for.
func (p *Provider) Network() chain.Network { return p.network }

// Endpoint returns the RPC URL, computed once per network.
func (p *Provider) Endpoint() string {
	p.memoMu.Lock()
	defer p.memoMu.Unlock()
	p.refreshMemo()
	return p.memoURL
}

// Connectors returns the connector list, built once per network. The order
// is the factory's order.
func (p *Provider) Connectors() []wallet.Connector {
	p.memoMu.Lock()
	defer p.memoMu.Unlock()
	p.refreshMemo()
	out := make([]wallet.Connector, len(p.connectors))
	copy(out, p.connectors)
	return out
}

// refreshMemo must be called with memoMu held.
func (p *Provider) refreshMemo() {
	if p.memoSet && p.memoKey == p.network {
		return
	}
	p.memoURL = p.endpoint
	if p.memoURL == "" {
		p.memoURL = chain.ClusterURL(p.network)
	}
	p.connectors = p.factory(p.network, p.session)
	p.memoKey = p.network
	p.memoSet = true
	p.log.Debug("provider memo built",
		zap.String("network", string(p.network)),
		zap.String("endpoint", p.memoURL),
		zap.Int("connectors", len(p.connectors)))
}

// Connector finds a connector by name.
func (p *Provider) Connector(name string) (wallet.Connector, error) {
	for _, c := range p.Connectors() {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", wallet.ErrUnknownConnector, name)
}

// Connection returns the shared RPC connection.
func (p *Provider) Connection() chain.Connection {
	p.connOnce.Do(func() {
		if p.conn != nil {
			return
		}
		opts := append([]chain.ClientOption{chain.WithLogger(p.log)}, p.clientOpts...)
		p.conn = chain.NewSolanaClient(p.Endpoint(), opts...)
	})
	return p.conn
}

// OnStateChange registers fn to be called after every state transition.
func (p *Provider) OnStateChange(fn func(State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// State returns the session state.
func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// PublicKey returns the connected identity, if any.
func (p *Provider) PublicKey() (solana.PublicKey, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state != Connected {
		return solana.PublicKey{}, false
	}
	return p.publicKey, true
}

// ConnectorName returns the name of the connected connector, or "".
func (p *Provider) ConnectorName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.active == nil {
		return ""
	}
	return p.active.Name()
}

// Connect authorizes the named connector and records it for AutoConnect.
// An existing session on another connector is closed first.
func (p *Provider) Connect(ctx context.Context, name string) (solana.PublicKey, error) {
	c, err := p.Connector(name)
	if err != nil {
		return solana.PublicKey{}, err
	}

	p.mu.Lock()
	switch {
	case p.state == Connecting:
		p.mu.Unlock()
		return solana.PublicKey{}, ErrConnectInProgress
	case p.state == Connected && p.active == c:
		pub := p.publicKey
		p.mu.Unlock()
		return pub, nil
	}
	prev := p.active
	p.state = Connecting
	p.active = nil
	p.publicKey = solana.PublicKey{}
	p.mu.Unlock()
	p.notify(Connecting)

	if prev != nil {
		if err := prev.Disconnect(ctx); err != nil {
			p.log.Debug("closing previous connector", zap.String("connector", prev.Name()), zap.Error(err))
		}
	}

	pub, err := c.Connect(ctx)
	if err != nil {
		p.setState(Disconnected, nil, solana.PublicKey{})
		return solana.PublicKey{}, fmt.Errorf("connecting %s: %w", name, err)
	}
	p.setState(Connected, c, pub)
	p.log.Debug("wallet connected", zap.String("connector", name), zap.String("publicKey", pub.String()))

	if p.session != nil {
		if err := p.session.Remember(p.network, name); err != nil {
			p.log.Warn("could not remember connector", zap.Error(err))
		}
	}
	return pub, nil
}

// Disconnect closes the session and forgets the authorization.
func (p *Provider) Disconnect(ctx context.Context) error {
	p.mu.Lock()
	active := p.active
	was := p.state
	p.mu.Unlock()

	var err error
	if active != nil {
		err = active.Disconnect(ctx)
	}
	if was != Disconnected {
		p.setState(Disconnected, nil, solana.PublicKey{})
	}
	if p.session != nil {
		if ferr := p.session.Forget(p.network); ferr != nil && err == nil {
			err = ferr
		}
	}
	return err
}

// AutoConnect reconnects the connector remembered for this network. It
// reports whether a connection was attempted; a stale or unavailable
// authorization is skipped silently.
func (p *Provider) AutoConnect(ctx context.Context) (bool, error) {
	if p.session == nil {
		return false, nil
	}
	name, ok := p.session.Remembered(p.network)
	if !ok {
		return false, nil
	}
	c, err := p.Connector(name)
	if err != nil {
		p.log.Debug("forgetting unknown connector", zap.String("connector", name))
		_ = p.session.Forget(p.network)
		return false, nil
	}
	if !c.Available() {
		p.log.Debug("remembered connector unavailable", zap.String("connector", name))
		return false, nil
	}
	_, err = p.Connect(ctx, name)
	return true, err
}

// SendTransaction signs and sends tx through the connected connector.
func (p *Provider) SendTransaction(ctx context.Context, tx *solana.Transaction, conn chain.Connection) (solana.Signature, error) {
	p.mu.RLock()
	active, state := p.active, p.state
	p.mu.RUnlock()
	if state != Connected || active == nil {
		return solana.Signature{}, wallet.ErrNotConnected
	}
	return active.SendTransaction(ctx, tx, conn)
}

func (p *Provider) setState(s State, c wallet.Connector, pub solana.PublicKey) {
	p.mu.Lock()
	p.state = s
	p.active = c
	p.publicKey = pub
	p.mu.Unlock()
	p.notify(s)
}

func (p *Provider) notify(s State) {
	p.mu.RLock()
	listeners := make([]func(State), len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.RUnlock()
	for _, fn := range listeners {
		fn(s)
	}
}

// View returns the read-only face of the provider.
func (p *Provider) View() View {
	return View{p: p}
}

// View exposes the session without the ability to connect or disconnect.
type View struct {
	p *Provider
}

func (v View) Network() chain.Network { return v.p.Network() }
func (v View) State() State { return v.p.State() }
func (v View) PublicKey() (solana.PublicKey, bool) { return v.p.PublicKey() }
func (v View) Connection() chain.Connection { return v.p.Connection() }
func (v View) SendTransaction(ctx context.Context, tx *solana.Transaction, conn chain.Connection) (solana.Signature, error) {
	return v.p.SendTransaction(ctx, tx, conn)
}
