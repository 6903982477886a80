// Package inspectconn manages the lifecycle of the inspector endpoint: the
// gRPC server, the listener it serves on, and the identity the process
// reports. The endpoint either listens on a local address or dials out to a
// collector and serves on the dialed connection.
package inspectconn

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/grpc"

	"github.com/spindle-vm/stackwalk"
	"github.com/spindle-vm/stackwalk/internal/inspectpb"
	"github.com/spindle-vm/stackwalk/internal/inspectsvc"
	"github.com/spindle-vm/stackwalk/internal/serverdial"
)

// Config controls where the inspector endpoint is exposed.
type Config struct {
	// ListenAddr is a local TCP address to serve on. When set it takes
	// precedence over CollectorURL.
	ListenAddr string
	// CollectorURL is the URL of a collector to dial out to. The collector
	// end accepts the connection and then acts as the gRPC client.
	CollectorURL string
	Environment  string
	ErrorLogger  func(err error)
}

const (
	ENV_INSPECT_ADDR  = "SPINDLE_INSPECT_ADDR"
	ENV_COLLECTOR_URL = "SPINDLE_COLLECTOR_URL"
	ENV_ENVIRONMENT   = "SPINDLE_ENVIRONMENT"
)

// MakeDefaultConfig builds a Config from the process environment.
func MakeDefaultConfig() Config {
	cfg := Config{
		ErrorLogger: func(err error) {},
	}
	if v := os.Getenv(ENV_INSPECT_ADDR); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(ENV_COLLECTOR_URL); v != "" {
		cfg.CollectorURL = v
	}
	if v := os.Getenv(ENV_ENVIRONMENT); v != "" {
		cfg.Environment = v
	}
	return cfg
}

// Conn represents the process's inspector endpoint.
type Conn struct {
	ActiveConfig Config
	// fingerprint is the ID this process reports through the Info RPC. It
	// is minted anew on every Connect.
	fingerprint uuid.UUID

	// Fields that change in Connect/Close.
	mu struct {
		sync.Mutex
		// listener is what the gRPC server serves on: either a local TCP
		// listener or dialListener.
		listener net.Listener
		// dialListener is set instead when the endpoint dials out to a
		// collector.
		dialListener *serverdial.Listener

		grpcServer *grpc.Server
	}

	wg *sync.WaitGroup
}

func NewConn() *Conn {
	return &Conn{
		ActiveConfig: Config{
			// no-op logger
			ErrorLogger: func(err error) {},
		},
	}
}

func (c *Conn) Fingerprint() uuid.UUID {
	return c.fingerprint
}

// Connect exposes the inspector endpoint per cfg and starts a goroutine to
// handle incoming RPCs. If the endpoint was already connected, the previous
// incarnation is torn down first.
//
// c.Close() should be called to stop serving.
func (c *Conn) Connect(ctx context.Context, cfg Config) error {
	if err := stackwalk.Supported(); err != nil {
		return err
	}

	// If we were already connected, terminate that connection.
	c.Close()

	if cfg.ListenAddr == "" && cfg.CollectorURL == "" {
		return fmt.Errorf("no listen address or collector URL configured")
	}
	if cfg.ErrorLogger == nil {
		cfg.ErrorLogger = func(error) {}
	}

	var err error
	c.fingerprint, err = uuid.NewRandom()
	if err != nil {
		return fmt.Errorf("failed to generate fingerprint: %w", err)
	}

	var lis net.Listener
	var dialLis *serverdial.Listener
	if cfg.ListenAddr != "" {
		lis, err = net.Listen("tcp", cfg.ListenAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddr, err)
		}
	} else {
		dialLis, err = serverdial.NewListener(cfg.CollectorURL, cfg.ErrorLogger)
		if err != nil {
			return fmt.Errorf("failed to create listener: %w", err)
		}
		lis = dialLis
	}

	s := grpc.NewServer()
	inspectpb.RegisterInspectorServer(s, inspectsvc.NewServer(c.fingerprint, cfg.Environment))
	c.ActiveConfig = cfg
	c.mu.Lock()
	c.mu.listener = lis
	c.mu.dialListener = dialLis
	c.mu.grpcServer = s
	c.mu.Unlock()
	wg := &sync.WaitGroup{}
	wg.Add(1)
	c.wg = wg

	go func() {
		defer wg.Done() // unblock Close()
		defer c.closeInner()
		if err := s.Serve(lis); err != nil {
			cfg.ErrorLogger(fmt.Errorf("failed to serve: %w", err))
		}
	}()
	return nil
}

func (c *Conn) listener() net.Listener {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mu.listener
}

// Addr returns the address the inspector is serving on, or nil if the
// endpoint is not connected.
func (c *Conn) Addr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mu.listener == nil {
		return nil
	}
	return c.mu.listener.Addr()
}

// Close tears the endpoint down. It's a no-op if the endpoint was never
// connected. Connect() can be called again after Close().
func (c *Conn) Close() {
	if c.listener() == nil {
		return
	}

	c.closeInner()

	// Synchronize with the goroutine handling RPCs.
	c.wg.Wait()
}

// closeInner tears the endpoint down. Unlike Close(), it doesn't wait for
// the server goroutine to terminate.
//
// closeInner might be called concurrently with Close().
func (c *Conn) closeInner() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mu.listener == nil {
		// Endpoint has already been closed.
		return
	}
	c.mu.grpcServer.Stop()
	c.mu.grpcServer = nil
	c.mu.listener = nil
	c.mu.dialListener = nil
}

type ConnectionStatus int

const (
	UnknownStatus ConnectionStatus = iota
	// Uninitialized means Connect() was never called, or Close() was called.
	Uninitialized
	Connected
	Disconnected
	Connecting
)

func (c *Conn) Status() ConnectionStatus {
	c.mu.Lock()
	lis, dial := c.mu.listener, c.mu.dialListener
	c.mu.Unlock()
	if lis == nil {
		return Uninitialized
	}
	if dial == nil {
		// A bound local listener is serving from the moment Connect returns.
		return Connected
	}
	switch s := dial.ConnectionStatus(); s {
	case serverdial.UnknownStatus:
		return UnknownStatus
	case serverdial.Connecting:
		return Connecting
	case serverdial.Connected:
		return Connected
	case serverdial.Disconnected:
		return Disconnected
	default:
		panic(fmt.Sprintf("unexpected status: %v", s))
	}
}
