// Package inspect exposes the stackwalk inspector over gRPC. Linking it
// into a process and calling Init makes the process's registered threads,
// symbol metadata, and fault snapshots reachable by collectors and by the
// inspectclient package.
package inspect

import (
	"context"
	"fmt"
	"net"

	"github.com/spindle-vm/stackwalk/internal/inspectconn"
)

// Option configures the inspect library.
type Option interface {
	apply(*inspectconn.Config)
}

type optionFunc func(cfg *inspectconn.Config)

func (f optionFunc) apply(cfg *inspectconn.Config) {
	f(cfg)
}

// WithListenAddr sets a local TCP address for the inspector to serve on.
// Defaults to the SPINDLE_INSPECT_ADDR environment variable if this option
// is not used. Use "127.0.0.1:0" to pick a free port; Addr reports the
// bound address.
func WithListenAddr(addr string) Option {
	return optionFunc(func(cfg *inspectconn.Config) {
		cfg.ListenAddr = addr
	})
}

// WithCollectorURL sets the URL of a collector the process dials out to,
// for deployments where inbound connections are not possible. Defaults to
// the SPINDLE_COLLECTOR_URL environment variable if this option is not
// used.
func WithCollectorURL(url string) Option {
	return optionFunc(func(cfg *inspectconn.Config) {
		cfg.CollectorURL = url
	})
}

// WithEnvironment sets the environment label this process reports.
// Defaults to the SPINDLE_ENVIRONMENT environment variable if this option
// is not used.
func WithEnvironment(env string) Option {
	return optionFunc(func(cfg *inspectconn.Config) {
		cfg.Environment = env
	})
}

// WithErrorLogger sets a function to be called with errors (for example
// for logging them).
func WithErrorLogger(f func(err error)) Option {
	return optionFunc(func(cfg *inspectconn.Config) {
		cfg.ErrorLogger = f
	})
}

// Init starts the inspector endpoint. Depending on the configuration the
// process either listens on a local address or dials out to a collector
// and serves RPCs on that connection.
//
// Stop() terminates the endpoint. Calling Init again replaces a running
// endpoint.
func Init(ctx context.Context, opts ...Option) error {
	cfg := inspectconn.MakeDefaultConfig()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if err := singletonConn.Connect(ctx, cfg); err != nil {
		return fmt.Errorf("failed to start inspector: %w", err)
	}
	return nil
}

// Stop terminates the inspector endpoint. It is a no-op if Init() hasn't
// been called. Init() can be called again after Stop().
func Stop() {
	singletonConn.Close()
}

// Addr returns the address the inspector is serving on, or nil if it is
// not running. Useful with WithListenAddr("127.0.0.1:0").
func Addr() net.Addr {
	return singletonConn.Addr()
}

// singletonConn is the endpoint manipulated by Init() / Stop().
var singletonConn = inspectconn.NewConn()

type ConnectionStatus int

const (
	UnknownStatus ConnectionStatus = iota
	Connected
	Disconnected
	Connecting
)

// Status reports the state of the inspector endpoint. An endpoint that was
// never started, or was stopped, reports Disconnected.
func Status() ConnectionStatus {
	switch s := singletonConn.Status(); s {
	case inspectconn.UnknownStatus:
		return UnknownStatus
	case inspectconn.Uninitialized:
		return Disconnected
	case inspectconn.Connecting:
		return Connecting
	case inspectconn.Connected:
		return Connected
	case inspectconn.Disconnected:
		return Disconnected
	default:
		panic(fmt.Sprintf("unexpected status: %v", s))
	}
}
