// Package serverdial inverts the usual connection direction: the process
// dials out to a collector and then serves gRPC on the dialed connection.
// The dialed side is wrapped in a net.Listener so it can be handed straight
// to grpc.Server.Serve.
package serverdial

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// Status describes the state of the outbound connection.
type Status int32

const (
	UnknownStatus Status = iota
	Connecting
	Connected
	Disconnected
)

// Listener implements net.Listener on top of connections dialed to an
// outbound address. It keeps one connection alive at a time, redialing
// with capped exponential backoff whenever the connection drops.
type Listener struct {
	addr     dialAddr
	dialChan <-chan net.Conn

	status atomic.Int32

	dialingCtx    context.Context
	cancelDialing context.CancelFunc
	done          <-chan struct{}
}

var _ net.Listener = (*Listener)(nil)

// NewListener creates a Listener that dials the given address. The address
// must be a valid URL with either http or https scheme and no path or
// query. onDialError, if not nil, is called with every failed dial attempt.
func NewListener(addr string, onDialError func(error)) (*Listener, error) {
	d, dAddr, err := newDialer(addr)
	if err != nil {
		return nil, err
	}
	if onDialError == nil {
		onDialError = func(error) {}
	}
	dialChan := make(chan net.Conn)
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	l := &Listener{
		addr:          dAddr,
		dialChan:      dialChan,
		dialingCtx:    ctx,
		cancelDialing: cancel,
		done:          done,
	}
	go l.run(d, dialChan, onDialError, done)
	return l, nil
}

const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
)

func (l *Listener) run(
	d dialer,
	dialChan chan<- net.Conn,
	onDialError func(error),
	done chan<- struct{},
) {
	defer close(done)
	backoff := initialBackoff
	var lastDial time.Time
	for {
		if since := time.Since(lastDial); since < backoff {
			select {
			case <-l.dialingCtx.Done():
				return
			case <-time.After(backoff - since):
			}
		}
		lastDial = time.Now()
		l.status.Store(int32(Connecting))
		conn, err := d.DialContext(l.dialingCtx, "tcp", l.addr.addr)
		if err != nil {
			l.status.Store(int32(Disconnected))
			if l.dialingCtx.Err() != nil {
				return
			}
			onDialError(fmt.Errorf("failed to dial %s: %w", l.addr.addr, err))
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = initialBackoff
		l.status.Store(int32(Connected))
		onClose := make(chan struct{})
		select {
		case dialChan <- &wrappedConn{c: conn, onClose: onClose}:
		case <-l.dialingCtx.Done():
			_ = conn.Close()
			return
		}
		select {
		case <-l.dialingCtx.Done():
			return
		case <-onClose:
			l.status.Store(int32(Disconnected))
		}
	}
}

// ConnectionStatus reports the state of the outbound connection.
func (l *Listener) ConnectionStatus() Status {
	return Status(l.status.Load())
}

// Accept implements net.Listener. The magic header is written before the
// connection is handed out so the remote side can recognize it.
func (l *Listener) Accept() (net.Conn, error) {
	select {
	case <-l.dialingCtx.Done():
		return nil, l.dialingCtx.Err()
	case conn := <-l.dialChan:
		if err := writeHeader(conn); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

// Addr implements net.Listener.
func (l *Listener) Addr() net.Addr {
	return &l.addr
}

// Close implements net.Listener.
func (l *Listener) Close() error {
	l.cancelDialing()
	<-l.done
	return nil
}

// wrappedConn signals the dial loop when the connection is closed so it
// can start dialing a replacement.
type wrappedConn struct {
	c         net.Conn
	closeOnce sync.Once
	onClose   chan<- struct{}
	closeErr  error
}

var _ net.Conn = (*wrappedConn)(nil)

// Read implements net.Conn.
func (w *wrappedConn) Read(b []byte) (n int, err error) {
	return w.c.Read(b)
}

// Write implements net.Conn.
func (w *wrappedConn) Write(b []byte) (n int, err error) {
	return w.c.Write(b)
}

// LocalAddr implements net.Conn.
func (w *wrappedConn) LocalAddr() net.Addr {
	return w.c.LocalAddr()
}

// RemoteAddr implements net.Conn.
func (w *wrappedConn) RemoteAddr() net.Addr {
	return w.c.RemoteAddr()
}

// SetDeadline implements net.Conn.
func (w *wrappedConn) SetDeadline(t time.Time) error {
	return w.c.SetDeadline(t)
}

// SetReadDeadline implements net.Conn.
func (w *wrappedConn) SetReadDeadline(t time.Time) error {
	return w.c.SetReadDeadline(t)
}

// SetWriteDeadline implements net.Conn.
func (w *wrappedConn) SetWriteDeadline(t time.Time) error {
	return w.c.SetWriteDeadline(t)
}

func (w *wrappedConn) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.c.Close()
		close(w.onClose)
	})
	return w.closeErr
}

type dialAddr struct {
	scheme string
	addr   string
}

// Network implements net.Addr.
func (a *dialAddr) Network() string {
	return "serverdial"
}

// String implements net.Addr.
func (a *dialAddr) String() string {
	return a.addr
}

type dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

func newDialer(addr string) (dialer, dialAddr, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, dialAddr{}, fmt.Errorf("failed to parse url: %w", err)
	}
	if u.Path != "" {
		return nil, dialAddr{}, fmt.Errorf("unsupported path: %s", u.Path)
	}
	if u.RawQuery != "" {
		return nil, dialAddr{}, fmt.Errorf("unsupported query: %s", u.RawQuery)
	}
	var d dialer
	switch u.Scheme {
	case "http":
		d = &net.Dialer{}
	case "https":
		d = &tls.Dialer{}
	default:
		return nil, dialAddr{}, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	return d, dialAddr{
		scheme: u.Scheme,
		addr:   u.Host,
	}, nil
}
