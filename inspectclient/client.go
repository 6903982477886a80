// Package inspectclient is a client for the inspector endpoint that the
// inspect package exposes in a process.
package inspectclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/spindle-vm/stackwalk/internal/inspectpb"
)

// InspectClient is a client for one process's inspector endpoint.
type InspectClient struct {
	conn   *grpc.ClientConn
	client inspectpb.InspectorClient
}

// Dial connects to an inspector endpoint. addr is either a plain host:port
// pair, which is dialed without transport security, or a URL with http or
// https scheme.
//
// Close() needs to be called on the client when it is no longer needed to
// release resources.
func Dial(addr string, option ...Option) (*InspectClient, error) {
	opts := clientOpts{}
	for _, o := range option {
		o.apply(&opts)
	}
	target, dialOpts, err := grpcTarget(addr)
	if err != nil {
		return nil, err
	}
	dialOpts = append(dialOpts, opts.grpcOpts...)
	conn, err := grpc.Dial(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the inspector: %w", err)
	}
	return &InspectClient{
		conn:   conn,
		client: inspectpb.NewInspectorClient(conn),
	}, nil
}

// Close closes the client's network connection.
func (c *InspectClient) Close() {
	_ /* err */ = c.conn.Close()
}

func grpcTarget(addr string) (string, []grpc.DialOption, error) {
	if !strings.Contains(addr, "://") {
		return addr, []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		}, nil
	}
	parsed, err := url.Parse(addr)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse url: %w", err)
	}
	var target string
	var dialOpts []grpc.DialOption
	switch parsed.Scheme {
	case "http":
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		ip := net.ParseIP(parsed.Hostname())
		if ip != nil && parsed.Port() != "" {
			target = net.JoinHostPort(ip.String(), parsed.Port())
		} else if ip != nil {
			target = ip.String()
		} else {
			target = fmt.Sprintf("dns:///%s", parsed.Host)
		}
	case "https":
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{})))
		target = fmt.Sprintf("dns:///%s", parsed.Host)
	default:
		return "", nil, fmt.Errorf("unsupported scheme: %s", parsed.Scheme)
	}
	return target, dialOpts, nil
}

type clientOpts struct {
	grpcOpts []grpc.DialOption
}

// Option is the interface implemented by options for Dial.
type Option interface {
	apply(*clientOpts)
}

// WithGRPCOptions appends raw gRPC dial options, for callers that need a
// custom dialer or credentials.
type WithGRPCOptions []grpc.DialOption

var _ Option = WithGRPCOptions(nil)

// apply implements the Option interface.
func (w WithGRPCOptions) apply(opts *clientOpts) {
	opts.grpcOpts = append(opts.grpcOpts, w...)
}

// ProcessInfo identifies the process behind an inspector endpoint.
type ProcessInfo struct {
	// Fingerprint distinguishes restarts of the same binary.
	Fingerprint string
	PID         int
	// ExecutableHash is the HighwayHash-64 of the executable, in hex.
	ExecutableHash string
	StartTime      time.Time
	Environment    string
	Hostname       string
}

// ThreadInfo describes one registered runtime thread.
type ThreadInfo struct {
	ID   uint64
	Name string
}

// Backtrace is a captured sequence of raw code addresses, innermost call
// first.
type Backtrace struct {
	Addresses []uint64
	// StackPointers is empty unless requested at capture time.
	StackPointers []uint64
	StackHash     uint64
	CapturedAt    time.Time
}

// FuncMeta describes the compiled function containing a frame.
type FuncMeta struct {
	Name  string
	Entry uint64
	End   uint64
}

// Frame is one source-level view of an address. Inlining expands a single
// address into several frames, callee before caller.
type Frame struct {
	Function string
	File     string
	// Line is -1 when unknown.
	Line int
	// Meta is only set on the outermost frame of an inline chain.
	Meta       *FuncMeta
	FromNative bool
	Inlined    bool
	Address    uint64
}

// FaultReport is the backtrace recorded at the process's most recent
// fault.
type FaultReport struct {
	Addresses  []uint64
	CapturedAt time.Time
}

// Info fetches the identity of the process behind the endpoint.
func (c *InspectClient) Info(ctx context.Context) (ProcessInfo, error) {
	res, err := c.client.Info(ctx, &inspectpb.InfoRequest{})
	if err != nil {
		return ProcessInfo{}, rpcError(err)
	}
	return ProcessInfo{
		Fingerprint:    res.Fingerprint,
		PID:            int(res.Pid),
		ExecutableHash: res.ExecutableHash,
		StartTime:      time.Unix(0, res.StartTimeUnixNanos),
		Environment:    res.Environment,
		Hostname:       res.Hostname,
	}, nil
}

// Threads lists the runtime threads registered for unwinding.
func (c *InspectClient) Threads(ctx context.Context) ([]ThreadInfo, error) {
	res, err := c.client.Threads(ctx, &inspectpb.ThreadsRequest{})
	if err != nil {
		return nil, rpcError(err)
	}
	threads := make([]ThreadInfo, 0, len(res.Threads))
	for _, t := range res.Threads {
		threads = append(threads, ThreadInfo{ID: t.Id, Name: t.Name})
	}
	return threads, nil
}

// Capture walks the stack of one registered thread. maxFrames bounds the
// walk; 0 means the server's default. Besides generic errors, Capture can
// return ThreadNotFoundError.
func (c *InspectClient) Capture(
	ctx context.Context, threadID uint64, maxFrames int, wantStackPointers bool,
) (Backtrace, error) {
	req := &inspectpb.CaptureRequest{
		ThreadId:          threadID,
		WantStackPointers: wantStackPointers,
	}
	if maxFrames > 0 {
		req.MaxFrames = uint64(maxFrames)
	}
	res, err := c.client.Capture(ctx, req)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Backtrace{}, ThreadNotFoundError{ID: threadID}
		}
		return Backtrace{}, rpcError(err)
	}
	return Backtrace{
		Addresses:     res.Addresses,
		StackPointers: res.StackPointers,
		StackHash:     res.StackHash,
		CapturedAt:    time.Unix(0, res.CapturedAtUnixNanos),
	}, nil
}

// Resolve maps one captured address to source-level frames, including
// frames inlined at that address.
func (c *InspectClient) Resolve(
	ctx context.Context, address uint64, skipNative bool,
) ([]Frame, error) {
	res, err := c.client.Resolve(ctx, &inspectpb.ResolveRequest{
		Address:    address,
		SkipNative: skipNative,
	})
	if err != nil {
		return nil, rpcError(err)
	}
	frames := make([]Frame, 0, len(res.Frames))
	for _, f := range res.Frames {
		fr := Frame{
			Function:   f.Function,
			File:       f.File,
			Line:       int(f.Line),
			FromNative: f.FromNative,
			Inlined:    f.Inlined,
			Address:    f.Address,
		}
		if f.Metadata != nil {
			fr.Meta = &FuncMeta{
				Name:  f.Metadata.Name,
				Entry: f.Metadata.Entry,
				End:   f.Metadata.End,
			}
		}
		frames = append(frames, fr)
	}
	return frames, nil
}

// LastFault fetches the backtrace recorded at the process's most recent
// fault. It returns NoFaultError if the process has not recorded one.
func (c *InspectClient) LastFault(ctx context.Context) (FaultReport, error) {
	res, err := c.client.LastFault(ctx, &inspectpb.LastFaultRequest{})
	if err != nil {
		return FaultReport{}, rpcError(err)
	}
	if !res.Present {
		return FaultReport{}, NoFaultError{}
	}
	return FaultReport{
		Addresses:  res.Addresses,
		CapturedAt: time.Unix(0, res.CapturedAtUnixNanos),
	}, nil
}

// Executable streams the process's binary into w and returns the number of
// bytes written.
func (c *InspectClient) Executable(ctx context.Context, w io.Writer) (int64, error) {
	stream, err := c.client.Executable(ctx, &inspectpb.ExecutableRequest{})
	if err != nil {
		return 0, rpcError(err)
	}
	var written int64
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return written, fmt.Errorf("failed to receive chunk: %w", err)
		}
		n, err := w.Write(chunk.Data)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write executable: %w", err)
		}
	}
	return written, nil
}

func rpcError(err error) error {
	if status.Code(err) == codes.Unavailable {
		return fmt.Errorf("failed to connect to the inspector: %w", err)
	}
	return err
}

// ThreadNotFoundError is returned by Capture when the process has no
// thread registered under the requested ID.
type ThreadNotFoundError struct {
	ID uint64
}

var _ error = ThreadNotFoundError{}

func (e ThreadNotFoundError) Error() string {
	return fmt.Sprintf("thread %d not found", e.ID)
}

// NoFaultError is returned by LastFault when the process has not recorded
// any fault.
type NoFaultError struct{}

var _ error = NoFaultError{}

func (NoFaultError) Error() string {
	return "no fault recorded"
}
