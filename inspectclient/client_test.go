package inspectclient_test

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/spindle-vm/stackwalk"
	"github.com/spindle-vm/stackwalk/inspect"
	"github.com/spindle-vm/stackwalk/inspectclient"
	"github.com/spindle-vm/stackwalk/internal/inspectpb"
)

type stubServer struct {
	inspectpb.UnimplementedInspectorServer
	fault bool
}

func (s *stubServer) Info(ctx context.Context, _ *inspectpb.InfoRequest) (*inspectpb.InfoResponse, error) {
	return &inspectpb.InfoResponse{
		Fingerprint:        "fp-1",
		Pid:                1234,
		ExecutableHash:     "00ff",
		StartTimeUnixNanos: 42,
		Environment:        "stub",
		Hostname:           "host-1",
	}, nil
}

func (s *stubServer) Threads(ctx context.Context, _ *inspectpb.ThreadsRequest) (*inspectpb.ThreadsResponse, error) {
	return &inspectpb.ThreadsResponse{
		Threads: []*inspectpb.ThreadInfo{
			{Id: 1, Name: "main"},
			{Id: 2, Name: "gc"},
		},
	}, nil
}

func (s *stubServer) Capture(ctx context.Context, req *inspectpb.CaptureRequest) (*inspectpb.CaptureResponse, error) {
	if req.ThreadId != 1 {
		return nil, status.Errorf(codes.NotFound, "thread %d is not registered", req.ThreadId)
	}
	resp := &inspectpb.CaptureResponse{
		Addresses:           []uint64{0x10, 0x20},
		StackHash:           7,
		CapturedAtUnixNanos: 1000,
	}
	if req.WantStackPointers {
		resp.StackPointers = []uint64{0x100, 0x200}
	}
	return resp, nil
}

func (s *stubServer) Resolve(ctx context.Context, req *inspectpb.ResolveRequest) (*inspectpb.ResolveResponse, error) {
	return &inspectpb.ResolveResponse{
		Frames: []*inspectpb.FrameInfo{
			{Function: "fma", File: "m.sp", Line: 3, Inlined: true, Address: req.Address},
			{
				Function: "solve",
				File:     "s.sp",
				Line:     9,
				Metadata: &inspectpb.FuncMeta{Name: "solve", Entry: 0x40, End: 0x80},
				Address:  req.Address,
			},
		},
	}, nil
}

func (s *stubServer) LastFault(ctx context.Context, _ *inspectpb.LastFaultRequest) (*inspectpb.LastFaultResponse, error) {
	if !s.fault {
		return &inspectpb.LastFaultResponse{}, nil
	}
	return &inspectpb.LastFaultResponse{
		Present:             true,
		Addresses:           []uint64{0x30},
		CapturedAtUnixNanos: 2000,
	}, nil
}

func (s *stubServer) Executable(_ *inspectpb.ExecutableRequest, stream inspectpb.Inspector_ExecutableServer) error {
	for _, part := range [][]byte{[]byte("hello "), []byte("world")} {
		if err := stream.Send(&inspectpb.Chunk{Data: part}); err != nil {
			return err
		}
	}
	return nil
}

func dialStub(t *testing.T, stub inspectpb.InspectorServer) *inspectclient.InspectClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	inspectpb.RegisterInspectorServer(srv, stub)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	client, err := inspectclient.Dial("bufnet", inspectclient.WithGRPCOptions{
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestInfoThreadsCapture(t *testing.T) {
	client := dialStub(t, &stubServer{})
	ctx := context.Background()

	info, err := client.Info(ctx)
	require.NoError(t, err)
	require.Equal(t, "fp-1", info.Fingerprint)
	require.Equal(t, 1234, info.PID)
	require.Equal(t, "00ff", info.ExecutableHash)
	require.Equal(t, int64(42), info.StartTime.UnixNano())
	require.Equal(t, "stub", info.Environment)
	require.Equal(t, "host-1", info.Hostname)

	threads, err := client.Threads(ctx)
	require.NoError(t, err)
	require.Equal(t, []inspectclient.ThreadInfo{
		{ID: 1, Name: "main"},
		{ID: 2, Name: "gc"},
	}, threads)

	bt, err := client.Capture(ctx, 1, 0, true)
	require.NoError(t, err)
	require.Equal(t, []uint64{0x10, 0x20}, bt.Addresses)
	require.Equal(t, []uint64{0x100, 0x200}, bt.StackPointers)
	require.Equal(t, uint64(7), bt.StackHash)
	require.Equal(t, int64(1000), bt.CapturedAt.UnixNano())

	_, err = client.Capture(ctx, 99, 0, false)
	var notFound inspectclient.ThreadNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, uint64(99), notFound.ID)
}

func TestResolveMapsFrames(t *testing.T) {
	client := dialStub(t, &stubServer{})

	frames, err := client.Resolve(context.Background(), 0x1234, false)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	require.Equal(t, "fma", frames[0].Function)
	require.True(t, frames[0].Inlined)
	require.Nil(t, frames[0].Meta)
	require.Equal(t, uint64(0x1234), frames[0].Address)
	require.Equal(t, "solve", frames[1].Function)
	require.NotNil(t, frames[1].Meta)
	require.Equal(t, uint64(0x40), frames[1].Meta.Entry)
	require.Equal(t, uint64(0x80), frames[1].Meta.End)
}

func TestLastFault(t *testing.T) {
	client := dialStub(t, &stubServer{})
	_, err := client.LastFault(context.Background())
	var noFault inspectclient.NoFaultError
	require.ErrorAs(t, err, &noFault)

	client = dialStub(t, &stubServer{fault: true})
	report, err := client.LastFault(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uint64{0x30}, report.Addresses)
	require.Equal(t, int64(2000), report.CapturedAt.UnixNano())
}

func TestExecutableStreamsToWriter(t *testing.T) {
	client := dialStub(t, &stubServer{})

	var buf bytes.Buffer
	n, err := client.Executable(context.Background(), &buf)
	require.NoError(t, err)
	require.Equal(t, int64(11), n)
	require.Equal(t, "hello world", buf.String())
}

func TestDialRejectsUnsupportedScheme(t *testing.T) {
	_, err := inspectclient.Dial("ftp://example.com")
	require.ErrorContains(t, err, "unsupported scheme")
}

func TestEndToEnd(t *testing.T) {
	if err := stackwalk.Supported(); err != nil {
		t.Skip(err)
	}
	require.NoError(t, inspect.Init(context.Background(),
		inspect.WithListenAddr("127.0.0.1:0"),
		inspect.WithEnvironment("e2e")))
	defer inspect.Stop()

	th := stackwalk.NewThread(9301, "worker")
	th.SetContext(stackwalk.NewContext(0x77777, 0x1000, 0))
	require.NoError(t, stackwalk.RegisterThread(th))
	defer stackwalk.UnregisterThread(th)

	client, err := inspectclient.Dial(inspect.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	info, err := client.Info(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, info.Fingerprint)
	require.Equal(t, "e2e", info.Environment)

	threads, err := client.Threads(ctx)
	require.NoError(t, err)
	require.Contains(t, threads, inspectclient.ThreadInfo{ID: 9301, Name: "worker"})

	// The context address is not inside any registered module, so the walk
	// reports just the context frame.
	bt, err := client.Capture(ctx, 9301, 0, false)
	require.NoError(t, err)
	require.Equal(t, []uint64{0x77777}, bt.Addresses)

	_, err = client.LastFault(ctx)
	var noFault inspectclient.NoFaultError
	require.ErrorAs(t, err, &noFault)
}
