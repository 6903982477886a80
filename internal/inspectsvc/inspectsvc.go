// Package inspectsvc implements the Inspector gRPC service on top of the
// stackwalk package.
package inspectsvc

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/highwayhash"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/spindle-vm/stackwalk"
	"github.com/spindle-vm/stackwalk/internal/inspectpb"
)

const (
	// defaultCaptureFrames is the walk bound applied when a CaptureRequest
	// does not set one.
	defaultCaptureFrames = 512
	// maxCaptureFrames caps the walk bound a client may request.
	maxCaptureFrames = 64 << 10
)

// Server implements the inspectpb.InspectorServer interface.
type Server struct {
	fingerprint uuid.UUID
	environment string
	log         *logrus.Entry
	hash        binaryHashOnce

	inspectpb.UnimplementedInspectorServer
}

var _ inspectpb.InspectorServer = (*Server)(nil)

type binaryHashOnce struct {
	sync.Once
	hash string
	err  error
}

// NewServer constructs a new Server object.
func NewServer(fingerprint uuid.UUID, environment string) *Server {
	return &Server{
		fingerprint: fingerprint,
		environment: environment,
		log:         logrus.WithField("component", "inspectsvc"),
	}
}

// Info implements inspectpb.InspectorServer.
func (s *Server) Info(ctx context.Context, req *inspectpb.InfoRequest) (*inspectpb.InfoResponse, error) {
	hash, err := s.getBinaryHash()
	if err != nil {
		return nil, fmt.Errorf("failed to get binary hash: %w", err)
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = ""
	}
	return &inspectpb.InfoResponse{
		Fingerprint:        s.fingerprint.String(),
		Pid:                int64(os.Getpid()),
		ExecutableHash:     hash,
		StartTimeUnixNanos: getStartTime().UnixNano(),
		Environment:        s.environment,
		Hostname:           hostname,
	}, nil
}

// Threads implements inspectpb.InspectorServer.
func (s *Server) Threads(ctx context.Context, req *inspectpb.ThreadsRequest) (*inspectpb.ThreadsResponse, error) {
	threads := stackwalk.Threads()
	resp := &inspectpb.ThreadsResponse{
		Threads: make([]*inspectpb.ThreadInfo, 0, len(threads)),
	}
	for _, t := range threads {
		resp.Threads = append(resp.Threads, &inspectpb.ThreadInfo{
			Id:   t.ID(),
			Name: t.Name(),
		})
	}
	return resp, nil
}

// Capture implements inspectpb.InspectorServer.
func (s *Server) Capture(ctx context.Context, req *inspectpb.CaptureRequest) (*inspectpb.CaptureResponse, error) {
	t, ok := stackwalk.ThreadByID(req.ThreadId)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "thread %d is not registered", req.ThreadId)
	}
	maxFrames := defaultCaptureFrames
	if req.MaxFrames > 0 {
		if req.MaxFrames > maxCaptureFrames {
			maxFrames = maxCaptureFrames
		} else {
			maxFrames = int(req.MaxFrames)
		}
	}
	start := time.Now()
	bt := stackwalk.Capture(t, maxFrames, req.WantStackPointers)
	s.log.WithFields(logrus.Fields{
		"thread": req.ThreadId,
		"frames": len(bt.Addrs),
		"took":   time.Since(start),
	}).Debug("captured backtrace")
	resp := &inspectpb.CaptureResponse{
		Addresses:           addrsToWire(bt.Addrs),
		StackHash:           bt.Hash(),
		CapturedAtUnixNanos: start.UnixNano(),
	}
	if req.WantStackPointers {
		resp.StackPointers = addrsToWire(bt.SPs)
	}
	return resp, nil
}

// Resolve implements inspectpb.InspectorServer.
func (s *Server) Resolve(ctx context.Context, req *inspectpb.ResolveRequest) (*inspectpb.ResolveResponse, error) {
	frames := stackwalk.Resolve(uintptr(req.Address), req.SkipNative)
	resp := &inspectpb.ResolveResponse{
		Frames: make([]*inspectpb.FrameInfo, 0, len(frames)),
	}
	for i := range frames {
		resp.Frames = append(resp.Frames, frameToWire(&frames[i]))
	}
	return resp, nil
}

// LastFault implements inspectpb.InspectorServer.
func (s *Server) LastFault(ctx context.Context, req *inspectpb.LastFaultRequest) (*inspectpb.LastFaultResponse, error) {
	snap, ok := stackwalk.LastFault()
	if !ok {
		return &inspectpb.LastFaultResponse{}, nil
	}
	return &inspectpb.LastFaultResponse{
		Present:             true,
		Addresses:           addrsToWire(snap.Addrs),
		CapturedAtUnixNanos: snap.CapturedAt.UnixNano(),
	}, nil
}

// Executable implements inspectpb.InspectorServer.
func (s *Server) Executable(req *inspectpb.ExecutableRequest, stream inspectpb.Inspector_ExecutableServer) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	exeFile, err := os.Open(exe)
	if err != nil {
		return fmt.Errorf("failed to open executable at %s: %w", exe, err)
	}
	defer exeFile.Close()
	const chunkSize = 128 << 10
	chunk := inspectpb.Chunk{
		Data: make([]byte, chunkSize),
	}
	for {
		n, err := exeFile.Read(chunk.Data[:chunkSize])
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read executable from %s: %w", exe, err)
		}
		chunk.Data = chunk.Data[:n]
		if err := stream.Send(&chunk); err != nil {
			return fmt.Errorf("failed to send executable: %w", err)
		}
	}
	return nil
}

func frameToWire(f *stackwalk.Frame) *inspectpb.FrameInfo {
	fi := &inspectpb.FrameInfo{
		Function:   f.Func,
		File:       f.File,
		Line:       int64(f.Line),
		FromNative: f.FromNative,
		Inlined:    f.Inlined,
		Address:    uint64(f.Addr),
	}
	if f.Meta != nil {
		fi.Metadata = &inspectpb.FuncMeta{
			Name:  f.Meta.Name,
			Entry: uint64(f.Meta.Lo),
			End:   uint64(f.Meta.Hi),
		}
	}
	return fi
}

func addrsToWire(addrs []uintptr) []uint64 {
	if len(addrs) == 0 {
		return nil
	}
	out := make([]uint64, len(addrs))
	for i, a := range addrs {
		out[i] = uint64(a)
	}
	return out
}

func (s *Server) getBinaryHash() (string, error) {
	s.hash.Once.Do(func() {
		s.hash.hash, s.hash.err = doHash()
	})
	return s.hash.hash, s.hash.err
}

var hashKey = [32]byte{}

func doHash() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exeFile, err := os.Open(exe)
	if err != nil {
		return "", fmt.Errorf("failed to open executable file at %s: %w", exe, err)
	}
	defer exeFile.Close()
	hasher, err := highwayhash.New64(hashKey[:])
	if err != nil {
		return "", fmt.Errorf("failed to create hasher: %w", err)
	}
	if _, err := io.Copy(hasher, bufio.NewReader(exeFile)); err != nil {
		return "", fmt.Errorf("failed to hash executable: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
