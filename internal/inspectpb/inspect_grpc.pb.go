// Hand-maintained gRPC bindings for the Inspector service, following the
// layout of protoc-gen-go-grpc output. Keep in sync with inspect.proto.

package inspectpb

import (
	context "context"

	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
)

const (
	Inspector_Info_FullMethodName       = "/spindle.inspect.Inspector/Info"
	Inspector_Threads_FullMethodName    = "/spindle.inspect.Inspector/Threads"
	Inspector_Capture_FullMethodName    = "/spindle.inspect.Inspector/Capture"
	Inspector_Resolve_FullMethodName    = "/spindle.inspect.Inspector/Resolve"
	Inspector_LastFault_FullMethodName  = "/spindle.inspect.Inspector/LastFault"
	Inspector_Executable_FullMethodName = "/spindle.inspect.Inspector/Executable"
)

// InspectorClient is the client API for Inspector service.
type InspectorClient interface {
	// Info identifies the process behind the connection.
	Info(ctx context.Context, in *InfoRequest, opts ...grpc.CallOption) (*InfoResponse, error)
	// Threads lists the runtime threads registered for unwinding.
	Threads(ctx context.Context, in *ThreadsRequest, opts ...grpc.CallOption) (*ThreadsResponse, error)
	// Capture walks the stack of one registered thread from its last
	// recorded context.
	Capture(ctx context.Context, in *CaptureRequest, opts ...grpc.CallOption) (*CaptureResponse, error)
	// Resolve maps one return address to source-level frames, including
	// frames inlined at that address.
	Resolve(ctx context.Context, in *ResolveRequest, opts ...grpc.CallOption) (*ResolveResponse, error)
	// LastFault returns the backtrace stashed by the most recent fault
	// handler run, if any.
	LastFault(ctx context.Context, in *LastFaultRequest, opts ...grpc.CallOption) (*LastFaultResponse, error)
	// Executable streams the process's own binary so the caller can do
	// offline symbolication against the exact image.
	Executable(ctx context.Context, in *ExecutableRequest, opts ...grpc.CallOption) (Inspector_ExecutableClient, error)
}

type inspectorClient struct {
	cc grpc.ClientConnInterface
}

func NewInspectorClient(cc grpc.ClientConnInterface) InspectorClient {
	return &inspectorClient{cc}
}

func (c *inspectorClient) Info(ctx context.Context, in *InfoRequest, opts ...grpc.CallOption) (*InfoResponse, error) {
	out := new(InfoResponse)
	err := c.cc.Invoke(ctx, Inspector_Info_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inspectorClient) Threads(ctx context.Context, in *ThreadsRequest, opts ...grpc.CallOption) (*ThreadsResponse, error) {
	out := new(ThreadsResponse)
	err := c.cc.Invoke(ctx, Inspector_Threads_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inspectorClient) Capture(ctx context.Context, in *CaptureRequest, opts ...grpc.CallOption) (*CaptureResponse, error) {
	out := new(CaptureResponse)
	err := c.cc.Invoke(ctx, Inspector_Capture_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inspectorClient) Resolve(ctx context.Context, in *ResolveRequest, opts ...grpc.CallOption) (*ResolveResponse, error) {
	out := new(ResolveResponse)
	err := c.cc.Invoke(ctx, Inspector_Resolve_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inspectorClient) LastFault(ctx context.Context, in *LastFaultRequest, opts ...grpc.CallOption) (*LastFaultResponse, error) {
	out := new(LastFaultResponse)
	err := c.cc.Invoke(ctx, Inspector_LastFault_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inspectorClient) Executable(ctx context.Context, in *ExecutableRequest, opts ...grpc.CallOption) (Inspector_ExecutableClient, error) {
	stream, err := c.cc.NewStream(ctx, &Inspector_ServiceDesc.Streams[0], Inspector_Executable_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &inspectorExecutableClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type Inspector_ExecutableClient interface {
	Recv() (*Chunk, error)
	grpc.ClientStream
}

type inspectorExecutableClient struct {
	grpc.ClientStream
}

func (x *inspectorExecutableClient) Recv() (*Chunk, error) {
	m := new(Chunk)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// InspectorServer is the server API for Inspector service.
// All implementations must embed UnimplementedInspectorServer
// for forward compatibility.
type InspectorServer interface {
	// Info identifies the process behind the connection.
	Info(context.Context, *InfoRequest) (*InfoResponse, error)
	// Threads lists the runtime threads registered for unwinding.
	Threads(context.Context, *ThreadsRequest) (*ThreadsResponse, error)
	// Capture walks the stack of one registered thread from its last
	// recorded context.
	Capture(context.Context, *CaptureRequest) (*CaptureResponse, error)
	// Resolve maps one return address to source-level frames, including
	// frames inlined at that address.
	Resolve(context.Context, *ResolveRequest) (*ResolveResponse, error)
	// LastFault returns the backtrace stashed by the most recent fault
	// handler run, if any.
	LastFault(context.Context, *LastFaultRequest) (*LastFaultResponse, error)
	// Executable streams the process's own binary so the caller can do
	// offline symbolication against the exact image.
	Executable(*ExecutableRequest, Inspector_ExecutableServer) error
	mustEmbedUnimplementedInspectorServer()
}

// UnimplementedInspectorServer must be embedded to have forward compatible
// implementations.
type UnimplementedInspectorServer struct {
}

func (UnimplementedInspectorServer) Info(context.Context, *InfoRequest) (*InfoResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Info not implemented")
}
func (UnimplementedInspectorServer) Threads(context.Context, *ThreadsRequest) (*ThreadsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Threads not implemented")
}
func (UnimplementedInspectorServer) Capture(context.Context, *CaptureRequest) (*CaptureResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Capture not implemented")
}
func (UnimplementedInspectorServer) Resolve(context.Context, *ResolveRequest) (*ResolveResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Resolve not implemented")
}
func (UnimplementedInspectorServer) LastFault(context.Context, *LastFaultRequest) (*LastFaultResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method LastFault not implemented")
}
func (UnimplementedInspectorServer) Executable(*ExecutableRequest, Inspector_ExecutableServer) error {
	return status.Errorf(codes.Unimplemented, "method Executable not implemented")
}
func (UnimplementedInspectorServer) mustEmbedUnimplementedInspectorServer() {}

// UnsafeInspectorServer may be embedded to opt out of forward compatibility.
// Use of this interface is not recommended, as added methods to
// InspectorServer will result in compilation errors.
type UnsafeInspectorServer interface {
	mustEmbedUnimplementedInspectorServer()
}

func RegisterInspectorServer(s grpc.ServiceRegistrar, srv InspectorServer) {
	s.RegisterService(&Inspector_ServiceDesc, srv)
}

func _Inspector_Info_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(InfoRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InspectorServer).Info(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Inspector_Info_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InspectorServer).Info(ctx, req.(*InfoRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Inspector_Threads_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ThreadsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InspectorServer).Threads(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Inspector_Threads_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InspectorServer).Threads(ctx, req.(*ThreadsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Inspector_Capture_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CaptureRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InspectorServer).Capture(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Inspector_Capture_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InspectorServer).Capture(ctx, req.(*CaptureRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Inspector_Resolve_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ResolveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InspectorServer).Resolve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Inspector_Resolve_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InspectorServer).Resolve(ctx, req.(*ResolveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Inspector_LastFault_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(LastFaultRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InspectorServer).LastFault(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Inspector_LastFault_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InspectorServer).LastFault(ctx, req.(*LastFaultRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Inspector_Executable_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(ExecutableRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(InspectorServer).Executable(m, &inspectorExecutableServer{stream})
}

type Inspector_ExecutableServer interface {
	Send(*Chunk) error
	grpc.ServerStream
}

type inspectorExecutableServer struct {
	grpc.ServerStream
}

func (x *inspectorExecutableServer) Send(m *Chunk) error {
	return x.ServerStream.SendMsg(m)
}

// Inspector_ServiceDesc is the grpc.ServiceDesc for Inspector service.
// It's only intended for direct use with grpc.RegisterService,
// and not to be introspected or modified (even as a copy).
var Inspector_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "spindle.inspect.Inspector",
	HandlerType: (*InspectorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Info",
			Handler:    _Inspector_Info_Handler,
		},
		{
			MethodName: "Threads",
			Handler:    _Inspector_Threads_Handler,
		},
		{
			MethodName: "Capture",
			Handler:    _Inspector_Capture_Handler,
		},
		{
			MethodName: "Resolve",
			Handler:    _Inspector_Resolve_Handler,
		},
		{
			MethodName: "LastFault",
			Handler:    _Inspector_LastFault_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Executable",
			Handler:       _Inspector_Executable_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "internal/inspectpb/inspect.proto",
}
