// Package inspectpb contains the wire types for the Inspector service.
//
// The types are maintained by hand in the shape that the legacy protoc-gen-go
// generator produced, so that the package builds without running protoc.
// Keep them in sync with inspect.proto, which remains the source of truth for
// the wire format.
package inspectpb

import (
	proto "github.com/golang/protobuf/proto"
)

type InfoRequest struct {
}

func (m *InfoRequest) Reset()         { *m = InfoRequest{} }
func (m *InfoRequest) String() string { return proto.CompactTextString(m) }
func (*InfoRequest) ProtoMessage()    {}

type InfoResponse struct {
	// Fingerprint is a random UUID minted when the inspector started. It
	// distinguishes restarts of the same binary.
	Fingerprint string `protobuf:"bytes,1,opt,name=fingerprint,proto3" json:"fingerprint,omitempty"`
	Pid         int64  `protobuf:"varint,2,opt,name=pid,proto3" json:"pid,omitempty"`
	// ExecutableHash is the HighwayHash-64 of the executable file, in hex.
	ExecutableHash     string `protobuf:"bytes,3,opt,name=executable_hash,json=executableHash,proto3" json:"executable_hash,omitempty"`
	StartTimeUnixNanos int64  `protobuf:"varint,4,opt,name=start_time_unix_nanos,json=startTimeUnixNanos,proto3" json:"start_time_unix_nanos,omitempty"`
	Environment        string `protobuf:"bytes,5,opt,name=environment,proto3" json:"environment,omitempty"`
	Hostname           string `protobuf:"bytes,6,opt,name=hostname,proto3" json:"hostname,omitempty"`
}

func (m *InfoResponse) Reset()         { *m = InfoResponse{} }
func (m *InfoResponse) String() string { return proto.CompactTextString(m) }
func (*InfoResponse) ProtoMessage()    {}

func (m *InfoResponse) GetFingerprint() string {
	if m != nil {
		return m.Fingerprint
	}
	return ""
}

func (m *InfoResponse) GetPid() int64 {
	if m != nil {
		return m.Pid
	}
	return 0
}

func (m *InfoResponse) GetExecutableHash() string {
	if m != nil {
		return m.ExecutableHash
	}
	return ""
}

func (m *InfoResponse) GetStartTimeUnixNanos() int64 {
	if m != nil {
		return m.StartTimeUnixNanos
	}
	return 0
}

func (m *InfoResponse) GetEnvironment() string {
	if m != nil {
		return m.Environment
	}
	return ""
}

func (m *InfoResponse) GetHostname() string {
	if m != nil {
		return m.Hostname
	}
	return ""
}

type ThreadsRequest struct {
}

func (m *ThreadsRequest) Reset()         { *m = ThreadsRequest{} }
func (m *ThreadsRequest) String() string { return proto.CompactTextString(m) }
func (*ThreadsRequest) ProtoMessage()    {}

type ThreadInfo struct {
	Id   uint64 `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
	Name string `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
}

func (m *ThreadInfo) Reset()         { *m = ThreadInfo{} }
func (m *ThreadInfo) String() string { return proto.CompactTextString(m) }
func (*ThreadInfo) ProtoMessage()    {}

func (m *ThreadInfo) GetId() uint64 {
	if m != nil {
		return m.Id
	}
	return 0
}

func (m *ThreadInfo) GetName() string {
	if m != nil {
		return m.Name
	}
	return ""
}

type ThreadsResponse struct {
	Threads []*ThreadInfo `protobuf:"bytes,1,rep,name=threads,proto3" json:"threads,omitempty"`
}

func (m *ThreadsResponse) Reset()         { *m = ThreadsResponse{} }
func (m *ThreadsResponse) String() string { return proto.CompactTextString(m) }
func (*ThreadsResponse) ProtoMessage()    {}

func (m *ThreadsResponse) GetThreads() []*ThreadInfo {
	if m != nil {
		return m.Threads
	}
	return nil
}

type CaptureRequest struct {
	ThreadId uint64 `protobuf:"varint,1,opt,name=thread_id,json=threadId,proto3" json:"thread_id,omitempty"`
	// MaxFrames bounds the walk; 0 means the server default.
	MaxFrames         uint64 `protobuf:"varint,2,opt,name=max_frames,json=maxFrames,proto3" json:"max_frames,omitempty"`
	WantStackPointers bool   `protobuf:"varint,3,opt,name=want_stack_pointers,json=wantStackPointers,proto3" json:"want_stack_pointers,omitempty"`
}

func (m *CaptureRequest) Reset()         { *m = CaptureRequest{} }
func (m *CaptureRequest) String() string { return proto.CompactTextString(m) }
func (*CaptureRequest) ProtoMessage()    {}

func (m *CaptureRequest) GetThreadId() uint64 {
	if m != nil {
		return m.ThreadId
	}
	return 0
}

func (m *CaptureRequest) GetMaxFrames() uint64 {
	if m != nil {
		return m.MaxFrames
	}
	return 0
}

func (m *CaptureRequest) GetWantStackPointers() bool {
	if m != nil {
		return m.WantStackPointers
	}
	return false
}

type CaptureResponse struct {
	Addresses []uint64 `protobuf:"varint,1,rep,packed,name=addresses,proto3" json:"addresses,omitempty"`
	// StackPointers is empty unless want_stack_pointers was set.
	StackPointers       []uint64 `protobuf:"varint,2,rep,packed,name=stack_pointers,json=stackPointers,proto3" json:"stack_pointers,omitempty"`
	StackHash           uint64   `protobuf:"varint,3,opt,name=stack_hash,json=stackHash,proto3" json:"stack_hash,omitempty"`
	CapturedAtUnixNanos int64    `protobuf:"varint,4,opt,name=captured_at_unix_nanos,json=capturedAtUnixNanos,proto3" json:"captured_at_unix_nanos,omitempty"`
}

func (m *CaptureResponse) Reset()         { *m = CaptureResponse{} }
func (m *CaptureResponse) String() string { return proto.CompactTextString(m) }
func (*CaptureResponse) ProtoMessage()    {}

func (m *CaptureResponse) GetAddresses() []uint64 {
	if m != nil {
		return m.Addresses
	}
	return nil
}

func (m *CaptureResponse) GetStackPointers() []uint64 {
	if m != nil {
		return m.StackPointers
	}
	return nil
}

func (m *CaptureResponse) GetStackHash() uint64 {
	if m != nil {
		return m.StackHash
	}
	return 0
}

func (m *CaptureResponse) GetCapturedAtUnixNanos() int64 {
	if m != nil {
		return m.CapturedAtUnixNanos
	}
	return 0
}

type ResolveRequest struct {
	Address    uint64 `protobuf:"varint,1,opt,name=address,proto3" json:"address,omitempty"`
	SkipNative bool   `protobuf:"varint,2,opt,name=skip_native,json=skipNative,proto3" json:"skip_native,omitempty"`
}

func (m *ResolveRequest) Reset()         { *m = ResolveRequest{} }
func (m *ResolveRequest) String() string { return proto.CompactTextString(m) }
func (*ResolveRequest) ProtoMessage()    {}

func (m *ResolveRequest) GetAddress() uint64 {
	if m != nil {
		return m.Address
	}
	return 0
}

func (m *ResolveRequest) GetSkipNative() bool {
	if m != nil {
		return m.SkipNative
	}
	return false
}

type FuncMeta struct {
	Name  string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Entry uint64 `protobuf:"varint,2,opt,name=entry,proto3" json:"entry,omitempty"`
	End   uint64 `protobuf:"varint,3,opt,name=end,proto3" json:"end,omitempty"`
}

func (m *FuncMeta) Reset()         { *m = FuncMeta{} }
func (m *FuncMeta) String() string { return proto.CompactTextString(m) }
func (*FuncMeta) ProtoMessage()    {}

func (m *FuncMeta) GetName() string {
	if m != nil {
		return m.Name
	}
	return ""
}

func (m *FuncMeta) GetEntry() uint64 {
	if m != nil {
		return m.Entry
	}
	return 0
}

func (m *FuncMeta) GetEnd() uint64 {
	if m != nil {
		return m.End
	}
	return 0
}

type FrameInfo struct {
	Function string `protobuf:"bytes,1,opt,name=function,proto3" json:"function,omitempty"`
	File     string `protobuf:"bytes,2,opt,name=file,proto3" json:"file,omitempty"`
	// Line is -1 when unknown.
	Line int64 `protobuf:"varint,3,opt,name=line,proto3" json:"line,omitempty"`
	// Metadata is only set on the outermost frame of an inline chain.
	Metadata   *FuncMeta `protobuf:"bytes,4,opt,name=metadata,proto3" json:"metadata,omitempty"`
	FromNative bool      `protobuf:"varint,5,opt,name=from_native,json=fromNative,proto3" json:"from_native,omitempty"`
	Inlined    bool      `protobuf:"varint,6,opt,name=inlined,proto3" json:"inlined,omitempty"`
	Address    uint64    `protobuf:"varint,7,opt,name=address,proto3" json:"address,omitempty"`
}

func (m *FrameInfo) Reset()         { *m = FrameInfo{} }
func (m *FrameInfo) String() string { return proto.CompactTextString(m) }
func (*FrameInfo) ProtoMessage()    {}

func (m *FrameInfo) GetFunction() string {
	if m != nil {
		return m.Function
	}
	return ""
}

func (m *FrameInfo) GetFile() string {
	if m != nil {
		return m.File
	}
	return ""
}

func (m *FrameInfo) GetLine() int64 {
	if m != nil {
		return m.Line
	}
	return 0
}

func (m *FrameInfo) GetMetadata() *FuncMeta {
	if m != nil {
		return m.Metadata
	}
	return nil
}

func (m *FrameInfo) GetFromNative() bool {
	if m != nil {
		return m.FromNative
	}
	return false
}

func (m *FrameInfo) GetInlined() bool {
	if m != nil {
		return m.Inlined
	}
	return false
}

func (m *FrameInfo) GetAddress() uint64 {
	if m != nil {
		return m.Address
	}
	return 0
}

type ResolveResponse struct {
	Frames []*FrameInfo `protobuf:"bytes,1,rep,name=frames,proto3" json:"frames,omitempty"`
}

func (m *ResolveResponse) Reset()         { *m = ResolveResponse{} }
func (m *ResolveResponse) String() string { return proto.CompactTextString(m) }
func (*ResolveResponse) ProtoMessage()    {}

func (m *ResolveResponse) GetFrames() []*FrameInfo {
	if m != nil {
		return m.Frames
	}
	return nil
}

type LastFaultRequest struct {
}

func (m *LastFaultRequest) Reset()         { *m = LastFaultRequest{} }
func (m *LastFaultRequest) String() string { return proto.CompactTextString(m) }
func (*LastFaultRequest) ProtoMessage()    {}

type LastFaultResponse struct {
	Present             bool     `protobuf:"varint,1,opt,name=present,proto3" json:"present,omitempty"`
	Addresses           []uint64 `protobuf:"varint,2,rep,packed,name=addresses,proto3" json:"addresses,omitempty"`
	CapturedAtUnixNanos int64    `protobuf:"varint,3,opt,name=captured_at_unix_nanos,json=capturedAtUnixNanos,proto3" json:"captured_at_unix_nanos,omitempty"`
}

func (m *LastFaultResponse) Reset()         { *m = LastFaultResponse{} }
func (m *LastFaultResponse) String() string { return proto.CompactTextString(m) }
func (*LastFaultResponse) ProtoMessage()    {}

func (m *LastFaultResponse) GetPresent() bool {
	if m != nil {
		return m.Present
	}
	return false
}

func (m *LastFaultResponse) GetAddresses() []uint64 {
	if m != nil {
		return m.Addresses
	}
	return nil
}

func (m *LastFaultResponse) GetCapturedAtUnixNanos() int64 {
	if m != nil {
		return m.CapturedAtUnixNanos
	}
	return 0
}

type ExecutableRequest struct {
}

func (m *ExecutableRequest) Reset()         { *m = ExecutableRequest{} }
func (m *ExecutableRequest) String() string { return proto.CompactTextString(m) }
func (*ExecutableRequest) ProtoMessage()    {}

type Chunk struct {
	Data []byte `protobuf:"bytes,1,opt,name=data,proto3" json:"data,omitempty"`
}

func (m *Chunk) Reset()         { *m = Chunk{} }
func (m *Chunk) String() string { return proto.CompactTextString(m) }
func (*Chunk) ProtoMessage()    {}

func (m *Chunk) GetData() []byte {
	if m != nil {
		return m.Data
	}
	return nil
}

func init() {
	proto.RegisterType((*InfoRequest)(nil), "spindle.inspect.InfoRequest")
	proto.RegisterType((*InfoResponse)(nil), "spindle.inspect.InfoResponse")
	proto.RegisterType((*ThreadsRequest)(nil), "spindle.inspect.ThreadsRequest")
	proto.RegisterType((*ThreadInfo)(nil), "spindle.inspect.ThreadInfo")
	proto.RegisterType((*ThreadsResponse)(nil), "spindle.inspect.ThreadsResponse")
	proto.RegisterType((*CaptureRequest)(nil), "spindle.inspect.CaptureRequest")
	proto.RegisterType((*CaptureResponse)(nil), "spindle.inspect.CaptureResponse")
	proto.RegisterType((*ResolveRequest)(nil), "spindle.inspect.ResolveRequest")
	proto.RegisterType((*FuncMeta)(nil), "spindle.inspect.FuncMeta")
	proto.RegisterType((*FrameInfo)(nil), "spindle.inspect.FrameInfo")
	proto.RegisterType((*ResolveResponse)(nil), "spindle.inspect.ResolveResponse")
	proto.RegisterType((*LastFaultRequest)(nil), "spindle.inspect.LastFaultRequest")
	proto.RegisterType((*LastFaultResponse)(nil), "spindle.inspect.LastFaultResponse")
	proto.RegisterType((*ExecutableRequest)(nil), "spindle.inspect.ExecutableRequest")
	proto.RegisterType((*Chunk)(nil), "spindle.inspect.Chunk")
}
