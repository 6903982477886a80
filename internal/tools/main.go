//go:build tools
// +build tools

// This package and module exists to pin the protoc-gen-go-grpc version
// whose output layout internal/inspectpb/inspect_grpc.pb.go follows. The
// message types in inspect.pb.go are maintained by hand and are not
// regenerated.

package tools

import (
	// Keep this around so that go mod tidy doesn't remove it from go.mod.
	_ "google.golang.org/grpc/cmd/protoc-gen-go-grpc"
)
