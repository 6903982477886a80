package serverdial

import (
	"fmt"
	"net"
)

// inboundHeader is written on every accepted connection before any gRPC
// traffic so the collector can tell process-dialed connections apart from
// plain clients.
var inboundHeader = [8]byte{'S', 'P', 'I', 'N', 'D', 'L', 'E', 0}

func writeHeader(conn net.Conn) error {
	toWrite := inboundHeader[:]
	for len(toWrite) > 0 {
		n, err := conn.Write(toWrite)
		if err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		toWrite = toWrite[n:]
	}
	return nil
}
