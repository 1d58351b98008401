package node

import (
	"context"
	"net"

	"rosgo/tcpros"
)

// bg is the context used for master RPCs issued from call sites that don't
// yet carry one of their own (registration at Advertise/Subscribe time
// has no natural caller deadline beyond master.WithRetry's own budget).
func bg() context.Context { return context.Background() }

func tcprosReadHeader(conn net.Conn) (map[string]string, error) {
	return tcpros.ReadHeader(conn)
}

// writeFrame and readFrame center every socket access through tcpros'
// framing helpers (spec.md §4.3/§4.5) so publication, subscription, and
// service code share one place that turns a transport failure into the
// §7 TransportError taxonomy.
func writeFrame(conn net.Conn, payload []byte) error {
	return tcpros.WriteMessage(conn, payload)
}

func readFrame(conn net.Conn) ([]byte, error) {
	return tcpros.ReadMessage(conn)
}
