package node

import (
	"net"
	"sync"

	"go.uber.org/zap"

	"rosgo/tcpros"
)

// peerSource is one publisher connection on the subscriber side: dial,
// negotiate the header, then read framed messages into the subscription's
// shared bounded queue until the peer closes or the subscription tears
// this connection down (spec.md §4.7).
type peerSource struct {
	uri    string
	sub    *Subscription
	logger *zap.Logger

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

func dialPeerSource(sub *Subscription, uri string) (*peerSource, error) {
	conn, err := net.Dial("tcp", uri)
	if err != nil {
		return nil, &tcpros.ConnectFailedError{Reason: err.Error()}
	}

	reqHeader := tcpros.SubscriberHeader(sub.node.callerID(), sub.topic, sub.msgType, sub.md5sum, true)
	if err := tcpros.WriteHeader(conn, reqHeader); err != nil {
		conn.Close()
		return nil, err
	}
	replyHeader, err := tcpros.ReadHeader(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if reason, isErr := replyHeader["error"]; isErr {
		conn.Close()
		return nil, &tcpros.HeaderMismatchError{Reason: reason}
	}
	if err := tcpros.CheckMD5(sub.md5sum, replyHeader["md5sum"]); err != nil {
		conn.Close()
		return nil, err
	}

	p := &peerSource{
		uri:    uri,
		sub:    sub,
		logger: xlogComponent(sub.node.logger, "subscriber"),
		conn:   conn,
	}
	go p.readLoop()
	return p, nil
}

func (p *peerSource) readLoop() {
	for {
		payload, err := readFrame(p.conn)
		if err != nil {
			p.logger.Debug("publisher connection ended", zap.String("uri", p.uri), zap.Error(err))
			p.sub.peerDisconnected(p.uri)
			return
		}
		p.sub.deliver(payload)
	}
}

func (p *peerSource) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	p.conn.Close()
}
