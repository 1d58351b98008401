package node

import (
	"net"
	"sync"

	"go.uber.org/zap"
)

// peerSink is one subscriber's outbound message queue: a bounded ring of
// pending serialized payloads drained by a dedicated writer goroutine,
// drop-oldest on overflow (spec.md §4.6).
type peerSink struct {
	peerID string
	conn   net.Conn
	logger *zap.Logger

	mu     sync.Mutex
	buf    [][]byte
	cap    int
	closed bool
	notify chan struct{}
	stop   chan struct{} // closed by close() to wake a writer blocked waiting for work
	done   chan struct{} // closed by writeLoop on exit, so close() can wait for it
}

func newPeerSink(peerID string, conn net.Conn, capacity int, logger *zap.Logger) *peerSink {
	if capacity <= 0 {
		capacity = 1
	}
	s := &peerSink{
		peerID: peerID,
		conn:   conn,
		logger: logger,
		cap:    capacity,
		notify: make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.writeLoop()
	return s
}

// enqueue admits payload, dropping the oldest queued message first if the
// sink is already at capacity (spec.md §4.6 drop-oldest policy). Never
// blocks the caller.
func (s *peerSink) enqueue(payload []byte) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if len(s.buf) >= s.cap {
		s.buf = s.buf[1:]
	}
	s.buf = append(s.buf, payload)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *peerSink) writeLoop() {
	defer close(s.done)
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		if len(s.buf) == 0 {
			s.mu.Unlock()
			select {
			case <-s.notify:
				continue
			case <-s.stop:
				return
			}
		}
		payload := s.buf[0]
		s.buf = s.buf[1:]
		s.mu.Unlock()

		if err := writeFrame(s.conn, payload); err != nil {
			s.logger.Warn("peer write failed, tearing down peer", zap.String("peer", s.peerID), zap.Error(err))
			s.closeLocked()
			return
		}
	}
}

func (s *peerSink) closeLocked() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	close(s.stop)
	s.conn.Close()
}

// close tears down this peer only — a write error on one sink never
// affects other subscribers of the same publication (spec.md §4.6/§7).
func (s *peerSink) close() {
	s.closeLocked()
	<-s.done
}
