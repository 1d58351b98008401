package node

import (
	"context"
	"net"
	"strings"
	"sync"

	"go.uber.org/zap"

	"rosgo/middleware"
	"rosgo/tcpros"
	"rosgo/wire"
)

// ServiceServer is the node-owned handle returned by Node.AdvertiseService
// (spec.md §3 ServiceServer, §4.8 Service server). Per accepted connection:
// header exchange, then loop iff the client asked for persistent=1, else
// handle exactly one request and close. The request/response pair is
// dispatched by decoding into schema-typed Req/Res values rather than
// reflecting into generic arguments.
type ServiceServer struct {
	node    *Node
	name    string
	svcMD5  string
	reqNew  func() wire.Message
	resNew  func() wire.Message
	handler func(req wire.Message) (wire.Message, error)
	logger  *zap.Logger

	mu    sync.Mutex
	chain middleware.Middleware
}

func newServiceServer(n *Node, name string, reqFactory, resFactory func() wire.Message, svcMD5 string, handler func(req wire.Message) (wire.Message, error)) *ServiceServer {
	logger := xlogComponent(n.logger, "service")
	return &ServiceServer{
		node:    n,
		name:    name,
		svcMD5:  svcMD5,
		reqNew:  reqFactory,
		resNew:  resFactory,
		handler: handler,
		logger:  logger,
		chain:   middleware.Logging(logger, name),
	}
}

// SetRateLimit caps this service to r requests/sec with burst capacity,
// layering middleware.RateLimit under the server's existing logging
// middleware (spec.md §6 DOMAIN STACK: "a service-call rate limiter
// available to node.ServiceServer via middleware.RateLimit").
func (s *ServiceServer) SetRateLimit(r float64, burst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain = middleware.Chain(middleware.Logging(s.logger, s.name), middleware.RateLimit(r, burst))
}

// serveConn completes the server-side header negotiation for one accepted
// connection, then serves its request(s) (spec.md §4.5/§4.8). The
// connection is always closed on return, whether negotiation fails, a
// one-shot request completes, or a persistent loop's request stream ends —
// there is no path that leaves this socket open after serveConn returns.
func (s *ServiceServer) serveConn(conn net.Conn, reqHeader map[string]string) {
	defer conn.Close()

	if err := tcpros.CheckMD5(reqHeader["md5sum"], s.svcMD5); err != nil {
		tcpros.WriteHeader(conn, tcpros.ErrorHeader(err.Error()))
		return
	}

	sample := s.reqNew()
	reqType := sample.MsgType()
	resType := s.resNew().MsgType()
	svcType := strings.TrimSuffix(reqType, "Req")
	reply := tcpros.ServiceServerReplyHeader(s.node.callerID(), svcType, s.svcMD5, reqType, resType)
	if err := tcpros.WriteHeader(conn, reply); err != nil {
		return
	}

	persistent := tcpros.IsPersistent(reqHeader)
	for {
		if err := s.handleOneRequest(conn); err != nil {
			s.logger.Debug("service connection ended", zap.String("service", s.name), zap.Error(err))
			return
		}
		if !persistent {
			return
		}
	}
}

func (s *ServiceServer) handleOneRequest(conn net.Conn) error {
	payload, err := readFrame(conn)
	if err != nil {
		return err
	}
	req, err := wire.Decode(s.reqNew, payload)
	if err != nil {
		return tcpros.WriteServiceResponse(conn, false, []byte(err.Error()))
	}

	s.mu.Lock()
	chain := s.chain
	s.mu.Unlock()

	var res wire.Message
	handlerErr := chain(func(ctx context.Context) error {
		var err error
		res, err = s.handler(req)
		return err
	})(context.Background())
	if handlerErr != nil {
		return tcpros.WriteServiceResponse(conn, false, []byte(handlerErr.Error()))
	}

	resPayload, err := wire.Encode(res)
	if err != nil {
		return tcpros.WriteServiceResponse(conn, false, []byte(err.Error()))
	}
	return tcpros.WriteServiceResponse(conn, true, resPayload)
}
