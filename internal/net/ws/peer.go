// Package ws is the peer messaging channel: one side hosts a websocket
// endpoint, the other dials it, and both exchange proto messages over the
// single resulting connection. The channel only carries bytes; all game
// semantics live behind the proto boundary.
package ws

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ringside/internal/arena"
	"ringside/internal/net/proto"
	"ringside/internal/telemetry"
)

const (
	writeWait       = 10 * time.Second
	readBufferSize  = 1024
	writeBufferSize = 1024
)

// Metric keys recorded by the channel.
const (
	MetricMessagesSent     = "ws_messages_sent"
	MetricMessagesReceived = "ws_messages_received"
	MetricMessagesDropped  = "ws_messages_dropped"
)

// Peer is one live connection to the other player. Writes are serialized by
// a mutex; reads happen on the single ReadLoop goroutine.
type Peer struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	logger  telemetry.Logger
	metrics telemetry.Metrics
}

func newPeer(conn *websocket.Conn, logger telemetry.Logger, metrics telemetry.Metrics) *Peer {
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	return &Peer{conn: conn, logger: logger, metrics: metrics}
}

// Host listens on addr and accepts exactly one peer connection, then stops
// accepting. The listener is torn down once the match connection exists.
func Host(ctx context.Context, addr string, logger telemetry.Logger, metrics telemetry.Metrics) (*Peer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return HostListener(ctx, listener, logger, metrics)
}

// HostListener accepts one peer connection on an existing listener. Tests
// use it with a port-zero listener.
func HostListener(ctx context.Context, listener net.Listener, logger telemetry.Logger, metrics telemetry.Metrics) (*Peer, error) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  readBufferSize,
		WriteBufferSize: writeBufferSize,
		CheckOrigin:     func(*http.Request) bool { return true },
	}

	accepted := make(chan *websocket.Conn, 1)
	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		select {
		case accepted <- conn:
		default:
			// A second challenger while a match is live is turned away.
			message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "match in progress")
			conn.WriteMessage(websocket.CloseMessage, message)
			conn.Close()
		}
	})}

	go server.Serve(listener)

	select {
	case conn := <-accepted:
		go server.Close()
		return newPeer(conn, logger, metrics), nil
	case <-ctx.Done():
		server.Close()
		return nil, fmt.Errorf("waiting for peer on %s: %w", listener.Addr(), ctx.Err())
	}
}

// Dial connects to a hosting peer.
func Dial(ctx context.Context, url string, logger telemetry.Logger, metrics telemetry.Metrics) (*Peer, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial peer %s: %w", url, err)
	}
	return newPeer(conn, logger, metrics), nil
}

// Send encodes and transmits one message.
func (p *Peer) Send(msg proto.Message) error {
	data, err := proto.Encode(msg)
	if err != nil {
		return err
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write %s message: %w", msg.MessageType(), err)
	}
	p.metrics.Add(MetricMessagesSent, 1)
	return nil
}

// SendInput implements lockstep.Sender.
func (p *Peer) SendInput(frame uint32, mask arena.InputMask) error {
	return p.Send(proto.NewInput(frame, mask))
}

// SendResendRequest implements lockstep.Sender.
func (p *Peer) SendResendRequest(frame uint32) error {
	return p.Send(proto.NewResendRequest(frame))
}

// ReadLoop decodes inbound payloads and hands them to deliver until the
// connection fails. Malformed messages are counted and dropped, never fatal.
func (p *Peer) ReadLoop(deliver func(proto.Message)) error {
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("peer connection closed: %w", err)
		}
		msg, err := proto.Decode(data)
		if err != nil {
			p.metrics.Add(MetricMessagesDropped, 1)
			p.logger.Printf("ws: dropping malformed message: %v", err)
			continue
		}
		p.metrics.Add(MetricMessagesReceived, 1)
		deliver(msg)
	}
}

// Close tears the connection down.
func (p *Peer) Close() error {
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	p.writeMu.Lock()
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	p.conn.WriteMessage(websocket.CloseMessage, message)
	p.writeMu.Unlock()
	return p.conn.Close()
}
