package ws

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ringside/internal/arena"
	"ringside/internal/net/proto"
	"ringside/internal/telemetry"
)

// connectPair hosts on a loopback port-zero listener and dials it.
func connectPair(t *testing.T) (*Peer, *Peer) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hostCh := make(chan *Peer, 1)
	errCh := make(chan error, 1)
	go func() {
		peer, err := HostListener(ctx, listener, nil, nil)
		if err != nil {
			errCh <- err
			return
		}
		hostCh <- peer
	}()

	url := fmt.Sprintf("ws://%s", listener.Addr())
	guest, err := Dial(ctx, url, nil, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	select {
	case host := <-hostCh:
		t.Cleanup(func() {
			host.Close()
			guest.Close()
		})
		return host, guest
	case err := <-errCh:
		t.Fatalf("host: %v", err)
	case <-ctx.Done():
		t.Fatalf("handshake timed out")
	}
	return nil, nil
}

func TestPeersExchangeLockstepTraffic(t *testing.T) {
	host, guest := connectPair(t)

	received := make(chan proto.Message, 8)
	go guest.ReadLoop(func(msg proto.Message) { received <- msg })

	if err := host.SendInput(7, arena.InputLight); err != nil {
		t.Fatalf("send input: %v", err)
	}
	if err := host.SendResendRequest(41); err != nil {
		t.Fatalf("send resend request: %v", err)
	}

	want := []proto.Message{
		proto.NewInput(7, arena.InputLight),
		proto.NewResendRequest(41),
	}
	for i, expected := range want {
		select {
		case got := <-received:
			if got != expected {
				t.Fatalf("message %d = %#v, want %#v", i, got, expected)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("message %d never arrived", i)
		}
	}
}

func TestMalformedTrafficIsDroppedNotFatal(t *testing.T) {
	host, guest := connectPair(t)

	metrics := telemetry.NewMemoryMetrics()
	guest.metrics = metrics

	received := make(chan proto.Message, 8)
	go guest.ReadLoop(func(msg proto.Message) { received <- msg })

	// Raw garbage straight onto the socket, bypassing proto.Encode.
	host.writeMu.Lock()
	err := host.conn.WriteMessage(websocket.TextMessage, []byte("not a message"))
	host.writeMu.Unlock()
	if err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if err := host.SendInput(1, 0); err != nil {
		t.Fatalf("send input: %v", err)
	}

	select {
	case got := <-received:
		if got != proto.NewInput(1, 0) {
			t.Fatalf("expected the valid input to survive, got %#v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("valid message never arrived after the garbage")
	}
	if dropped := metrics.Get(MetricMessagesDropped); dropped != 1 {
		t.Fatalf("dropped counter = %d, want 1", dropped)
	}
}
