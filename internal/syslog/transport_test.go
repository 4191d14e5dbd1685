package syslog

import (
	"context"
	"crypto/tls"
	"net"
	"strconv"
	"testing"
	"time"
)

func hostPort(t *testing.T, addr net.Addr) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		t.Fatalf("split %q: %v", addr, err)
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

func TestTransportUDP(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer pc.Close()

	host, port := hostPort(t, pc.LocalAddr())
	tr := NewTransport(UDP, host, port, nil)

	c, err := tr.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()

	payload := []byte("<13>Mar 07 09:30:45 h a[-]: hi\n")
	if err := c.Write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1024)
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf[:n]) != string(payload) {
		t.Fatalf("got %q, want %q", buf[:n], payload)
	}
}

func TestTransportTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		sc, err := ln.Accept()
		if err != nil {
			return
		}
		defer sc.Close()
		buf := make([]byte, 1024)
		n, _ := sc.Read(buf)
		received <- buf[:n]
	}()

	host, port := hostPort(t, ln.Addr())
	tr := NewTransport(TCP, host, port, nil)

	c, err := tr.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()

	if err := c.Write([]byte("hello\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-received:
		if string(got) != "hello\n" {
			t.Fatalf("got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for payload")
	}
}

func TestTransportTCPConnectError(t *testing.T) {
	// Grab a port and close it so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	host, port := hostPort(t, ln.Addr())
	ln.Close()

	tr := NewTransport(TCP, host, port, nil)
	if _, err := tr.Connect(context.Background()); err == nil {
		t.Fatal("expected connect error")
	}
}

type testTrust struct{ cfg *tls.Config }

func (t testTrust) Config() *tls.Config { return t.cfg }

func TestTransportTLSHandshakePenalty(t *testing.T) {
	// A plain TCP listener that closes every connection makes the
	// handshake fail; the transport must sleep its penalty before
	// surfacing the error.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			sc, err := ln.Accept()
			if err != nil {
				return
			}
			sc.Close()
		}
	}()

	host, port := hostPort(t, ln.Addr())
	tr := NewTransport(TLS, host, port, testTrust{cfg: &tls.Config{InsecureSkipVerify: true}})
	tr.handshakePenalty = 50 * time.Millisecond

	start := time.Now()
	_, err = tr.Connect(context.Background())
	if err == nil {
		t.Fatal("expected handshake error")
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("penalty not applied: returned after %v", elapsed)
	}
}

func TestTransportTLSDialErrorSkipsPenalty(t *testing.T) {
	// Grab a port and close it so the TCP dial itself is refused; the
	// handshake penalty only applies once a connection is established.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	host, port := hostPort(t, ln.Addr())
	ln.Close()

	tr := NewTransport(TLS, host, port, testTrust{cfg: &tls.Config{InsecureSkipVerify: true}})
	tr.handshakePenalty = time.Second

	start := time.Now()
	_, err = tr.Connect(context.Background())
	if err == nil {
		t.Fatal("expected dial error")
	}
	if elapsed := time.Since(start); elapsed >= tr.handshakePenalty {
		t.Fatalf("penalty must not apply to dial failures: returned after %v", elapsed)
	}
}

func TestConnCloseIdempotent(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	c := &conn{c: client}
	if err := c.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
