package syslog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anynines/logstash-output-syslog/internal/config"
	"github.com/anynines/logstash-output-syslog/internal/model"
	protocol "github.com/anynines/logstash-output-syslog/internal/syslog"
)

type fakeConn struct {
	writes   [][]byte
	failures int // fail this many writes before succeeding
	closed   int
}

func (c *fakeConn) Write(p []byte) error {
	buf := append([]byte(nil), p...)
	c.writes = append(c.writes, buf)
	if c.failures > 0 {
		c.failures--
		return errors.New("broken pipe")
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.closed++
	return nil
}

type fakeDialer struct {
	kind        protocol.Kind
	conn        *fakeConn
	connectErrs int // fail this many connects before succeeding
	connects    int
}

func (d *fakeDialer) Kind() protocol.Kind { return d.kind }

func (d *fakeDialer) Connect(ctx context.Context) (protocol.Conn, error) {
	d.connects++
	if d.connectErrs > 0 {
		d.connectErrs--
		return nil, errors.New("connection refused")
	}
	return d.conn, nil
}

func testOutput(d *fakeDialer) *Output {
	return &Output{
		transport: d,
		builder: protocol.Builder{
			Framing:    protocol.RFC3164,
			UseLabels:  true,
			Facility:   "daemon",
			Severity:   "notice",
			Sourcehost: "%{host}",
			Appname:    "app",
			ProcID:     "-",
			Message:    "%{message}",
		},
		delimiter: "\n",
		reconnect: time.Millisecond,
	}
}

func testEvent() model.Event {
	return model.Event{
		Timestamp: time.Date(2026, 3, 7, 9, 30, 45, 0, time.UTC),
		Message:   "hello",
		Host:      "web-1",
	}
}

func TestWriteHappyPath(t *testing.T) {
	d := &fakeDialer{kind: protocol.TCP, conn: &fakeConn{}}
	o := testOutput(d)

	if err := o.Write(context.Background(), testEvent()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if d.connects != 1 {
		t.Fatalf("connects: got %d, want 1", d.connects)
	}
	want := "<29>Mar 07 09:30:45 web-1 app[-]: hello\n"
	if len(d.conn.writes) != 1 || string(d.conn.writes[0]) != want {
		t.Fatalf("writes: got %q, want %q", d.conn.writes, want)
	}

	// Second event reuses the live connection.
	if err := o.Write(context.Background(), testEvent()); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if d.connects != 1 {
		t.Fatalf("connection must be reused, connects=%d", d.connects)
	}
}

func TestInitialConnectErrorPropagates(t *testing.T) {
	d := &fakeDialer{kind: protocol.TCP, conn: &fakeConn{}, connectErrs: 1}
	o := testOutput(d)

	if err := o.Write(context.Background(), testEvent()); err == nil {
		t.Fatal("expected connect error")
	}
	if d.connects != 1 {
		t.Fatalf("no retry on initial connect failure, connects=%d", d.connects)
	}

	// The next event triggers a fresh connect attempt.
	if err := o.Write(context.Background(), testEvent()); err != nil {
		t.Fatalf("next write: %v", err)
	}
}

func TestStreamWriteFailureReconnectsAndResends(t *testing.T) {
	conn := &fakeConn{failures: 1}
	d := &fakeDialer{kind: protocol.TCP, conn: conn}
	o := testOutput(d)

	if err := o.Write(context.Background(), testEvent()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if d.connects != 2 {
		t.Fatalf("connects: got %d, want 2", d.connects)
	}
	if conn.closed != 1 {
		t.Fatalf("failed connection must be closed, closed=%d", conn.closed)
	}
	if len(conn.writes) != 2 {
		t.Fatalf("writes: got %d, want 2", len(conn.writes))
	}
	// The retried payload is byte-identical to the first attempt.
	if string(conn.writes[0]) != string(conn.writes[1]) {
		t.Fatalf("resent payload differs: %q vs %q", conn.writes[0], conn.writes[1])
	}
}

func TestReconnectFailureKeepsRetrying(t *testing.T) {
	conn := &fakeConn{}
	d := &fakeDialer{kind: protocol.TCP, conn: conn}
	o := testOutput(d)

	// Prime the connection, then make the next write fail and the
	// reconnect fail twice before succeeding.
	if err := o.Write(context.Background(), testEvent()); err != nil {
		t.Fatalf("prime: %v", err)
	}
	conn.failures = 1
	d.connectErrs = 2

	if err := o.Write(context.Background(), testEvent()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if d.connectErrs != 0 {
		t.Fatal("connect retries not exhausted")
	}
	if got := string(conn.writes[len(conn.writes)-1]); got != string(conn.writes[1]) {
		t.Fatalf("final payload differs from failed attempt: %q", got)
	}
}

func TestUDPWriteFailureDropsWithoutRetry(t *testing.T) {
	conn := &fakeConn{failures: 1}
	d := &fakeDialer{kind: protocol.UDP, conn: conn}
	o := testOutput(d)

	if err := o.Write(context.Background(), testEvent()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(conn.writes) != 1 {
		t.Fatalf("udp failure must not retry, writes=%d", len(conn.writes))
	}
	if conn.closed != 0 {
		t.Fatalf("udp failure must not close the socket, closed=%d", conn.closed)
	}

	// The next event still attempts a fresh send on the same socket.
	if err := o.Write(context.Background(), testEvent()); err != nil {
		t.Fatalf("next write: %v", err)
	}
	if len(conn.writes) != 2 {
		t.Fatalf("writes: got %d, want 2", len(conn.writes))
	}
	if d.connects != 1 {
		t.Fatalf("udp socket must be kept, connects=%d", d.connects)
	}
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	conn := &fakeConn{failures: 1000}
	d := &fakeDialer{kind: protocol.TCP, conn: conn}
	o := testOutput(d)
	o.reconnect = time.Hour // never elapses; cancellation must win

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	err := o.Write(ctx, testEvent())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := config.Default() // missing host/port
	if _, err := New(cfg); err == nil {
		t.Fatal("expected validation error")
	}

	cfg = config.Default()
	cfg.Host = "localhost"
	cfg.Port = 514
	cfg.StructuredData = `[origin@1]` // invalid with default rfc3164
	if _, err := New(cfg); err == nil {
		t.Fatal("expected structured data configuration error")
	}
}

func TestNewUDP(t *testing.T) {
	cfg := config.Default()
	cfg.Host = "localhost"
	cfg.Port = 514

	o, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer o.Close()
	if o.transport.Kind() != protocol.UDP {
		t.Fatalf("kind: got %v", o.transport.Kind())
	}
	if o.delimiter != "\n" {
		t.Fatalf("delimiter: got %q", o.delimiter)
	}
}
