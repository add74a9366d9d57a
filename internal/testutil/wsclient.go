package testutil

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// WSClient is a simple websocket test client for integration testing.
type WSClient struct {
	conn *websocket.Conn
	t    *testing.T
}

// NewWSClient dials the given URL and returns a test client. An http:// or
// https:// URL (as produced by httptest.Server) is rewritten to the
// matching websocket scheme.
//
// Precondition: url must point at a listening websocket endpoint.
// Postcondition: Returns a connected WSClient or fails the test.
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()
	start := time.Now()

	if strings.HasPrefix(url, "http") {
		url = "ws" + strings.TrimPrefix(url, "http")
	}

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", url, err, time.Since(start))
	}

	t.Cleanup(func() {
		conn.Close()
	})

	client := &WSClient{
		conn: conn,
		t:    t,
	}

	t.Logf("websocket client connected to %s [%s]", url, time.Since(start))
	return client
}

// Send marshals v to JSON and writes it as a text message.
//
// Postcondition: The message is written to the connection, or the test fails.
func (c *WSClient) Send(v any) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := c.conn.WriteJSON(v); err != nil {
		c.t.Fatalf("sending %+v: %v", v, err)
	}
}

// ReadUntilType reads messages until one arrives whose "type" field matches
// msgType, and returns that message's raw bytes. Messages of other types
// are discarded.
//
// Precondition: msgType must be non-empty.
// Postcondition: Returns the matching message, or fails on timeout.
func (c *WSClient) ReadUntilType(msgType string, timeout time.Duration) json.RawMessage {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	var seen []string
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.t.Fatalf("reading until type %q: saw %v, error: %v", msgType, seen, err)
		}

		var envelope struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			c.t.Fatalf("reading until type %q: unparseable message %q: %v", msgType, data, err)
		}
		if envelope.Type == msgType {
			return data
		}
		seen = append(seen, envelope.Type)
	}
}

// ReadInto reads messages until one of msgType arrives and unmarshals it
// into out.
//
// Precondition: out must be a non-nil pointer.
func (c *WSClient) ReadInto(msgType string, timeout time.Duration, out any) {
	c.t.Helper()
	data := c.ReadUntilType(msgType, timeout)
	if err := json.Unmarshal(data, out); err != nil {
		c.t.Fatalf("unmarshaling %q message: %v", msgType, err)
	}
}

// Close closes the underlying connection.
func (c *WSClient) Close() {
	c.conn.Close()
}
