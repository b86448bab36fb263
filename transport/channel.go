// Package transport implements the length-prefixed framed channel the relay
// shares with its clients: a 2-byte big-endian byte length followed by the
// modified UTF-8 encoding of one text record.
package transport

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"chat-relay/errors"
)

// MaxFrameBytes is the largest encoded payload a frame can carry,
// bounded by the 2-byte length prefix.
const MaxFrameBytes = 0xFFFF

// Channel is one framed, bidirectional connection.
//
// Send is safe for concurrent use: registry broadcasts write into a channel
// from other sessions' goroutines, so the whole frame write happens under a
// mutex. Receive must only be called by the owning session's goroutine.
type Channel struct {
	conn net.Conn
	r    *bufio.Reader

	mu     sync.Mutex // serializes Send
	closed bool
}

func NewChannel(conn net.Conn) *Channel {
	return &Channel{conn: conn, r: bufio.NewReader(conn)}
}

// Send writes text as exactly one frame, blocking until the transport has
// accepted the whole frame or failed.
func (c *Channel) Send(text string) error {
	buf := make([]byte, 2, 2+len(text))
	buf = appendModifiedUTF8(buf, text)

	encoded := len(buf) - 2
	if encoded > MaxFrameBytes {
		return fmt.Errorf("%w: %d bytes", errors.ErrFrameTooLarge, encoded)
	}
	binary.BigEndian.PutUint16(buf[:2], uint16(encoded))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.ErrChannelClosed
	}
	if _, err := c.conn.Write(buf); err != nil {
		return fmt.Errorf("frame write: %w", err)
	}
	return nil
}

// Receive blocks until one complete frame arrives and returns its decoded
// text. io.EOF (or any other transport error) is terminal for the channel.
func (c *Channel) Receive() (string, error) {
	var header [2]byte
	if _, err := io.ReadFull(c.r, header[:]); err != nil {
		return "", err
	}
	length := binary.BigEndian.Uint16(header[:])

	payload := make([]byte, length)
	if _, err := io.ReadFull(c.r, payload); err != nil {
		return "", fmt.Errorf("frame body: %w", err)
	}
	text, err := decodeModifiedUTF8(payload)
	if err != nil {
		return "", fmt.Errorf("frame decode: %w", err)
	}
	return text, nil
}

func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// RemoteAddr returns the remote address for logging.
func (c *Channel) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
