// Package client is a programmatic client for the relay protocol.
// The graphical presentation layer is out of scope; this exists for the
// e2e suite and the inspect tool.
package client

import (
	"fmt"
	"net"
	"strings"
	"time"

	"chat-relay/domain"
	"chat-relay/transport"
)

// ServerFrame is one relay-originated record, split on the frame separator.
type ServerFrame struct {
	Kind   domain.Kind
	Fields []string
	Raw    string
}

// Field returns the i-th field after the kind, or "" when absent.
func (f ServerFrame) Field(i int) string {
	if i+1 >= len(f.Fields) {
		return ""
	}
	return f.Fields[i+1]
}

type Client struct {
	channel  *transport.Channel
	username string
}

// Dial connects to the relay and performs the handshake: the first frame
// carries the bare username. The relay answers with USER_LIST on success
// or ERROR on rejection; both are left in the stream for the caller.
func Dial(addr, username string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("dialing relay: %w", err)
	}

	c := &Client{channel: transport.NewChannel(conn), username: username}
	if err := c.channel.Send(username); err != nil {
		_ = c.channel.Close()
		return nil, fmt.Errorf("handshake: %w", err)
	}
	return c, nil
}

func (c *Client) Username() string { return c.username }

// Receive blocks for the next relay frame.
func (c *Client) Receive() (ServerFrame, error) {
	raw, err := c.channel.Receive()
	if err != nil {
		return ServerFrame{}, err
	}
	fields := strings.SplitN(raw, "|", domain.MaxFields)
	return ServerFrame{Kind: domain.Kind(fields[0]), Fields: fields, Raw: raw}, nil
}

// ReceiveKind skips frames until one of the wanted kind arrives.
// Useful in tests where list broadcasts interleave with messages.
func (c *Client) ReceiveKind(kind domain.Kind) (ServerFrame, error) {
	for {
		f, err := c.Receive()
		if err != nil {
			return ServerFrame{}, err
		}
		if f.Kind == kind {
			return f, nil
		}
	}
}

func (c *Client) SendText(mode domain.Mode, target, content string) error {
	return c.send(domain.Frame{
		Kind: domain.KindText, Mode: mode, Target: target,
		Sender: c.username, Payload: content,
	})
}

func (c *Client) SendImage(mode domain.Mode, target, base64Payload string) error {
	return c.send(domain.Frame{
		Kind: domain.KindImage, Mode: mode, Target: target,
		Sender: c.username, Payload: base64Payload,
	})
}

func (c *Client) JoinGroup(name string) error {
	return c.send(domain.Frame{Kind: domain.KindJoinGroup, Target: name})
}

func (c *Client) LeaveGroup() error {
	return c.send(domain.Frame{Kind: domain.KindLeaveGroup})
}

// Disconnect announces the departure and closes the connection.
func (c *Client) Disconnect() error {
	if err := c.send(domain.Frame{Kind: domain.KindDisconnect}); err != nil {
		return err
	}
	return c.channel.Close()
}

func (c *Client) Close() error {
	return c.channel.Close()
}

func (c *Client) send(frame domain.Frame) error {
	return c.channel.Send(frame.Encode())
}
