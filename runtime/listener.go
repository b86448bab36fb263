package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"chat-relay/observability"
	"chat-relay/services"
	"chat-relay/transport"
)

// Listener is the accept loop. It runs as a supervised worker and spawns
// one goroutine per inbound connection; each session then lives entirely
// on blocking reads of its own channel.
type Listener struct {
	log        *slog.Logger
	addr       string
	relay      services.IRelayService
	monitoring *observability.MonitoringManager
	ready      chan net.Addr
}

func NewListener(log *slog.Logger, addr string, relay services.IRelayService, monitoring *observability.MonitoringManager) *Listener {
	return &Listener{
		log:        log,
		addr:       addr,
		relay:      relay,
		monitoring: monitoring,
		ready:      make(chan net.Addr, 1),
	}
}

// WaitReady blocks until the listener is bound and returns its address.
// Needed by tests that listen on an ephemeral port.
func (l *Listener) WaitReady(ctx context.Context) (net.Addr, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case addr := <-l.ready:
		return addr, nil
	}
}

func (l *Listener) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", l.addr, err)
	}
	l.log.Info("Relay listening", "addr", ln.Addr().String())

	select {
	case l.ready <- ln.Addr():
	default:
	}

	// Closing the listener is the only way to unblock Accept
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				// Open sessions end when their own connections do;
				// there is no cancellation of an in-flight read.
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		l.monitoring.SessionOpened()
		session := NewSession(transport.NewChannel(conn), l.relay, l.monitoring, l.log)
		go func() {
			defer l.monitoring.SessionClosed()
			session.Run()
		}()
	}
}
