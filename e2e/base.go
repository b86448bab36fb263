package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"chat-relay/client"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/observability"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/sink"
)

type BaseRelaySuite struct {
	suite.Suite
	Config Config

	addr   string
	cancel context.CancelFunc
}

// SetupSuite loads the environment configuration and, unless RELAY_ADDR
// targets an external relay, starts a full in-process one.
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.RelayAddr != "" {
		s.addr = s.Config.RelayAddr
		return
	}
	s.addr = s.startRelay()
}

func (s *BaseRelaySuite) TearDownSuite() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *BaseRelaySuite) startRelay() string {
	log := logs.GetLoggerFromLevel(slog.LevelWarn)
	monitoring := observability.NewMonitoringManager()

	users := runtime.NewUserRegistry(log)
	groups := runtime.NewGroupRegistry(users, 5, log)

	domainEvents := make(chan event.DomainEvent, 64)
	telemetryChan := make(chan event.Event, 16)

	fanout := workers.NewEventFanout(log, domainEvents).Add(sink.NewLogSink(log))
	relay := services.NewRelayService(log, users, groups, nil, monitoring, domainEvents, "General")
	listener := runtime.NewListener(log, "127.0.0.1:0", relay, monitoring)
	supervisor := workers.NewSupervisor(log, telemetryChan, 200*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go supervisor.Add(listener, fanout).Run(ctx)

	readyCtx, readyCancel := context.WithTimeout(ctx, 5*time.Second)
	defer readyCancel()
	addr, err := listener.WaitReady(readyCtx)
	s.Require().NoError(err)
	return addr.String()
}

// Connect opens a relay session under a colorized step header.
func (s *BaseRelaySuite) Connect(step, username string) *client.Client {
	header := fmt.Sprintf("  ====== %s ======", step)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	c, err := client.Dial(s.addr, username)
	s.Require().NoError(err, "Failed to connect to relay at "+s.addr)
	s.T().Cleanup(func() { _ = c.Close() })
	return c
}

// Expect receives frames until one of the wanted kind arrives, bounded by
// the suite's receive timeout.
func (s *BaseRelaySuite) Expect(c *client.Client, kind domain.Kind) client.ServerFrame {
	type result struct {
		frame client.ServerFrame
		err   error
	}
	done := make(chan result, 1)
	go func() {
		frame, err := c.ReceiveKind(kind)
		done <- result{frame, err}
	}()

	select {
	case r := <-done:
		s.Require().NoError(r.err)
		return r.frame
	case <-time.After(s.Config.ReceiveTimeout):
		s.Require().FailNow(fmt.Sprintf("Timeout waiting for a %s frame", kind))
		return client.ServerFrame{}
	}
}
