//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// FrameWriter is the write half of a session's framed channel.
// Registries forward frames through it; nothing else may touch the channel.
type FrameWriter interface {
	Send(frame domain.Frame) error
}

// Member is the registry-facing view of an authenticated session.
// The current-group field is owned by the group registry: it is only read
// and written under the registry lock.
type Member interface {
	FrameWriter
	Username() string
	CurrentGroup() string
	SetCurrentGroup(name string)
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IUserRegistry interface {
	Register(m Member) error
	Unregister(username string)
	Lookup(username string) (Member, bool)
	Usernames() []string
	BroadcastUserList()
}

type IGroupRegistry interface {
	Join(m Member, group string) error
	Leave(m Member)
	Broadcast(group string, frame domain.Frame, exclude string) (int, error)
	Names() []string
}
