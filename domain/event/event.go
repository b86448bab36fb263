package event

import "time"

// DomainEvent is emitted by the relay whenever a session changes the shared
// state or a message is routed. Events feed the fanout worker, never the
// routing path itself.
type DomainEvent interface {
	Actor() string
}

type UserConnected struct {
	Username string
	At       time.Time
}

func (e UserConnected) Actor() string { return e.Username }

type UserDisconnected struct {
	Username string
	At       time.Time
}

func (e UserDisconnected) Actor() string { return e.Username }

type GroupJoined struct {
	Username string
	Group    string
	At       time.Time
}

func (e GroupJoined) Actor() string { return e.Username }

type GroupLeft struct {
	Username string
	Group    string
	At       time.Time
}

func (e GroupLeft) Actor() string { return e.Username }

type MessageRouted struct {
	Sender     string
	Mode       string
	Target     string
	Kind       string
	Recipients int
	At         time.Time
}

func (e MessageRouted) Actor() string { return e.Sender }

// Censored is emitted when the moderation pass rewrote a message.
type Censored struct {
	Sender string
	Target string
	Lang   string
	Hits   int
	At     time.Time
}

func (e Censored) Actor() string { return e.Sender }
