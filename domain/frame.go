// Package domain contains core concepts of the relay.
// This file defines the pipe-delimited frame records exchanged with clients.
// No transport, locking, or I/O logic should be added here.
package domain

import (
	"fmt"
	"strings"

	"chat-relay/errors"
)

type Kind string

const (
	KindText       Kind = "TEXT"
	KindImage      Kind = "IMAGE"
	KindJoinGroup  Kind = "JOIN_GROUP"
	KindLeaveGroup Kind = "LEAVE_GROUP"
	KindDisconnect Kind = "DISCONNECT"

	KindUserList  Kind = "USER_LIST"
	KindGroupList Kind = "GROUP_LIST"
	KindError     Kind = "ERROR"
)

type Mode string

const (
	ModeGroup      Mode = "GROUP"
	ModeIndividual Mode = "INDIVIDUAL"
)

// MaxFields caps the pipe split so that payloads may contain pipes themselves.
const MaxFields = 5

// Frame is one parsed protocol record.
// For TEXT/IMAGE all five fields are set; list and error frames only carry
// a payload; JOIN_GROUP only carries a target.
type Frame struct {
	Kind    Kind
	Mode    Mode
	Target  string
	Sender  string
	Payload string
}

// ParseFrame decodes a raw inbound record into a Frame.
// The field count is validated per kind so that a short record can never
// reach the router.
func ParseFrame(raw string) (Frame, error) {
	parts := strings.SplitN(raw, "|", MaxFields)

	switch Kind(parts[0]) {
	case KindText, KindImage:
		if len(parts) < MaxFields {
			return Frame{}, fmt.Errorf("%w: %q", errors.ErrShortFrame, parts[0])
		}
		mode := Mode(parts[1])
		if mode != ModeGroup && mode != ModeIndividual {
			return Frame{}, fmt.Errorf("%w: %q", errors.ErrUnknownMode, parts[1])
		}
		return Frame{
			Kind:    Kind(parts[0]),
			Mode:    mode,
			Target:  parts[2],
			Sender:  parts[3],
			Payload: parts[4],
		}, nil
	case KindJoinGroup:
		if len(parts) < 2 {
			return Frame{}, fmt.Errorf("%w: %q", errors.ErrShortFrame, parts[0])
		}
		return Frame{Kind: KindJoinGroup, Target: parts[1]}, nil
	case KindLeaveGroup:
		return Frame{Kind: KindLeaveGroup}, nil
	case KindDisconnect:
		return Frame{Kind: KindDisconnect}, nil
	default:
		return Frame{}, fmt.Errorf("%w: %q", errors.ErrUnknownFrameKind, parts[0])
	}
}

// Encode renders the frame back into its wire record.
func (f Frame) Encode() string {
	switch f.Kind {
	case KindText, KindImage:
		return strings.Join([]string{string(f.Kind), string(f.Mode), f.Target, f.Sender, f.Payload}, "|")
	case KindJoinGroup:
		return string(KindJoinGroup) + "|" + f.Target
	case KindUserList, KindGroupList, KindError:
		return string(f.Kind) + "|" + f.Payload
	default:
		return string(f.Kind)
	}
}

// GroupMessage is a TEXT or IMAGE frame broadcast to a whole group.
func GroupMessage(kind Kind, group, sender, payload string) Frame {
	return Frame{Kind: kind, Mode: ModeGroup, Target: group, Sender: sender, Payload: payload}
}

// IndividualMessage is the forwarded shape of a direct message.
// The third wire field carries the sender and the fourth is left blank,
// mirroring the historical client contract.
func IndividualMessage(kind Kind, sender, payload string) Frame {
	return Frame{Kind: kind, Mode: ModeIndividual, Target: sender, Payload: payload}
}

// SystemNotice is a group broadcast attributed to the reserved "System" sender.
func SystemNotice(group, text string) Frame {
	return GroupMessage(KindText, group, SystemSender, text)
}

func ErrorFrame(message string) Frame {
	return Frame{Kind: KindError, Payload: message}
}

func UserList(usernames []string) Frame {
	return Frame{Kind: KindUserList, Payload: strings.Join(usernames, ",")}
}

func GroupList(names []string) Frame {
	return Frame{Kind: KindGroupList, Payload: strings.Join(names, ",")}
}

// SystemSender is the reserved sender name for relay-originated notices.
const SystemSender = "System"
