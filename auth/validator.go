// Package auth validates the claimed identity of the handshake.
// There is no password and no token: a session is whoever it says it is,
// the relay only enforces that the name is usable as a registry key.
package auth

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// 0x7C is '|' (the frame separator), 0x2C is ',' (the list separator).
// A username containing either would corrupt USER_LIST frames or routing.
type handshakeRequest struct {
	Username string `validate:"required,min=1,max=32,excludesall=0x7C0x2C"`
}

func ValidateUsername(name string) error {
	if err := validate.Struct(handshakeRequest{Username: name}); err != nil {
		return fmt.Errorf("invalid username %q: %w", name, err)
	}
	return nil
}
