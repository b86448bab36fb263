package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateUsername("Alice"))
	req.NoError(ValidateUsername("alice-42"))
	req.NoError(ValidateUsername("Aurélie"))

	// Empty or oversized names are unusable as registry keys
	req.Error(ValidateUsername(""))
	req.Error(ValidateUsername(strings.Repeat("a", 33)))

	// Separator characters would corrupt every list frame
	req.Error(ValidateUsername("Al|ice"))
	req.Error(ValidateUsername("Al,ice"))
}
