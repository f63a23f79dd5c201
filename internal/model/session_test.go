package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sessionWithToken(token string) Session {
	return Session{Token: token}
}

func TestSessionAuthenticated(t *testing.T) {
	// Called on function return values on purpose: sessions travel as
	// snapshots, so the method must work on non-addressable values.
	assert.False(t, sessionWithToken("").Authenticated())
	assert.True(t, sessionWithToken("tok").Authenticated())
}

func TestPlaceholderUser(t *testing.T) {
	assert.Equal(t, "Fusion User", PlaceholderUser().Name)
}
