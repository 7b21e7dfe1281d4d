package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Its-donkey/armada-console/internal/ui/model"
)

func TestSessionsKeepStoresApart(t *testing.T) {
	sessions, err := NewSessions(4)
	require.NoError(t, err)

	one := sessions.Open("one")
	two := sessions.Open("two")
	require.NotSame(t, one, two)
	assert.Same(t, one, sessions.Open("one"))

	one.Admin.Set(model.Identity{ID: "1"})
	_, ok := two.Identity()
	assert.False(t, ok)
}

func TestSessionsEvictLeastRecentlyUsed(t *testing.T) {
	sessions, err := NewSessions(2)
	require.NoError(t, err)

	sessions.Open("a")
	sessions.Open("b")
	sessions.Open("a")
	sessions.Open("c")

	_, ok := sessions.Lookup("b")
	assert.False(t, ok)
	_, ok = sessions.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 2, sessions.Len())
}

func TestNewSessionsRejectsZeroSize(t *testing.T) {
	_, err := NewSessions(0)
	assert.Error(t, err)
}
