package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentity(t *testing.T) {
	_, err := NewIdentity("")
	assert.Error(t, err)

	id, err := NewIdentity("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username())
	assert.False(t, id.IsZero())
	assert.True(t, Identity{}.IsZero())
}

func TestBookClonePreservesNilReviews(t *testing.T) {
	b := Book{Title: "x"}
	assert.Nil(t, b.Clone().Reviews)

	b.Reviews = Reviews{}
	c := b.Clone()
	require.NotNil(t, c.Reviews)
	c.Reviews["alice"] = "hi"
	assert.Empty(t, b.Reviews)
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now}
	assert.True(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(-time.Second)))
}
