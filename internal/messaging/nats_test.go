package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisabledReturnsNop(t *testing.T) {
	pub, err := New(Config{Enabled: false})
	require.NoError(t, err)

	_, ok := pub.(NopPublisher)
	assert.True(t, ok)
	assert.NoError(t, pub.Publish("reservation.created", map[string]int{"reservation_id": 1}))
	assert.NoError(t, pub.Close())
}

func TestNopPublisherRejectsUnmarshalable(t *testing.T) {
	err := NopPublisher{}.Publish("x", make(chan int))
	assert.Error(t, err)
}
