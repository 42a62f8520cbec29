package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeKeepsTypeAndTime(t *testing.T) {
	at := time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC)
	evt := BaseEvent{
		Type:       ChatHistorySaved,
		Data:       map[string]interface{}{"session_id": float64(3)},
		OccurredAt: at,
	}

	raw, err := Marshal(evt)
	require.NoError(t, err)

	back, err := Unmarshal(raw)
	require.NoError(t, err)
	assert.Equal(t, ChatHistorySaved, back.EventType())
	assert.True(t, back.Timestamp().Equal(at))
	assert.Equal(t, float64(3), back.Payload()["session_id"])
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := Unmarshal([]byte("not-json"))
	assert.Error(t, err)
}

func TestNewStampsUTC(t *testing.T) {
	evt := New(ChatSessionCreated, nil)
	assert.Equal(t, time.UTC, evt.OccurredAt.Location())
	assert.Equal(t, ChatSessionCreated, evt.Type)
}
