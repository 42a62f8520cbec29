package nats

import (
	"testing"

	"wiki-chatbot-be/pkg/events"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "chat.chat_history_saved", Subject(events.ChatHistorySaved))
	assert.Equal(t, "chat.chat_upstream_failed", Subject(events.ChatUpstreamFailed))
}
