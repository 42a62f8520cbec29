package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthRepository(t *testing.T) {
	repo := NewHealthRepository(time.Minute)

	_, found := repo.Get()
	assert.False(t, found)

	repo.Save(true)
	healthy, found := repo.Get()
	assert.True(t, found)
	assert.True(t, healthy)

	repo.Invalidate()
	_, found = repo.Get()
	assert.False(t, found)
}

func TestHealthRepositoryExpires(t *testing.T) {
	repo := NewHealthRepository(20 * time.Millisecond)
	repo.Save(false)

	time.Sleep(40 * time.Millisecond)
	_, found := repo.Get()
	assert.False(t, found)
}
