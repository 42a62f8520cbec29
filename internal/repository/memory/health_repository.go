package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const healthKey = "rag_health"

// HealthRepository remembers the last RAG health probe so frequent polling
// does not hit the upstream on every request.
type HealthRepository struct {
	cache *cache.Cache
}

func NewHealthRepository(ttl time.Duration) *HealthRepository {
	return &HealthRepository{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *HealthRepository) Save(healthy bool) {
	r.cache.Set(healthKey, healthy, cache.DefaultExpiration)
}

func (r *HealthRepository) Get() (bool, bool) {
	if x, found := r.cache.Get(healthKey); found {
		return x.(bool), true
	}
	return false, false
}

func (r *HealthRepository) Invalidate() {
	r.cache.Delete(healthKey)
}
