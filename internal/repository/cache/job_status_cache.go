package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"wiki-chatbot-be/pkg/rag"

	"github.com/redis/go-redis/v9"
)

const jobStatusKeyPrefix = "rag:job_status:"

// JobStatusCache keeps terminal ingestion job statuses, which never change.
type JobStatusCache interface {
	Get(ctx context.Context, jobId string) (*rag.JobStatusResponse, bool, error)
	Set(ctx context.Context, status *rag.JobStatusResponse) error
}

type RedisJobStatusCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisJobStatusCache accepts a nil client, in which case every lookup misses.
func NewRedisJobStatusCache(rdb *redis.Client, ttl time.Duration) *RedisJobStatusCache {
	return &RedisJobStatusCache{rdb: rdb, ttl: ttl}
}

func JobStatusKey(jobId string) string {
	return jobStatusKeyPrefix + jobId
}

func (c *RedisJobStatusCache) Get(ctx context.Context, jobId string) (*rag.JobStatusResponse, bool, error) {
	if c.rdb == nil {
		return nil, false, nil
	}

	raw, err := c.rdb.Get(ctx, JobStatusKey(jobId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var status rag.JobStatusResponse
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, false, err
	}
	return &status, true, nil
}

func (c *RedisJobStatusCache) Set(ctx context.Context, status *rag.JobStatusResponse) error {
	if c.rdb == nil || status == nil || !rag.IsTerminalJobStatus(status.Status) {
		return nil
	}

	raw, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, JobStatusKey(status.JobId), raw, c.ttl).Err()
}
