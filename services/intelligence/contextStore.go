package ai

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"meetingroom/models"

	"github.com/go-redis/redis/v8"
)

const runRecordPrefix = "agent:run:"

// ErrRunNotFound is returned for unknown or expired run ids.
var ErrRunNotFound = errors.New("run not found")

// RunStore keeps the trace of finished workflow runs.
type RunStore interface {
	Save(ctx context.Context, record *models.RunRecord) error
	Get(ctx context.Context, runID string) (*models.RunRecord, error)
}

// RedisRunStore stores run records as JSON with a TTL.
type RedisRunStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRunStore(client *redis.Client, ttl time.Duration) *RedisRunStore {
	return &RedisRunStore{client: client, ttl: ttl}
}

func (s *RedisRunStore) Get(ctx context.Context, runID string) (*models.RunRecord, error) {
	data, err := s.client.Get(ctx, runRecordPrefix+runID).Bytes()
	if err == redis.Nil {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	var record models.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *RedisRunStore) Save(ctx context.Context, record *models.RunRecord) error {
	b, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, runRecordPrefix+record.RunID, b, s.ttl).Err()
}

// MemoryRunStore is the process-local RunStore used when Redis is not configured.
type MemoryRunStore struct {
	mu      sync.RWMutex
	records map[string]models.RunRecord
}

func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{records: make(map[string]models.RunRecord)}
}

func (s *MemoryRunStore) Get(_ context.Context, runID string) (*models.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	return &record, nil
}

func (s *MemoryRunStore) Save(_ context.Context, record *models.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.RunID] = *record
	return nil
}
