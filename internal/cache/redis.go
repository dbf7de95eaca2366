// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ratedrps/ratedrps-service/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list that carries resolved matches to the archiver.
const DefaultQueueName = "ratedrps_matches"

// ConnectRedis opens a client and pings it.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// MatchQueue is a Redis list of archived match records. The server pushes, the archiver pops.
type MatchQueue struct {
	rdb   *redis.Client
	queue string
}

func NewMatchQueue(rdb *redis.Client, queue string) *MatchQueue {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &MatchQueue{rdb: rdb, queue: queue}
}

// RecordMatch serializes rec and appends it to the queue.
func (q *MatchQueue) RecordMatch(ctx context.Context, rec models.MatchRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal MatchRecord: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", q.queue, err)
	}
	return nil
}

// Pop blocks up to timeout for the next record. ok is false when the wait timed out.
// A payload that does not decode is returned as an error and is not requeued.
func (q *MatchQueue) Pop(ctx context.Context, timeout time.Duration) (rec models.MatchRecord, ok bool, err error) {
	res, err := q.rdb.BLPop(ctx, timeout, q.queue).Result()
	if errors.Is(err, redis.Nil) {
		return models.MatchRecord{}, false, nil
	}
	if err != nil {
		return models.MatchRecord{}, false, fmt.Errorf("BLPop %s: %w", q.queue, err)
	}
	// res[0] is the list name and res[1] the payload.
	if len(res) < 2 {
		return models.MatchRecord{}, false, nil
	}
	rec, err = DecodeRecord([]byte(res[1]))
	if err != nil {
		return models.MatchRecord{}, false, err
	}
	return rec, true, nil
}

// Len reports the number of records waiting.
func (q *MatchQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.queue).Result()
}

// DecodeRecord parses one queued payload.
func DecodeRecord(data []byte) (models.MatchRecord, error) {
	var rec models.MatchRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.MatchRecord{}, fmt.Errorf("invalid match record: %w", err)
	}
	if rec.ID == "" || rec.Player1ID == "" || rec.Player2ID == "" {
		return models.MatchRecord{}, fmt.Errorf("invalid match record: missing ids")
	}
	return rec, nil
}
