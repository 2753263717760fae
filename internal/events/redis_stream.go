package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStream appends events to a Redis stream with XADD
type RedisStream struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisClient creates a Redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisStream publishes to stream; maxLen <= 0 leaves the stream untrimmed
func NewRedisStream(client *redis.Client, stream string, maxLen int) *RedisStream {
	return &RedisStream{client: client, stream: stream, maxLen: int64(maxLen)}
}

// Ping tests the Redis connection
func (s *RedisStream) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStream) Publish(ctx context.Context, ev Event) error {
	values, err := streamValues(ev)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStream) Close() error {
	return s.client.Close()
}

// streamValues flattens an event into string stream fields
func streamValues(ev Event) (map[string]interface{}, error) {
	values := map[string]interface{}{
		"type":      ev.Type,
		"device_id": ev.DeviceID,
		"device":    strconv.FormatUint(uint64(ev.DevicePK), 10),
		"owner":     strconv.FormatUint(uint64(ev.OwnerID), 10),
		"timestamp": ev.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if ev.ScheduleID != nil {
		values["schedule_id"] = strconv.FormatUint(uint64(*ev.ScheduleID), 10)
	}
	if len(ev.Details) > 0 {
		b, err := json.Marshal(ev.Details)
		if err != nil {
			return nil, err
		}
		values["details"] = string(b)
	}
	return values, nil
}
