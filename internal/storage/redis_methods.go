package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publish serializes payload to JSON and publishes it on a Redis channel.
func (s *Service) Publish(ctx context.Context, channel string, payload any) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event for %s: %w", channel, err)
	}

	if err := s.Redis.Publish(ctx, channel, string(msgBytes)).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

// ScheduleAt stores member in a sorted set scored by its due unix time.
func (s *Service) ScheduleAt(ctx context.Context, queue, member string, at time.Time) error {
	err := s.Redis.ZAdd(ctx, queue, redis.Z{
		Score:  float64(at.Unix()),
		Member: member,
	}).Err()
	if err != nil {
		return fmt.Errorf("schedule %s on %s: %w", member, queue, err)
	}
	return nil
}

// Due returns up to limit members whose due time is at or before now,
// earliest first.
func (s *Service) Due(ctx context.Context, queue string, now time.Time, limit int64) ([]string, error) {
	members, err := s.Redis.ZRangeByScore(ctx, queue, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("read due jobs from %s: %w", queue, err)
	}
	return members, nil
}

func (s *Service) Ack(ctx context.Context, queue, member string) error {
	if err := s.Redis.ZRem(ctx, queue, member).Err(); err != nil {
		return fmt.Errorf("ack %s on %s: %w", member, queue, err)
	}
	return nil
}
