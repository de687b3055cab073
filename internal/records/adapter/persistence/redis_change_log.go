package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"recordstore/internal/records/domain/model"
	"recordstore/internal/records/domain/repository"
	"recordstore/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultReplayLimit = 100

// RedisChangeLog implements the persisted change log on Redis Streams: one
// stream per collection, trimmed to a bounded length. Stream entry ids double
// as resume tokens.
type RedisChangeLog struct {
	client    *redis.Client
	maxLength int64
	logger    logger.Logger
}

// NewRedisChangeLog creates a change log keeping at most maxLength events per
// collection stream (approximate trimming).
func NewRedisChangeLog(client *redis.Client, maxLength int64, log logger.Logger) *RedisChangeLog {
	if maxLength <= 0 {
		maxLength = 10000
	}
	return &RedisChangeLog{
		client:    client,
		maxLength: maxLength,
		logger:    log.WithComponent("change_log"),
	}
}

var _ repository.ChangeLog = (*RedisChangeLog)(nil)

func streamName(ref model.CollectionRef) string {
	return "changes:" + ref.ResourceKey()
}

// Append stores the event and returns the stream entry id as resume token.
func (r *RedisChangeLog) Append(ctx context.Context, event model.ChangeEvent) (string, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("Failed to serialize change event", zap.Error(err))
		return "", err
	}

	stream := streamName(model.NewCollectionRef(event.ProjectID, event.Collection))
	token, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: r.maxLength,
		Approx: true,
		Values: map[string]interface{}{
			"type":      string(event.Type),
			"recordId":  event.RecordID,
			"event":     payload,
			"timestamp": event.Timestamp.UnixNano(),
		},
	}).Result()
	if err != nil {
		r.logger.Error("Failed to append change event",
			zap.String("stream", stream),
			zap.String("eventType", string(event.Type)),
			zap.Error(err))
		return "", err
	}

	r.logger.Debug("Change event appended",
		zap.String("stream", stream),
		zap.String("token", token))
	return token, nil
}

// Replay returns events strictly after sinceToken, oldest first. An empty
// token replays from the oldest retained entry.
func (r *RedisChangeLog) Replay(ctx context.Context, ref model.CollectionRef, sinceToken string, limit int) ([]model.ChangeEvent, error) {
	if limit <= 0 {
		limit = defaultReplayLimit
	}
	start := "-"
	if sinceToken != "" {
		// "(" prefix makes the range exclusive of the resume token itself
		start = "(" + sinceToken
	}

	stream := streamName(ref)
	messages, err := r.client.XRangeN(ctx, stream, start, "+", int64(limit)).Result()
	if err != nil {
		r.logger.Error("Failed to replay change events",
			zap.String("stream", stream),
			zap.Error(err))
		return nil, fmt.Errorf("failed to replay change events: %w", err)
	}

	events := make([]model.ChangeEvent, 0, len(messages))
	for _, msg := range messages {
		raw, ok := msg.Values["event"].(string)
		if !ok {
			continue
		}
		var event model.ChangeEvent
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			r.logger.Warn("Skipping undecodable change event",
				zap.String("stream", stream),
				zap.String("id", msg.ID))
			continue
		}
		event.ResumeToken = msg.ID
		events = append(events, event)
	}
	return events, nil
}

// Ping verifies the Redis connection; the health endpoint calls it.
func (r *RedisChangeLog) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
