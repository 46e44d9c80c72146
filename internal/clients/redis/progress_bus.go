package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

const (
	EventQuizAttemptRecorded = "quiz_attempt_recorded"
	EventFavoriteToggled     = "favorite_toggled"

	DefaultChannel = "quizprogress.events"
)

// ProgressEvent is published after a progress mutation commits.
type ProgressEvent struct {
	Event          string    `json:"event"`
	UserID         uuid.UUID `json:"user_id"`
	QuizID         uuid.UUID `json:"quiz_id"`
	Added          *bool     `json:"added,omitempty"`
	TotalQuestions *int64    `json:"total_questions,omitempty"`
	TotalAnswers   *int64    `json:"total_answers,omitempty"`
	Average        *int      `json:"average,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type ProgressBus interface {
	Publish(ctx context.Context, ev ProgressEvent) error
	// Subscribe delivers events to onEvent until ctx is done.
	Subscribe(ctx context.Context, onEvent func(ProgressEvent)) error
	Ping(ctx context.Context) error
	Close() error
}

type BusConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type progressBus struct {
	log     *logger.Logger
	rdb     goredis.UniversalClient
	channel string
}

func NewProgressBus(log *logger.Logger, cfg BusConfig) (ProgressBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newProgressBus(log, rdb, cfg.Channel), nil
}

func newProgressBus(log *logger.Logger, rdb goredis.UniversalClient, channel string) *progressBus {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}
	return &progressBus{
		log:     log.With("service", "RedisProgressBus"),
		rdb:     rdb,
		channel: channel,
	}
}

func (b *progressBus) Publish(ctx context.Context, ev ProgressEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis progress bus not initialized")
	}
	if ev.Event == "" {
		return fmt.Errorf("event name required")
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *progressBus) Subscribe(ctx context.Context, onEvent func(ProgressEvent)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis progress bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev ProgressEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("bad progress event payload", "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()
	return nil
}

func (b *progressBus) Ping(ctx context.Context) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis progress bus not initialized")
	}
	return b.rdb.Ping(ctx).Err()
}

func (b *progressBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
