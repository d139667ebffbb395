package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"math-agent-be/internal/repository/contract"
	"math-agent-be/pkg/rag/ragerr"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKey = "math-agent:conversation:last"
	maxRetries = 3
)

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// ConversationRepository keeps the last conversation as a JSON value with no TTL,
// so several API replicas share one slot.
type ConversationRepository struct {
	rdb *redis.Client
	key string
}

func NewConversationRepository(rdb *redis.Client, key string) *ConversationRepository {
	if key == "" {
		key = defaultKey
	}
	return &ConversationRepository{rdb: rdb, key: key}
}

func (r *ConversationRepository) Save(ctx context.Context, conversation *contract.Conversation) error {
	stored := *conversation
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now()
	}
	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	return r.rdb.Set(ctx, r.key, payload, 0).Err()
}

func (r *ConversationRepository) Get(ctx context.Context) (*contract.Conversation, error) {
	return r.get(ctx, r.rdb)
}

func (r *ConversationRepository) get(ctx context.Context, cmd getter) (*contract.Conversation, error) {
	payload, err := cmd.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var c contract.Conversation
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("unmarshal conversation: %w", err)
	}
	return &c, nil
}

// UpdateAnswer uses optimistic locking. A concurrent Save between read and write retries,
// and the retry then sees the new conversation and fails with ragerr.ErrConversationChanged.
func (r *ConversationRepository) UpdateAnswer(ctx context.Context, id uuid.UUID, answer string) (*contract.Conversation, error) {
	var updated *contract.Conversation

	txf := func(tx *redis.Tx) error {
		c, err := r.get(ctx, tx)
		if err != nil {
			return err
		}
		if c == nil {
			return ragerr.ErrNoConversation
		}
		if c.ID != id {
			return ragerr.ErrConversationChanged
		}

		c.Answer = answer
		c.UpdatedAt = time.Now()
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal conversation: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, payload, 0)
			return nil
		})
		if err == nil {
			updated = c
		}
		return err
	}

	for i := 0; i < maxRetries; i++ {
		err := r.rdb.Watch(ctx, txf, r.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update conversation answer: too much contention")
}
