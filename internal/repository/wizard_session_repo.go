package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scoreline/scoreline-api/internal/wizard"
)

// ErrSessionNotFound indicates no wizard session exists for the user.
var ErrSessionNotFound = errors.New("wizard session not found")

// WizardSessionRepository persists per-user wizard sessions. A user has at
// most one active session; drafts are never shared across submissions.
type WizardSessionRepository interface {
	Get(ctx context.Context, userID uint) (wizard.Session, error)
	Save(ctx context.Context, userID uint, session wizard.Session) error
	Delete(ctx context.Context, userID uint) error
}

type wizardSessionRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewWizardSessionRepository stores sessions in Redis under a keyspace
// prefix with a sliding TTL.
func NewWizardSessionRepository(client *redis.Client, prefix string, ttl time.Duration) WizardSessionRepository {
	if prefix == "" {
		prefix = "scoreline:wizard"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &wizardSessionRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *wizardSessionRepository) key(userID uint) string {
	return fmt.Sprintf("%s:%d", r.prefix, userID)
}

func (r *wizardSessionRepository) Get(ctx context.Context, userID uint) (wizard.Session, error) {
	payload, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return wizard.Session{}, ErrSessionNotFound
		}
		return wizard.Session{}, err
	}

	var session wizard.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return wizard.Session{}, fmt.Errorf("corrupt wizard session: %w", err)
	}

	return session, nil
}

func (r *wizardSessionRepository) Save(ctx context.Context, userID uint, session wizard.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.key(userID), payload, r.ttl).Err()
}

func (r *wizardSessionRepository) Delete(ctx context.Context, userID uint) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}
