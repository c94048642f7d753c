package gamesession

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/darkroot-games/warband-api/internal/entities"
	"github.com/darkroot-games/warband-api/internal/errors"
	redisclient "github.com/darkroot-games/warband-api/internal/redis"
)

const (
	// Disjoint prefixes: a session id starting with "events:" must not
	// land on another session's event log.
	sessionKeyPrefix = "session:doc:"
	eventsKeyPrefix  = "session:events:"

	// Error messages
	errSessionNil     = "session cannot be nil"
	errSessionIDEmpty = "session ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
}

// NewRedisRepository creates a new Redis-backed game session repository
func NewRedisRepository(client redisclient.Client) Repository {
	return &redisRepository{
		client: client,
	}
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Session == nil {
		return nil, errors.InvalidArgument(errSessionNil)
	}
	if input.Session.ID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	data, err := json.Marshal(input.Session)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal session")
	}

	key := sessionKeyPrefix + input.Session.ID
	ok, err := r.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create session")
	}
	if !ok {
		return nil, errors.AlreadyExistsf("session %s already exists", input.Session.ID)
	}

	return &CreateOutput{Session: input.Session}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	key := sessionKeyPrefix + input.ID
	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("session %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get session")
	}

	var session entities.GameSession
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal session")
	}

	return &GetOutput{Session: &session}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Session == nil {
		return nil, errors.InvalidArgument(errSessionNil)
	}
	if input.Session.ID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	key := sessionKeyPrefix + input.Session.ID
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("session %s not found", input.Session.ID)
	}

	data, err := json.Marshal(input.Session)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal session")
	}

	// Session write and event appends commit together or not at all.
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)

	if len(input.Events) > 0 {
		eventsKey := eventsKeyPrefix + input.Session.ID
		for _, event := range input.Events {
			eventData, err := json.Marshal(event)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to marshal inventory event")
			}
			pipe.RPush(ctx, eventsKey, eventData)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to update session")
	}

	return &UpdateOutput{Session: input.Session}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	key := sessionKeyPrefix + input.ID
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("session %s not found", input.ID)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, eventsKeyPrefix+input.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete session")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ListEvents(ctx context.Context, input ListEventsInput) (*ListEventsOutput, error) {
	if input.SessionID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	eventsKey := eventsKeyPrefix + input.SessionID
	entries, err := r.client.LRange(ctx, eventsKey, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read event log")
	}

	events := make([]entities.InventoryEvent, 0, len(entries))
	for _, entry := range entries {
		var event entities.InventoryEvent
		if err := json.Unmarshal([]byte(entry), &event); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal inventory event")
		}
		if input.CardInstanceID != "" && event.CardInstanceID != input.CardInstanceID {
			continue
		}
		events = append(events, event)
	}

	return &ListEventsOutput{Events: events}, nil
}
