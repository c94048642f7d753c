package deckpreset

import (
	"context"
	"encoding/json"
	"sort"

	redis "github.com/redis/go-redis/v9"

	"github.com/darkroot-games/warband-api/internal/entities"
	"github.com/darkroot-games/warband-api/internal/errors"
	redisclient "github.com/darkroot-games/warband-api/internal/redis"
)

const (
	presetKeyPrefix = "preset:"
	presetIndexKey  = "preset:index"
	defaultPointer  = "preset:default"

	// Error messages
	errPresetNil     = "preset cannot be nil"
	errPresetIDEmpty = "preset ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
}

// NewRedisRepository creates a new Redis-backed deck preset repository
func NewRedisRepository(client redisclient.Client) Repository {
	return &redisRepository{
		client: client,
	}
}

// defaultID reads the default-preset pointer; empty string when unset
func (r *redisRepository) defaultID(ctx context.Context) (string, error) {
	id, err := r.client.Get(ctx, defaultPointer).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", errors.Wrapf(err, "failed to read default preset pointer")
	}
	return id, nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Preset == nil {
		return nil, errors.InvalidArgument(errPresetNil)
	}
	if input.Preset.ID == "" {
		return nil, errors.InvalidArgument(errPresetIDEmpty)
	}

	key := presetKeyPrefix + input.Preset.ID
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("preset %s already exists", input.Preset.ID)
	}

	data, err := json.Marshal(input.Preset)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal preset")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, presetIndexKey, input.Preset.ID)
	if input.Preset.IsDefault {
		pipe.Set(ctx, defaultPointer, input.Preset.ID, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create preset")
	}

	return &CreateOutput{Preset: input.Preset}, nil
}

// get loads one preset and stamps IsDefault from the pointer
func (r *redisRepository) get(ctx context.Context, id, defID string) (*entities.DeckPreset, error) {
	result, err := r.client.Get(ctx, presetKeyPrefix+id).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("preset %s not found", id)
		}
		return nil, errors.Wrapf(err, "failed to get preset")
	}

	var preset entities.DeckPreset
	if err := json.Unmarshal([]byte(result), &preset); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal preset")
	}

	// The pointer is the single source of truth for the default flag.
	preset.IsDefault = preset.ID == defID

	return &preset, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errPresetIDEmpty)
	}

	defID, err := r.defaultID(ctx)
	if err != nil {
		return nil, err
	}

	preset, err := r.get(ctx, input.ID, defID)
	if err != nil {
		return nil, err
	}

	return &GetOutput{Preset: preset}, nil
}

func (r *redisRepository) GetDefault(ctx context.Context) (*GetDefaultOutput, error) {
	defID, err := r.defaultID(ctx)
	if err != nil {
		return nil, err
	}
	if defID == "" {
		return nil, errors.NotFound("no default preset is set")
	}

	preset, err := r.get(ctx, defID, defID)
	if err != nil {
		return nil, err
	}

	return &GetDefaultOutput{Preset: preset}, nil
}

func (r *redisRepository) List(ctx context.Context) (*ListOutput, error) {
	ids, err := r.client.SMembers(ctx, presetIndexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list presets")
	}

	defID, err := r.defaultID(ctx)
	if err != nil {
		return nil, err
	}

	presets := make([]*entities.DeckPreset, 0, len(ids))
	for _, id := range ids {
		preset, err := r.get(ctx, id, defID)
		if err != nil {
			// Index can briefly hold ids whose documents are gone.
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		presets = append(presets, preset)
	}

	sort.Slice(presets, func(i, j int) bool {
		return presets[i].Name < presets[j].Name
	})

	return &ListOutput{Presets: presets}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Preset == nil {
		return nil, errors.InvalidArgument(errPresetNil)
	}
	if input.Preset.ID == "" {
		return nil, errors.InvalidArgument(errPresetIDEmpty)
	}

	key := presetKeyPrefix + input.Preset.ID
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("preset %s not found", input.Preset.ID)
	}

	data, err := json.Marshal(input.Preset)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal preset")
	}

	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update preset")
	}

	return &UpdateOutput{Preset: input.Preset}, nil
}

func (r *redisRepository) SetDefault(ctx context.Context, input SetDefaultInput) (*SetDefaultOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errPresetIDEmpty)
	}

	exists, err := r.client.Exists(ctx, presetKeyPrefix+input.ID).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("preset %s not found", input.ID)
	}

	// A single pointer write both unsets the prior default and marks
	// the new one.
	if err := r.client.Set(ctx, defaultPointer, input.ID, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to set default preset")
	}

	return &SetDefaultOutput{}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errPresetIDEmpty)
	}

	exists, err := r.client.Exists(ctx, presetKeyPrefix+input.ID).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("preset %s not found", input.ID)
	}

	defID, err := r.defaultID(ctx)
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, presetKeyPrefix+input.ID)
	pipe.SRem(ctx, presetIndexKey, input.ID)
	if defID == input.ID {
		pipe.Del(ctx, defaultPointer)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete preset")
	}

	return &DeleteOutput{}, nil
}
