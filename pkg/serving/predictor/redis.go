package predictor

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSource keeps artifacts under artifacts:<model>:latest so every replica
// reads the same bytes.
type RedisSource struct {
	client *redis.Client
	prefix string
}

func NewRedisSource(client *redis.Client, prefix string) *RedisSource {
	if prefix == "" {
		prefix = "artifacts"
	}
	return &RedisSource{client: client, prefix: prefix}
}

func (s *RedisSource) Key(model string) string {
	return fmt.Sprintf("%s:%s:latest", s.prefix, model)
}

func (s *RedisSource) Describe() string {
	return "redis:" + s.prefix
}

func (s *RedisSource) Fetch(ctx context.Context, model string) ([]byte, error) {
	content, err := s.client.Get(ctx, s.Key(model)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, s.Key(model))
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.Key(model), err)
	}
	return content, nil
}

// Publish validates content and stores it as the latest artifact for its model.
func (s *RedisSource) Publish(ctx context.Context, content []byte) (Artifact, error) {
	artifact, err := ParseArtifact(content)
	if err != nil {
		return Artifact{}, err
	}
	if artifact.Model.Name == "" {
		return Artifact{}, errors.New("artifact has no model name")
	}
	if err := s.client.Set(ctx, s.Key(artifact.Model.Name), content, 0).Err(); err != nil {
		return Artifact{}, fmt.Errorf("redis set %s: %w", s.Key(artifact.Model.Name), err)
	}
	return artifact, nil
}
