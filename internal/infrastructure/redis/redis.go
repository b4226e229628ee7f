package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Sunshower1260/VisionAid/internal/entity"
	"github.com/redis/go-redis/v9"
)

// LocationChannel канал Pub/Sub для событий обновления координат волонтеров.
const LocationChannel = "volunteer.location_updated"

// RedisRepo реализация очереди уведомлений и публикации событий на основе Redis.
type RedisRepo struct {
	Client *redis.Client
}

// New разбирает URL вида redis://[:password@]host:port/db и проверяет подключение.
func New(ctx context.Context, redisURL string) (*RedisRepo, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisRepo{Client: client}, nil
}

// Close закрывает соединение.
func (r *RedisRepo) Close() {
	r.Client.Close()
}

// Ping проверяет доступность Redis.
func (r *RedisRepo) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// Queue (Очередь)

// Enqueue добавляет задачу в очередь списка (LPush).
func (r *RedisRepo) Enqueue(ctx context.Context, queueName string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.Client.LPush(ctx, queueName, data).Err()
}

// Dequeue извлекает задачу из очереди (BRPop - блокирующее чтение до отмены контекста).
func (r *RedisRepo) Dequeue(ctx context.Context, queueName string) (string, error) {
	result, err := r.Client.BRPop(ctx, 0, queueName).Result()
	if err != nil {
		return "", err
	}
	// result содержит [имя_очереди, значение]
	if len(result) < 2 {
		return "", fmt.Errorf("redis pop unexpected result")
	}
	return result[1], nil
}

// Events (События)

// PublishLocation публикует событие обновления координат в LocationChannel.
func (r *RedisRepo) PublishLocation(ctx context.Context, event entity.LocationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.Client.Publish(ctx, LocationChannel, data).Err()
}
