package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	pkglog "SharedBoard/internal/log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Backplane carries frames between relay instances. Subscribe must not
// deliver frames this instance published.
type Backplane interface {
	Publish(ctx context.Context, data []byte) error
	Subscribe(ctx context.Context) (<-chan []byte, error)
	Close() error
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// envelope tags a frame with the instance that published it.
type envelope struct {
	Origin string          `json:"origin"`
	Frame  json.RawMessage `json:"frame"`
}

// RedisBackplane implements Backplane over one Redis pub/sub channel.
type RedisBackplane struct {
	client  *redis.Client
	channel string
	origin  string

	mu     sync.Mutex
	pubsub *redis.PubSub
}

// NewRedisBackplane connects to Redis and checks the connection.
func NewRedisBackplane(ctx context.Context, cfg RedisConfig) (*RedisBackplane, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	channel := cfg.Channel
	if channel == "" {
		channel = "sharedboard:frames"
	}
	return &RedisBackplane{client: client, channel: channel, origin: uuid.NewString()}, nil
}

func (r *RedisBackplane) Publish(ctx context.Context, data []byte) error {
	msg, err := encodeEnvelope(r.origin, data)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, msg).Err()
}

// Subscribe listens on the channel until ctx is done.
func (r *RedisBackplane) Subscribe(ctx context.Context) (<-chan []byte, error) {
	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.mu.Lock()
	r.pubsub = pubsub
	r.mu.Unlock()

	out := make(chan []byte, 256)
	go r.processMessages(ctx, pubsub, out)
	return out, nil
}

func (r *RedisBackplane) Close() error {
	r.mu.Lock()
	pubsub := r.pubsub
	r.pubsub = nil
	r.mu.Unlock()
	if pubsub != nil {
		pubsub.Close()
	}
	return r.client.Close()
}

func (r *RedisBackplane) processMessages(ctx context.Context, pubsub *redis.PubSub, out chan<- []byte) {
	defer close(out)
	l := pkglog.L()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			origin, data, err := decodeEnvelope([]byte(msg.Payload))
			if err != nil {
				l.Warn().Err(err).Msg("dropping backplane message")
				continue
			}
			if origin == r.origin {
				continue
			}
			select {
			case out <- data:
			case <-ctx.Done():
				return
			}
		}
	}
}

func encodeEnvelope(origin string, data []byte) ([]byte, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("backplane: frame is not valid json")
	}
	return json.Marshal(envelope{Origin: origin, Frame: data})
}

func decodeEnvelope(msg []byte) (string, []byte, error) {
	var env envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return "", nil, fmt.Errorf("backplane: %w", err)
	}
	if env.Origin == "" || len(env.Frame) == 0 {
		return "", nil, fmt.Errorf("backplane: incomplete envelope")
	}
	return env.Origin, []byte(env.Frame), nil
}
