package websocket

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// PubSubProvider определяет интерфейс для провайдеров публикации/подписки
type PubSubProvider interface {
	// Publish публикует сообщение в указанный канал
	Publish(channel string, message []byte) error

	// Subscribe подписывается на канал; канал сообщений закрывается при отмене ctx
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)

	// Close освобождает подписки провайдера
	Close() error
}

// NoOpPubSub используется в одиночном режиме: публикации никуда не уходят
type NoOpPubSub struct{}

// Publish ничего не делает
func (p *NoOpPubSub) Publish(channel string, message []byte) error {
	return nil
}

// Subscribe возвращает канал, который закрывается вместе с ctx
func (p *NoOpPubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

// Close ничего не делает
func (p *NoOpPubSub) Close() error {
	return nil
}

// RedisPubSub реализует PubSubProvider поверх общего redis.UniversalClient.
// Клиент принадлежит вызывающему коду и не закрывается в Close.
type RedisPubSub struct {
	client redis.UniversalClient
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	subs   map[string]*redis.PubSub
}

// NewRedisPubSub создает провайдер и проверяет соединение
func NewRedisPubSub(client redis.UniversalClient) (*RedisPubSub, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil for RedisPubSub")
	}

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("provided redis client failed ping check: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RedisPubSub{
		client: client,
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[string]*redis.PubSub),
	}, nil
}

// Publish публикует сообщение в указанный канал
func (p *RedisPubSub) Publish(channel string, message []byte) error {
	if err := p.client.Publish(p.ctx, channel, message).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe подписывается на канал Redis и пересылает payload подписчику
func (p *RedisPubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	sub := p.client.Subscribe(p.ctx, channel)
	if _, err := sub.Receive(p.ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to Redis channel %s: %w", channel, err)
	}

	p.mu.Lock()
	if prev, ok := p.subs[channel]; ok {
		prev.Close()
	}
	p.subs[channel] = sub
	p.mu.Unlock()

	log.Printf("[RedisPubSub] Подписка на канал '%s' активна", channel)

	out := make(chan []byte, 100)
	go func() {
		defer func() {
			p.mu.Lock()
			if p.subs[channel] == sub {
				delete(p.subs, channel)
			}
			p.mu.Unlock()
			sub.Close()
			close(out)
		}()

		redisCh := sub.Channel()
		for {
			select {
			case msg, ok := <-redisCh:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				case <-p.ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			case <-p.ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Close отменяет все подписки провайдера
func (p *RedisPubSub) Close() error {
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for channel, sub := range p.subs {
		if err := sub.Close(); err != nil {
			log.Printf("[RedisPubSub] Ошибка закрытия подписки '%s': %v", channel, err)
			lastErr = err
		}
		delete(p.subs, channel)
	}
	return lastErr
}
