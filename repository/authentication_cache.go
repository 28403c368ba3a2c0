package repository

import (
	"context"
	"sync"
	"time"

	"interview-gate-service/domain"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/json"
)

type cacheItem struct {
	data      []byte
	expiredAt time.Time
}

type AuthenticationCache struct {
	store    map[string]cacheItem
	lock     sync.RWMutex
	duration time.Duration
}

func NewAuthenticationCache(duration time.Duration) *AuthenticationCache {
	return &AuthenticationCache{
		store:    map[string]cacheItem{},
		duration: duration,
	}
}

func (r *AuthenticationCache) Get(ctx context.Context, token string) (*domain.AuthData, error) {
	r.lock.RLock()
	item, ok := r.store[token]
	r.lock.RUnlock()
	if !ok || time.Now().After(item.expiredAt) {
		return nil, domain.ErrAuthenticationCacheMiss
	}

	result := domain.AuthData{}
	err := json.Unmarshal(item.data, &result)
	if err != nil {
		return nil, errors.WithMessage(err, "json unmarshal auth data")
	}

	return &result, nil
}

func (r *AuthenticationCache) Set(ctx context.Context, token string, data domain.AuthData) error {
	value, err := json.Marshal(data)
	if err != nil {
		return errors.WithMessage(err, "json marshal auth data")
	}

	r.lock.Lock()
	r.store[token] = cacheItem{
		data:      value,
		expiredAt: time.Now().Add(r.duration),
	}
	r.lock.Unlock()

	return nil
}
