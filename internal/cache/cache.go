// Package cache es un caché TTL en memoria para respuestas que no cambian.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

type item struct {
	value      any
	expiration int64
}

type Cache struct {
	items map[string]item
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

// New crea un caché con el TTL por defecto. La limpieza no arranca hasta Start.
func New(defaultTTL time.Duration) *Cache {
	return &Cache{
		items: make(map[string]item),
		ttl:   defaultTTL,
		now:   time.Now,
	}
}

// Start limpia las entradas expiradas cada interval hasta que ctx se cancela.
func (c *Cache) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanupExpired()
		}
	}
}

// Set guarda un valor; ttl opcional reemplaza al de por defecto.
func (c *Cache) Set(key string, value any, ttl ...time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	duration := c.ttl
	if len(ttl) > 0 {
		duration = ttl[0]
	}

	c.items[key] = item{
		value:      value,
		expiration: c.now().Add(duration).UnixNano(),
	}
}

// GetValue devuelve el valor si existe y no ha expirado.
func (c *Cache) GetValue(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, found := c.items[key]
	if !found || c.now().UnixNano() > it.expiration {
		return nil, false
	}
	return it.value, true
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// DeleteByPrefix elimina todas las claves que empiecen con prefix.
func (c *Cache) DeleteByPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item)
}

func (c *Cache) cleanupExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UnixNano()
	for key, it := range c.items {
		if now > it.expiration {
			delete(c.items, key)
		}
	}
}

// Size cuenta también las entradas expiradas que aún no se han limpiado.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Marshal serializa value a JSON y lo guarda.
func (c *Cache) Marshal(key string, value any, ttl ...time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.Set(key, data, ttl...)
	return nil
}

// Unmarshal lee la clave y la deserializa en target. found es false si no hay entrada válida.
func (c *Cache) Unmarshal(key string, target any) (found bool, err error) {
	data, ok := c.GetValue(key)
	if !ok {
		return false, nil
	}

	raw, ok := data.([]byte)
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return false, err
	}
	return true, nil
}
