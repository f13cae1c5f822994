package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var scheduleColumns = []string{
	"id", "bus_name", "bus_number", "route", "departure_time", "arrival_time",
	"frequency_minutes", "operating_days", "is_active", "bus_type", "fare",
	"duration_minutes", "created_at", "updated_at",
}

var adminColumns = []string{
	"id", "username", "email", "password_hash", "role", "is_active", "created_at", "updated_at",
}

// memoryCache is an in-process RouteCache for tests.
type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
	gets    int
	hits    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func scheduleRow(rows *sqlmock.Rows, id int64, name, number, route, dep, arr string, freq any) *sqlmock.Rows {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return rows.AddRow(id, name, number, route, dep, arr, freq, "Daily", true, "", nil, nil, now, now)
}
