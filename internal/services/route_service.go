package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"bustiming/internal/cache"
	"bustiming/internal/domain"
	"bustiming/internal/logging"
	"bustiming/internal/repositories"

	"go.uber.org/zap"
)

const (
	DefaultPopularLimit = 5
	MaxPopularLimit     = 50
)

// RouteCache is the part of cache.RedisCache the services rely on.
type RouteCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
}

// RouteService answers route-name queries over the schedule store.
type RouteService struct {
	Repo     repositories.ScheduleRepository
	Cache    RouteCache
	CacheTTL time.Duration
	Log      *zap.Logger
}

// FindRoutesMatching lists distinct active routes containing substring.
func (s RouteService) FindRoutesMatching(ctx context.Context, substring string) ([]string, error) {
	q := strings.TrimSpace(substring)
	if q == "" {
		return nil, domain.ValidationError{Field: "query", Msg: "search text is required"}
	}
	return cached(ctx, s, cache.KeyRouteSearch(q), func() ([]string, error) {
		routes, err := s.Repo.DistinctRoutes(ctx, true, q)
		if err != nil {
			return nil, domain.UpstreamError{Op: "search routes", Err: err}
		}
		return sortRoutes(routes), nil
	})
}

func (s RouteService) ListDistinctRoutes(ctx context.Context, activeOnly bool) ([]string, error) {
	key := cache.KeyRoutesAll
	if activeOnly {
		key = cache.KeyRoutesActive
	}
	return cached(ctx, s, key, func() ([]string, error) {
		routes, err := s.Repo.DistinctRoutes(ctx, activeOnly, "")
		if err != nil {
			return nil, domain.UpstreamError{Op: "list routes", Err: err}
		}
		return sortRoutes(routes), nil
	})
}

// PopularRoutes ranks routes by their number of active entries. A limit
// outside 1..MaxPopularLimit falls back to DefaultPopularLimit.
func (s RouteService) PopularRoutes(ctx context.Context, limit int) ([]domain.RouteCount, error) {
	if limit <= 0 || limit > MaxPopularLimit {
		limit = DefaultPopularLimit
	}
	return cached(ctx, s, cache.KeyRoutesPopular(limit), func() ([]domain.RouteCount, error) {
		counts, err := s.Repo.PopularRoutes(ctx, limit)
		if err != nil {
			return nil, domain.UpstreamError{Op: "popular routes", Err: err}
		}
		sort.SliceStable(counts, func(i, j int) bool { return counts[i].BusCount > counts[j].BusCount })
		if len(counts) > limit {
			counts = counts[:limit]
		}
		return counts, nil
	})
}

// cached serves key from the cache when configured, falling back to load.
// Cache failures are logged and never fail the request.
func cached[T any](ctx context.Context, s RouteService, key string, load func() (T, error)) (T, error) {
	log := logging.OrNop(s.Log)
	if s.Cache != nil {
		var hit T
		ok, err := s.Cache.GetJSON(ctx, key, &hit)
		if err != nil {
			log.Warn("route cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return hit, nil
		}
	}

	val, err := load()
	if err != nil {
		return val, err
	}

	if s.Cache != nil {
		if err := s.Cache.SetJSON(ctx, key, val, s.CacheTTL); err != nil {
			log.Warn("route cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return val, nil
}

func sortRoutes(routes []string) []string {
	sort.SliceStable(routes, func(i, j int) bool {
		a, b := strings.ToLower(routes[i]), strings.ToLower(routes[j])
		if a != b {
			return a < b
		}
		return routes[i] < routes[j]
	})
	return routes
}
