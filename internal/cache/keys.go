package cache

import (
	"fmt"
	"strings"
)

const (
	KeyRoutesAll    = "routes:all"
	KeyRoutesActive = "routes:active"
	// PatternRoutes matches every route-derived key; schedule writes drop them.
	PatternRoutes = "routes:*"
)

func KeyRouteSearch(query string) string {
	return fmt.Sprintf("routes:search:%s", strings.ToLower(strings.TrimSpace(query)))
}

func KeyRoutesPopular(limit int) string {
	return fmt.Sprintf("routes:popular:%d", limit)
}
