package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	intconfig "bustiming/internal/config"
	intdb "bustiming/internal/db"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for /api/endpoints.
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Perdoor bus timing API is running", "time": a.clock().Format(time.RFC3339)})
}

func (a *API) DBCheck(c *gin.Context) {
	db := a.DB
	if db == nil {
		db = intconfig.DB
	}
	if db == nil {
		respondError(c, http.StatusServiceUnavailable, "upstream_error", "database is not connected", nil)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusServiceUnavailable, "upstream_error", "database is unreachable", nil)
		return
	}

	tables := gin.H{}
	for _, name := range []string{intdb.TableSchedules, intdb.TableAdmins} {
		tables[name] = intdb.HasTable(ctx, db, name)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+intdb.TableSchedules).Scan(&count); err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusServiceUnavailable, "upstream_error", "database query failed", gin.H{"tables": tables})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK", "buses_in_db": count, "tables": tables})
}

func (a *API) Endpoints(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		respondError(c, http.StatusServiceUnavailable, "not_ready", "router is not ready", nil)
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method": rt.Method,
			"path":   rt.Path,
		})
	}
	c.JSON(http.StatusOK, gin.H{"endpoints": out})
}

func (a *API) clock() time.Time {
	now := time.Now()
	if a.Now != nil {
		now = a.Now()
	}
	if a.Location != nil {
		now = now.In(a.Location)
	}
	return now
}
