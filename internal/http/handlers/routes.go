package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GET /api/routes
func (a *API) ListRoutes(c *gin.Context) {
	routes, err := a.routes().ListDistinctRoutes(c.Request.Context(), true)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "routes": routes})
}

// GET /api/routes/popular?limit=
func (a *API) PopularRoutes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	counts, err := a.routes().PopularRoutes(c.Request.Context(), limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "routes": counts})
}

// GET /api/routes/search/:query
func (a *API) SearchRoutes(c *gin.Context) {
	routes, err := a.routes().FindRoutesMatching(c.Request.Context(), c.Param("query"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "query": c.Param("query"), "routes": routes})
}

// GET /api/routes/:route
func (a *API) RouteDepartures(c *gin.Context) {
	out, err := a.departures(c).UpcomingForRoute(c.Request.Context(), c.Param("route"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	payload := gin.H{
		"success":              true,
		"route":                out.Route,
		"totalMatchingEntries": out.TotalMatchingEntries,
		"upcoming":             out.Upcoming,
		"hasMore":              out.HasMore,
		"currentTime":          out.CurrentTime,
		"currentDate":          out.CurrentDate,
	}
	if out.Message != "" {
		payload["message"] = out.Message
	}
	if out.SkippedEntries > 0 {
		payload["skippedEntries"] = out.SkippedEntries
	}
	c.JSON(http.StatusOK, payload)
}
