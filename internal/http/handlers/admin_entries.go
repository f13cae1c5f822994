package handlers

import (
	"fmt"
	"net/http"

	"bustiming/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/entries
func (a *API) ListEntries(c *gin.Context) {
	entries, err := a.schedules(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "buses": entries, "total": len(entries)})
}

// GET /api/admin/entries/:id
func (a *API) GetEntry(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	e, err := a.schedules(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bus": e})
}

// POST /api/admin/entries
func (a *API) CreateEntry(c *gin.Context) {
	var in services.ScheduleInput
	if !BindJSONOrError(c, &in) {
		return
	}
	e, err := a.schedules(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Bus added successfully", "bus": e})
}

// PUT /api/admin/entries/:id
func (a *API) UpdateEntry(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	raw, ok := readRawBody(c)
	if !ok {
		return
	}
	e, err := a.schedules(c).Update(c.Request.Context(), id, raw)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bus updated successfully", "bus": e})
}

// DELETE /api/admin/entries/:id
func (a *API) DeleteEntry(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := a.schedules(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bus deleted successfully"})
}

// POST /api/admin/seed
func (a *API) SeedEntries(c *gin.Context) {
	n, err := a.schedules(c).Seed(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": n, "message": fmt.Sprintf("%d sample buses added successfully", n)})
}

// GET /api/admin/entries/timetable.pdf?route=
func (a *API) TimetablePDF(c *gin.Context) {
	pdf, filename, err := a.timetable().Render(c.Request.Context(), c.Query("route"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
