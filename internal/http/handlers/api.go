package handlers

import (
	"database/sql"
	"time"

	"bustiming/internal/http/middleware"
	"bustiming/internal/repositories"
	"bustiming/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// API holds what the handlers need to build per-request services.
type API struct {
	DB            *sql.DB
	Cache         services.RouteCache
	CacheTTL      time.Duration
	Location      *time.Location
	AllowRollover bool
	JWTSecret     []byte
	JWTTTL        time.Duration
	Bootstrap     services.DefaultAdmin
	Log           *zap.Logger
	Now           func() time.Time
}

func (a *API) scheduleRepo() repositories.ScheduleRepository {
	return repositories.ScheduleRepository{DB: a.DB}
}

func (a *API) departures(c *gin.Context) services.DepartureService {
	return services.DepartureService{
		Repo:          a.scheduleRepo(),
		Location:      a.Location,
		AllowRollover: a.AllowRollover,
		Now:           a.Now,
		Log:           a.Log,
		RequestID:     middleware.GetRequestID(c),
	}
}

func (a *API) routes() services.RouteService {
	return services.RouteService{
		Repo:     a.scheduleRepo(),
		Cache:    a.Cache,
		CacheTTL: a.CacheTTL,
		Log:      a.Log,
	}
}

func (a *API) schedules(c *gin.Context) services.ScheduleService {
	return services.ScheduleService{
		Repo:      a.scheduleRepo(),
		Cache:     a.Cache,
		Log:       a.Log,
		RequestID: middleware.GetRequestID(c),
	}
}

func (a *API) timetable() services.TimetableService {
	return services.TimetableService{
		Repo:     a.scheduleRepo(),
		Location: a.Location,
		Now:      a.Now,
	}
}

// Auth is exported so the router can hand it to middleware.RequireAdmin.
func (a *API) Auth() services.AuthService {
	return services.AuthService{
		Repo:    repositories.AdminRepository{DB: a.DB},
		Secret:  a.JWTSecret,
		TTL:     a.JWTTTL,
		Now:     a.Now,
		Default: a.Bootstrap,
		Log:     a.Log,
	}
}
