package services

import (
	"context"
	"strings"
	"time"

	"bustiming/internal/domain"
	"bustiming/internal/logging"
	"bustiming/internal/repositories"
	"bustiming/internal/utils"

	"go.uber.org/zap"
)

// MaxUpcoming caps the departures returned for one route query.
const MaxUpcoming = 10

const noUpcomingMessage = "no upcoming buses"

// DepartureService resolves a traveler's route query into ranked departures.
type DepartureService struct {
	Repo          repositories.ScheduleRepository
	Location      *time.Location
	AllowRollover bool
	Now           func() time.Time
	Log           *zap.Logger
	RequestID     string
}

type RouteDepartures struct {
	Route                string             `json:"route"`
	TotalMatchingEntries int                `json:"totalMatchingEntries"`
	Upcoming             []domain.Departure `json:"upcoming"`
	HasMore              bool               `json:"hasMore"`
	CurrentTime          string             `json:"currentTime"`
	CurrentDate          string             `json:"currentDate"`
	Message              string             `json:"message,omitempty"`
	SkippedEntries       int                `json:"skippedEntries,omitempty"`
}

// UpcomingForRoute loads active entries whose route contains route and ranks
// the ones still departing today. Malformed entries are logged and skipped.
func (s DepartureService) UpcomingForRoute(ctx context.Context, route string) (RouteDepartures, error) {
	route = strings.TrimSpace(route)
	if route == "" {
		return RouteDepartures{}, domain.ValidationError{Field: "route", Msg: "route is required"}
	}

	entries, err := s.Repo.ListActiveByRoute(ctx, route)
	if err != nil {
		return RouteDepartures{}, domain.UpstreamError{Op: "list schedules", Err: err}
	}

	now := s.now()
	res := domain.ComputeUpcoming(entries, now, domain.UpcomingOptions{AllowRollover: s.AllowRollover})

	log := logging.OrNop(s.Log)
	for _, f := range res.Failures {
		log.Warn("skipping malformed schedule entry",
			zap.String("request_id", s.RequestID),
			zap.Int64("entry_id", f.EntryID),
			zap.String("bus_number", f.BusNumber),
			zap.Error(f.Err),
		)
	}

	out := RouteDepartures{
		Route:                route,
		TotalMatchingEntries: res.TotalMatching,
		Upcoming:             res.Upcoming,
		CurrentTime:          utils.FormatClock(now),
		CurrentDate:          utils.FormatDate(now),
		SkippedEntries:       len(res.Failures),
	}
	if len(out.Upcoming) > MaxUpcoming {
		out.Upcoming = out.Upcoming[:MaxUpcoming]
		out.HasMore = true
	}
	if len(out.Upcoming) == 0 {
		out.Message = noUpcomingMessage
	}

	utils.LogEvent(log, s.RequestID, "departure", "upcoming_for_route", "resolved upcoming departures",
		zap.String("route", route),
		zap.Int("matching", res.TotalMatching),
		zap.Int("upcoming", len(res.Upcoming)),
	)
	return out, nil
}

func (s DepartureService) now() time.Time {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	if s.Location != nil {
		now = now.In(s.Location)
	}
	return now
}
