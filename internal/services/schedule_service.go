package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bustiming/internal/cache"
	intdb "bustiming/internal/db"
	"bustiming/internal/domain"
	"bustiming/internal/domain/models"
	"bustiming/internal/logging"
	"bustiming/internal/repositories"
	"bustiming/internal/utils"

	"go.uber.org/zap"
)

// ScheduleService backs the administrator's timetable CRUD.
type ScheduleService struct {
	Repo      repositories.ScheduleRepository
	Cache     RouteCache
	Log       *zap.Logger
	RequestID string
}

// ScheduleInput is the create payload.
type ScheduleInput struct {
	BusName          string   `json:"busName"`
	BusNumber        string   `json:"busNumber"`
	Route            string   `json:"route"`
	DepartureTime    string   `json:"departureTime"`
	ArrivalTime      string   `json:"arrivalTime"`
	FrequencyMinutes *int     `json:"frequencyMinutes"`
	OperatingDays    []string `json:"operatingDays"`
	IsActive         *bool    `json:"isActive"`
	BusType          string   `json:"busType"`
	Fare             *float64 `json:"fare"`
	DurationMinutes  *int     `json:"durationMinutes"`
}

func (in ScheduleInput) toEntry() models.ScheduleEntry {
	e := models.ScheduleEntry{
		BusName:          in.BusName,
		BusNumber:        in.BusNumber,
		Route:            in.Route,
		DepartureTime:    in.DepartureTime,
		ArrivalTime:      in.ArrivalTime,
		FrequencyMinutes: in.FrequencyMinutes,
		OperatingDays:    in.OperatingDays,
		IsActive:         true,
		BusType:          in.BusType,
		Fare:             in.Fare,
		DurationMinutes:  in.DurationMinutes,
	}
	if in.IsActive != nil {
		e.IsActive = *in.IsActive
	}
	return e
}

func (s ScheduleService) List(ctx context.Context) ([]models.ScheduleEntry, error) {
	entries, err := s.Repo.ListAll(ctx)
	if err != nil {
		return nil, domain.UpstreamError{Op: "list schedules", Err: err}
	}
	return entries, nil
}

func (s ScheduleService) Get(ctx context.Context, id int64) (models.ScheduleEntry, error) {
	e, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return e, domain.NotFoundError{Resource: "bus", Err: err}
	}
	if err != nil {
		return e, domain.UpstreamError{Op: "get schedule", Err: err}
	}
	return e, nil
}

// Create validates in and stores it. A duplicate busNumber is rejected
// before anything is written.
func (s ScheduleService) Create(ctx context.Context, in ScheduleInput) (models.ScheduleEntry, error) {
	e := in.toEntry()
	if err := normalizeEntry(&e); err != nil {
		return e, err
	}
	if err := s.ensureUniqueBusNumber(ctx, e.BusNumber, 0); err != nil {
		return e, err
	}

	id, err := s.Repo.Create(ctx, e)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return e, duplicateBusNumber()
		}
		return e, domain.UpstreamError{Op: "create schedule", Err: err}
	}
	s.invalidateRoutes(ctx)
	utils.LogEvent(logging.OrNop(s.Log), s.RequestID, "schedule", "create", "bus added",
		zap.Int64("id", id), zap.String("bus_number", e.BusNumber))

	return s.Get(ctx, id)
}

// Update applies only the keys present in rawJSON. Blank strings keep the
// stored value; an explicit null frequencyMinutes turns the entry back into
// a single daily run.
func (s ScheduleService) Update(ctx context.Context, id int64, rawJSON []byte) (models.ScheduleEntry, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return existing, err
	}

	merged, err := buildSchedulePatch(existing, rawJSON)
	if err != nil {
		return existing, err
	}
	if err := normalizeEntry(&merged); err != nil {
		return existing, err
	}
	if merged.BusNumber != existing.BusNumber {
		if err := s.ensureUniqueBusNumber(ctx, merged.BusNumber, id); err != nil {
			return existing, err
		}
	}

	if err := s.Repo.Update(ctx, merged); err != nil {
		if intdb.IsDuplicateKey(err) {
			return existing, duplicateBusNumber()
		}
		return existing, domain.UpstreamError{Op: "update schedule", Err: err}
	}
	s.invalidateRoutes(ctx)
	utils.LogEvent(logging.OrNop(s.Log), s.RequestID, "schedule", "update", "bus updated",
		zap.Int64("id", id), zap.String("bus_number", merged.BusNumber))

	return s.Get(ctx, id)
}

func (s ScheduleService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.NotFoundError{Resource: "bus"}
	}
	removed, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return domain.UpstreamError{Op: "delete schedule", Err: err}
	}
	if !removed {
		return domain.NotFoundError{Resource: "bus"}
	}
	s.invalidateRoutes(ctx)
	utils.LogEvent(logging.OrNop(s.Log), s.RequestID, "schedule", "delete", "bus deleted", zap.Int64("id", id))
	return nil
}

// Seed replaces the whole timetable with the bundled sample data.
func (s ScheduleService) Seed(ctx context.Context) (int, error) {
	entries := SampleSchedules()
	for i := range entries {
		if err := normalizeEntry(&entries[i]); err != nil {
			return 0, fmt.Errorf("sample %s: %w", entries[i].BusNumber, err)
		}
	}
	if err := s.Repo.ReplaceAll(ctx, entries); err != nil {
		return 0, domain.UpstreamError{Op: "seed schedules", Err: err}
	}
	s.invalidateRoutes(ctx)
	utils.LogEvent(logging.OrNop(s.Log), s.RequestID, "schedule", "seed", "sample timetable loaded", zap.Int("count", len(entries)))
	return len(entries), nil
}

func (s ScheduleService) ensureUniqueBusNumber(ctx context.Context, busNumber string, excludeID int64) error {
	n, err := s.Repo.CountByBusNumber(ctx, busNumber, excludeID)
	if err != nil {
		return domain.UpstreamError{Op: "check bus number", Err: err}
	}
	if n > 0 {
		return duplicateBusNumber()
	}
	return nil
}

func (s ScheduleService) invalidateRoutes(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.DeletePattern(ctx, cache.PatternRoutes); err != nil {
		logging.OrNop(s.Log).Warn("route cache invalidation failed", zap.Error(err))
	}
}

func duplicateBusNumber() error {
	return domain.ValidationError{Field: "busNumber", Msg: "bus number already exists"}
}

// normalizeEntry trims and canonicalizes e in place and enforces the field
// rules shared by create and update.
func normalizeEntry(e *models.ScheduleEntry) error {
	e.BusName = utils.NormalizeSpace(e.BusName)
	e.BusNumber = strings.ToUpper(utils.NormalizeSpace(e.BusNumber))
	e.Route = utils.NormalizeSpace(e.Route)
	e.BusType = utils.NormalizeSpace(e.BusType)

	switch {
	case e.BusName == "":
		return domain.ValidationError{Field: "busName", Msg: "is required"}
	case e.BusNumber == "":
		return domain.ValidationError{Field: "busNumber", Msg: "is required"}
	case e.Route == "":
		return domain.ValidationError{Field: "route", Msg: "is required"}
	case strings.TrimSpace(e.DepartureTime) == "":
		return domain.ValidationError{Field: "departureTime", Msg: "is required"}
	case strings.TrimSpace(e.ArrivalTime) == "":
		return domain.ValidationError{Field: "arrivalTime", Msg: "is required"}
	}

	dep, err := models.ParseTimeOfDay(e.DepartureTime)
	if err != nil {
		return domain.ValidationError{Field: "departureTime", Msg: "must be HH:MM (24h)", Err: err}
	}
	arr, err := models.ParseTimeOfDay(e.ArrivalTime)
	if err != nil {
		return domain.ValidationError{Field: "arrivalTime", Msg: "must be HH:MM (24h)", Err: err}
	}
	if arr == dep {
		return domain.ValidationError{Field: "arrivalTime", Msg: "must differ from departureTime"}
	}
	e.DepartureTime = dep.String()
	e.ArrivalTime = arr.String()

	if e.FrequencyMinutes != nil && (*e.FrequencyMinutes <= 0 || *e.FrequencyMinutes > models.MinutesPerDay) {
		return domain.ValidationError{Field: "frequencyMinutes", Msg: "must be between 1 and 1440"}
	}
	if e.Fare != nil && *e.Fare < 0 {
		return domain.ValidationError{Field: "fare", Msg: "must not be negative"}
	}
	if e.DurationMinutes != nil && *e.DurationMinutes <= 0 {
		return domain.ValidationError{Field: "durationMinutes", Msg: "must be positive"}
	}

	days, err := normalizeDays(e.OperatingDays)
	if err != nil {
		return err
	}
	e.OperatingDays = days
	return nil
}

func normalizeDays(in []string) ([]string, error) {
	seen := map[string]bool{}
	out := []string{}
	for _, raw := range in {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		d, ok := models.NormalizeDay(raw)
		if !ok {
			return nil, domain.ValidationError{Field: "operatingDays", Msg: fmt.Sprintf("unknown day %q", raw)}
		}
		if d == models.Daily {
			return []string{models.Daily}, nil
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return []string{models.Daily}, nil
	}
	return out, nil
}

// buildSchedulePatch merges payload into existing respecting key presence.
// Keys are matched case-insensitively in camelCase or snake_case.
func buildSchedulePatch(existing models.ScheduleEntry, rawJSON []byte) (models.ScheduleEntry, error) {
	var payloadMap map[string]json.RawMessage
	if err := json.Unmarshal(rawJSON, &payloadMap); err != nil {
		return existing, domain.ValidationError{Field: "body", Msg: "payload must be a JSON object", Err: err}
	}
	payload := map[string]json.RawMessage{}
	for k, v := range payloadMap {
		payload[strings.ToLower(strings.ReplaceAll(k, "_", ""))] = v
	}
	field := func(name string) (json.RawMessage, bool) {
		v, ok := payload[strings.ToLower(name)]
		return v, ok
	}

	merged := existing

	setString := func(name string, dst *string) error {
		raw, ok := field(name)
		if !ok {
			return nil
		}
		var v *string
		if err := json.Unmarshal(raw, &v); err != nil {
			return domain.ValidationError{Field: name, Msg: "must be a string", Err: err}
		}
		if v != nil && strings.TrimSpace(*v) != "" {
			*dst = *v
		}
		return nil
	}
	for name, dst := range map[string]*string{
		"busName":       &merged.BusName,
		"busNumber":     &merged.BusNumber,
		"route":         &merged.Route,
		"departureTime": &merged.DepartureTime,
		"arrivalTime":   &merged.ArrivalTime,
	} {
		if err := setString(name, dst); err != nil {
			return existing, err
		}
	}

	if raw, ok := field("busType"); ok {
		var v *string
		if err := json.Unmarshal(raw, &v); err != nil {
			return existing, domain.ValidationError{Field: "busType", Msg: "must be a string", Err: err}
		}
		merged.BusType = ""
		if v != nil {
			merged.BusType = *v
		}
	}

	if raw, ok := field("frequencyMinutes"); ok {
		v, err := decodeOptionalInt(raw)
		if err != nil {
			return existing, domain.ValidationError{Field: "frequencyMinutes", Msg: "must be a whole number of minutes", Err: err}
		}
		merged.FrequencyMinutes = v
	}
	if raw, ok := field("durationMinutes"); ok {
		v, err := decodeOptionalInt(raw)
		if err != nil {
			return existing, domain.ValidationError{Field: "durationMinutes", Msg: "must be a whole number of minutes", Err: err}
		}
		merged.DurationMinutes = v
	}
	if raw, ok := field("fare"); ok {
		var v *float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return existing, domain.ValidationError{Field: "fare", Msg: "must be a number", Err: err}
		}
		merged.Fare = v
	}

	if raw, ok := field("operatingDays"); ok {
		var v []string
		if err := json.Unmarshal(raw, &v); err != nil {
			return existing, domain.ValidationError{Field: "operatingDays", Msg: "must be a list of day names", Err: err}
		}
		if len(v) > 0 {
			merged.OperatingDays = v
		}
	}

	if raw, ok := field("isActive"); ok {
		var v *bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return existing, domain.ValidationError{Field: "isActive", Msg: "must be true or false", Err: err}
		}
		if v != nil {
			merged.IsActive = *v
		}
	}

	return merged, nil
}

// decodeOptionalInt accepts null, a JSON number, or a numeric string.
func decodeOptionalInt(raw json.RawMessage) (*int, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	switch val := v.(type) {
	case nil:
		return nil, nil
	case float64:
		if val != float64(int(val)) {
			return nil, fmt.Errorf("not an integer: %v", val)
		}
		n := int(val)
		return &n, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return nil, err
		}
		return &n, nil
	default:
		return nil, fmt.Errorf("unsupported value %v", val)
	}
}
