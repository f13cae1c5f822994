package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	intconfig "bustiming/internal/config"
	intdb "bustiming/internal/db"
	"bustiming/internal/domain"
	"bustiming/internal/domain/models"
)

// ScheduleRepository wraps DB access for bus_schedules.
type ScheduleRepository struct {
	DB *sql.DB
}

func (r ScheduleRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const scheduleSelect = `
	SELECT
		id,
		bus_name,
		bus_number,
		route,
		departure_time,
		arrival_time,
		frequency_minutes,
		COALESCE(operating_days, ''),
		is_active,
		COALESCE(bus_type, ''),
		fare,
		duration_minutes,
		created_at,
		updated_at
	FROM bus_schedules
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (models.ScheduleEntry, error) {
	var (
		e        models.ScheduleEntry
		freq     sql.NullInt64
		days     string
		fare     sql.NullFloat64
		duration sql.NullInt64
	)
	if err := row.Scan(
		&e.ID,
		&e.BusName,
		&e.BusNumber,
		&e.Route,
		&e.DepartureTime,
		&e.ArrivalTime,
		&freq,
		&days,
		&e.IsActive,
		&e.BusType,
		&fare,
		&duration,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return e, err
	}
	if freq.Valid {
		v := int(freq.Int64)
		e.FrequencyMinutes = &v
	}
	if fare.Valid {
		v := fare.Float64
		e.Fare = &v
	}
	if duration.Valid {
		v := int(duration.Int64)
		e.DurationMinutes = &v
	}
	e.OperatingDays = DecodeDays(days)
	return e, nil
}

func (r ScheduleRepository) list(ctx context.Context, query string, args ...any) ([]models.ScheduleEntry, error) {
	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ScheduleEntry, 0)
	for rows.Next() {
		e, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListActiveByRoute returns active entries whose route contains substr
// (case-insensitive), ordered by departure time.
func (r ScheduleRepository) ListActiveByRoute(ctx context.Context, substr string) ([]models.ScheduleEntry, error) {
	return r.list(ctx, scheduleSelect+`
		WHERE is_active = 1 AND LOWER(route) LIKE ?
		ORDER BY departure_time ASC, id ASC
	`, containsPattern(substr))
}

// ListAll returns every entry, active or not, for the admin view.
func (r ScheduleRepository) ListAll(ctx context.Context) ([]models.ScheduleEntry, error) {
	return r.list(ctx, scheduleSelect+` ORDER BY route ASC, departure_time ASC, id ASC`)
}

// ListActive returns active entries, optionally limited to one exact route.
func (r ScheduleRepository) ListActive(ctx context.Context, route string) ([]models.ScheduleEntry, error) {
	route = strings.TrimSpace(route)
	if route == "" {
		return r.list(ctx, scheduleSelect+` WHERE is_active = 1 ORDER BY route ASC, departure_time ASC, id ASC`)
	}
	return r.list(ctx, scheduleSelect+` WHERE is_active = 1 AND route = ? ORDER BY departure_time ASC, id ASC`, route)
}

// GetByID returns sql.ErrNoRows when the entry does not exist.
func (r ScheduleRepository) GetByID(ctx context.Context, id int64) (models.ScheduleEntry, error) {
	if id <= 0 {
		return models.ScheduleEntry{}, sql.ErrNoRows
	}
	return scanSchedule(r.db().QueryRowContext(ctx, scheduleSelect+` WHERE id = ?`, id))
}

// CountByBusNumber counts entries using busNumber, ignoring excludeID.
func (r ScheduleRepository) CountByBusNumber(ctx context.Context, busNumber string, excludeID int64) (int, error) {
	var n int
	err := r.db().QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bus_schedules WHERE bus_number = ? AND id <> ?
	`, busNumber, excludeID).Scan(&n)
	return n, err
}

func (r ScheduleRepository) Create(ctx context.Context, e models.ScheduleEntry) (int64, error) {
	return insertSchedule(ctx, r.db(), e)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertSchedule(ctx context.Context, ex execer, e models.ScheduleEntry) (int64, error) {
	now := time.Now()
	res, err := ex.ExecContext(ctx, `
		INSERT INTO bus_schedules
			(bus_name, bus_number, route, departure_time, arrival_time, frequency_minutes,
			 operating_days, is_active, bus_type, fare, duration_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.BusName,
		e.BusNumber,
		e.Route,
		e.DepartureTime,
		e.ArrivalTime,
		nullableInt(e.FrequencyMinutes),
		EncodeDays(e.OperatingDays),
		e.IsActive,
		intdb.NullIfEmpty(e.BusType),
		nullableFloat(e.Fare),
		nullableInt(e.DurationMinutes),
		now,
		now,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update overwrites every column of the row identified by e.ID.
func (r ScheduleRepository) Update(ctx context.Context, e models.ScheduleEntry) error {
	_, err := r.db().ExecContext(ctx, `
		UPDATE bus_schedules
		SET bus_name = ?, bus_number = ?, route = ?, departure_time = ?, arrival_time = ?,
			frequency_minutes = ?, operating_days = ?, is_active = ?, bus_type = ?, fare = ?,
			duration_minutes = ?, updated_at = ?
		WHERE id = ?
	`,
		e.BusName,
		e.BusNumber,
		e.Route,
		e.DepartureTime,
		e.ArrivalTime,
		nullableInt(e.FrequencyMinutes),
		EncodeDays(e.OperatingDays),
		e.IsActive,
		intdb.NullIfEmpty(e.BusType),
		nullableFloat(e.Fare),
		nullableInt(e.DurationMinutes),
		time.Now(),
		e.ID,
	)
	return err
}

// Delete reports whether a row was removed.
func (r ScheduleRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db().ExecContext(ctx, `DELETE FROM bus_schedules WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// ReplaceAll swaps the whole timetable inside one transaction.
func (r ScheduleRepository) ReplaceAll(ctx context.Context, entries []models.ScheduleEntry) error {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bus_schedules`); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := insertSchedule(ctx, tx, e); err != nil {
			return fmt.Errorf("insert %s: %w", e.BusNumber, err)
		}
	}
	return tx.Commit()
}

// DistinctRoutes lists route names, optionally only active ones and only
// those containing substr (case-insensitive).
func (r ScheduleRepository) DistinctRoutes(ctx context.Context, activeOnly bool, substr string) ([]string, error) {
	where := []string{}
	args := []any{}
	if activeOnly {
		where = append(where, "is_active = 1")
	}
	if strings.TrimSpace(substr) != "" {
		where = append(where, "LOWER(route) LIKE ?")
		args = append(args, containsPattern(substr))
	}
	query := `SELECT DISTINCT route FROM bus_schedules`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY route ASC`

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	routes := make([]string, 0)
	for rows.Next() {
		var route string
		if err := rows.Scan(&route); err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}

// PopularRoutes counts active entries per route, most first.
func (r ScheduleRepository) PopularRoutes(ctx context.Context, limit int) ([]domain.RouteCount, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT route, COUNT(*) AS bus_count
		FROM bus_schedules
		WHERE is_active = 1
		GROUP BY route
		ORDER BY bus_count DESC, route ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.RouteCount, 0)
	for rows.Next() {
		var rc domain.RouteCount
		if err := rows.Scan(&rc.Route, &rc.BusCount); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// EncodeDays stores operating days as a comma-separated list.
func EncodeDays(days []string) string {
	if len(days) == 0 {
		return models.Daily
	}
	return strings.Join(days, ",")
}

func DecodeDays(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = append(out, models.Daily)
	}
	return out
}

func containsPattern(substr string) string {
	s := strings.ToLower(strings.TrimSpace(substr))
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
