package repositories

import (
	"context"
	"testing"
	"time"

	"bustiming/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var scheduleCols = []string{
	"id", "bus_name", "bus_number", "route", "departure_time", "arrival_time",
	"frequency_minutes", "operating_days", "is_active", "bus_type", "fare",
	"duration_minutes", "created_at", "updated_at",
}

func TestListActiveByRoute_ScansOptionalColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("FROM bus_schedules\\s+WHERE is_active = 1 AND LOWER\\(route\\) LIKE \\?").
		WithArgs("%mani\\_pal%").
		WillReturnRows(sqlmock.NewRows(scheduleCols).
			AddRow(1, "Manipal Express", "KA-20-4001", "Manipal", "05:45", "07:30", nil, "Daily", true, "", nil, nil, now, now).
			AddRow(2, "Manipal Shuttle", "KA-20-4010", "Manipal", "06:00", "07:30", 30, "Monday,Friday", true, "AC", 45.5, 90, now, now))

	repo := ScheduleRepository{DB: db}
	got, err := repo.ListActiveByRoute(context.Background(), " Mani_pal ")
	if err != nil {
		t.Fatalf("ListActiveByRoute error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].FrequencyMinutes != nil || got[0].Fare != nil {
		t.Fatalf("NULL columns should stay nil: %+v", got[0])
	}
	if got[1].FrequencyMinutes == nil || *got[1].FrequencyMinutes != 30 {
		t.Fatalf("frequency not scanned: %+v", got[1])
	}
	if len(got[1].OperatingDays) != 2 || got[1].OperatingDays[1] != "Friday" {
		t.Fatalf("operating days not decoded: %v", got[1].OperatingDays)
	}
	if got[1].Fare == nil || *got[1].Fare != 45.5 {
		t.Fatalf("fare not scanned")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPopularRoutes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("GROUP BY route").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"route", "bus_count"}).
			AddRow("Manipal", 4).
			AddRow("Ajekar", 3))

	got, err := ScheduleRepository{DB: db}.PopularRoutes(context.Background(), 5)
	if err != nil {
		t.Fatalf("PopularRoutes error: %v", err)
	}
	if len(got) != 2 || got[0].Route != "Manipal" || got[0].BusCount != 4 {
		t.Fatalf("unexpected result %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDistinctRoutes_BuildsFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT DISTINCT route FROM bus_schedules WHERE is_active = 1 AND LOWER\\(route\\) LIKE \\? ORDER BY route").
		WithArgs("%heb%").
		WillReturnRows(sqlmock.NewRows([]string{"route"}).AddRow("Hebri"))
	mock.ExpectQuery("SELECT DISTINCT route FROM bus_schedules ORDER BY route").
		WillReturnRows(sqlmock.NewRows([]string{"route"}).AddRow("Ajekar").AddRow("Hebri"))

	repo := ScheduleRepository{DB: db}
	got, err := repo.DistinctRoutes(context.Background(), true, "HEB")
	if err != nil || len(got) != 1 || got[0] != "Hebri" {
		t.Fatalf("filtered routes = %v, %v", got, err)
	}
	all, err := repo.DistinctRoutes(context.Background(), false, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("all routes = %v, %v", all, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReplaceAll_RunsInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM bus_schedules").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO bus_schedules").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO bus_schedules").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	entries := []models.ScheduleEntry{
		{BusName: "A", BusNumber: "1", Route: "Hebri", DepartureTime: "06:30", ArrivalTime: "07:45", IsActive: true},
		{BusName: "B", BusNumber: "2", Route: "Hebri", DepartureTime: "12:00", ArrivalTime: "13:15", IsActive: true},
	}
	if err := (ScheduleRepository{DB: db}).ReplaceAll(context.Background(), entries); err != nil {
		t.Fatalf("ReplaceAll error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDecodeDaysDefaultsToDaily(t *testing.T) {
	if got := DecodeDays(""); len(got) != 1 || got[0] != models.Daily {
		t.Fatalf("DecodeDays(\"\") = %v", got)
	}
	if got := EncodeDays(nil); got != models.Daily {
		t.Fatalf("EncodeDays(nil) = %q", got)
	}
}
