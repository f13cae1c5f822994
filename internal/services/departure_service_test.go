package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bustiming/internal/domain"
	"bustiming/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func departureService(t *testing.T, at time.Time) (DepartureService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	svc := DepartureService{
		Repo:     repositories.ScheduleRepository{DB: db},
		Location: time.UTC,
		Now:      func() time.Time { return at },
	}
	return svc, mock, func() { db.Close() }
}

func TestUpcomingForRoute_CapsAtTen(t *testing.T) {
	svc, mock, done := departureService(t, time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC))
	defer done()

	rows := sqlmock.NewRows(scheduleColumns)
	for i := 0; i < 12; i++ {
		dep := fmt.Sprintf("%02d:%02d", 8+(i+1)*5/60, (i+1)*5%60)
		scheduleRow(rows, int64(i+1), "Manipal Express", fmt.Sprintf("KA-20-40%02d", i), "Manipal", dep, "11:00", nil)
	}
	mock.ExpectQuery("LOWER\\(route\\) LIKE \\?").
		WithArgs("%manipal%").
		WillReturnRows(rows)

	got, err := svc.UpcomingForRoute(context.Background(), "Manipal")
	if err != nil {
		t.Fatalf("UpcomingForRoute error: %v", err)
	}
	if got.TotalMatchingEntries != 12 {
		t.Fatalf("expected 12 matching entries, got %d", got.TotalMatchingEntries)
	}
	if len(got.Upcoming) != MaxUpcoming || !got.HasMore {
		t.Fatalf("expected capped list with hasMore, got %d %v", len(got.Upcoming), got.HasMore)
	}
	if got.Upcoming[0].NextDeparture != "08:05" || !got.Upcoming[0].LeavingSoon {
		t.Fatalf("unexpected first departure %+v", got.Upcoming[0])
	}
	if got.CurrentTime != "08:00" || got.CurrentDate != "2025-01-06" {
		t.Fatalf("unexpected clock %s %s", got.CurrentTime, got.CurrentDate)
	}
	if got.Message != "" {
		t.Fatalf("message should be empty when buses remain")
	}
}

func TestUpcomingForRoute_NoneLeftSaysSo(t *testing.T) {
	svc, mock, done := departureService(t, time.Date(2025, 1, 6, 23, 30, 0, 0, time.UTC))
	defer done()

	mock.ExpectQuery("LOWER\\(route\\) LIKE \\?").
		WillReturnRows(scheduleRow(sqlmock.NewRows(scheduleColumns), 1, "Hebri Night", "KA-20-3003", "Hebri", "20:30", "21:45", nil))

	got, err := svc.UpcomingForRoute(context.Background(), "hebri")
	if err != nil {
		t.Fatalf("UpcomingForRoute error: %v", err)
	}
	if len(got.Upcoming) != 0 || got.Message != "no upcoming buses" {
		t.Fatalf("expected explicit empty result, got %+v", got)
	}
	if got.TotalMatchingEntries != 1 {
		t.Fatalf("departed bus still counts as matching, got %d", got.TotalMatchingEntries)
	}
}

func TestUpcomingForRoute_SkipsMalformedEntries(t *testing.T) {
	svc, mock, done := departureService(t, time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC))
	defer done()

	rows := sqlmock.NewRows(scheduleColumns)
	scheduleRow(rows, 1, "Broken", "KA-20-0001", "Ajekar", "8 o'clock", "09:00", nil)
	scheduleRow(rows, 2, "Ajekar Express", "KA-20-5001", "Ajekar", "09:15", "10:30", nil)
	mock.ExpectQuery("LOWER\\(route\\) LIKE \\?").WillReturnRows(rows)

	got, err := svc.UpcomingForRoute(context.Background(), "Ajekar")
	if err != nil {
		t.Fatalf("one bad row must not fail the query: %v", err)
	}
	if got.SkippedEntries != 1 || len(got.Upcoming) != 1 || got.Upcoming[0].ID != 2 {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestUpcomingForRoute_Errors(t *testing.T) {
	svc, mock, done := departureService(t, time.Now())
	defer done()

	if _, err := svc.UpcomingForRoute(context.Background(), "   "); !domain.IsValidation(err) {
		t.Fatalf("blank route should be a validation error, got %v", err)
	}

	mock.ExpectQuery("LOWER\\(route\\) LIKE \\?").WillReturnError(fmt.Errorf("connection refused"))
	if _, err := svc.UpcomingForRoute(context.Background(), "Hebri"); !domain.IsUpstream(err) {
		t.Fatalf("store failure should be upstream, got %v", err)
	}
}
