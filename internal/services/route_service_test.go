package services

import (
	"context"
	"testing"

	"bustiming/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestListDistinctRoutes_ServedFromCacheAfterFirstLoad(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT DISTINCT route FROM bus_schedules WHERE is_active = 1").
		WillReturnRows(sqlmock.NewRows([]string{"route"}).AddRow("hebri").AddRow("Ajekar").AddRow("KG Road"))

	c := newMemoryCache()
	svc := RouteService{Repo: repositories.ScheduleRepository{DB: db}, Cache: c}

	for i := 0; i < 2; i++ {
		got, err := svc.ListDistinctRoutes(context.Background(), true)
		if err != nil {
			t.Fatalf("ListDistinctRoutes error: %v", err)
		}
		if len(got) != 3 || got[0] != "Ajekar" || got[1] != "hebri" || got[2] != "KG Road" {
			t.Fatalf("routes not sorted case-insensitively: %v", got)
		}
	}
	if c.hits != 1 {
		t.Fatalf("second call should hit the cache, hits=%d", c.hits)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindRoutesMatching(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("LOWER\\(route\\) LIKE \\?").
		WithArgs("%man%").
		WillReturnRows(sqlmock.NewRows([]string{"route"}).AddRow("Manipal"))

	svc := RouteService{Repo: repositories.ScheduleRepository{DB: db}}
	got, err := svc.FindRoutesMatching(context.Background(), " MAN ")
	if err != nil || len(got) != 1 || got[0] != "Manipal" {
		t.Fatalf("unexpected result %v %v", got, err)
	}
	if _, err := svc.FindRoutesMatching(context.Background(), ""); err == nil {
		t.Fatalf("empty search should fail")
	}
}

func TestPopularRoutes_ClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("GROUP BY route").
		WithArgs(DefaultPopularLimit).
		WillReturnRows(sqlmock.NewRows([]string{"route", "bus_count"}).
			AddRow("Manipal", 4).
			AddRow("Ajekar", 3).
			AddRow("Bramavara", 3))

	svc := RouteService{Repo: repositories.ScheduleRepository{DB: db}}
	got, err := svc.PopularRoutes(context.Background(), 500)
	if err != nil {
		t.Fatalf("PopularRoutes error: %v", err)
	}
	if len(got) != 3 || got[0].Route != "Manipal" || got[1].Route != "Ajekar" {
		t.Fatalf("unexpected ranking %+v", got)
	}
}
