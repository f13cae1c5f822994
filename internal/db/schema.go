package db

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	TableSchedules = "bus_schedules"
	TableAdmins    = "admins"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS bus_schedules (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		bus_name VARCHAR(120) NOT NULL,
		bus_number VARCHAR(40) NOT NULL,
		route VARCHAR(120) NOT NULL,
		departure_time CHAR(5) NOT NULL,
		arrival_time CHAR(5) NOT NULL,
		frequency_minutes INT NULL,
		operating_days VARCHAR(120) NOT NULL DEFAULT 'Daily',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		bus_type VARCHAR(60) NULL,
		fare DECIMAL(10,2) NULL,
		duration_minutes INT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_bus_schedules_bus_number (bus_number),
		KEY idx_bus_schedules_route_departure (route, departure_time)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS admins (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(60) NOT NULL,
		email VARCHAR(120) NOT NULL DEFAULT '',
		password_hash VARCHAR(100) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'admin',
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_admins_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the tables when missing. Safe to run on every start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
