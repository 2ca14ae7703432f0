package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"cloudpilot-backend/internal/repository"

	_ "modernc.org/sqlite"
)

// Store is the SQLite implementation of the repository interfaces, intended
// for single-node deployments where running PostgreSQL is not worth it.
type Store struct {
	db *sql.DB
	repository.PackageRequestRepository
	repository.NotificationRepository
	repository.UserRepository
	repository.VMRepository
	repository.ProvisionTaskRepository
	repository.InstalledPackageRepository
}

// Open opens (creating if necessary) the database file and applies the
// schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:                         db,
		PackageRequestRepository:   NewPackageRequestRepository(db),
		NotificationRepository:     NewNotificationRepository(db),
		UserRepository:             NewUserRepository(db),
		VMRepository:               NewVMRepository(db),
		ProvisionTaskRepository:    NewProvisionTaskRepository(db),
		InstalledPackageRepository: NewInstalledPackageRepository(db),
	}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS package_requests (
	id TEXT PRIMARY KEY,
	packages TEXT NOT NULL,
	first_approval_status TEXT NOT NULL,
	final_approval_status TEXT NOT NULL,
	requester TEXT NOT NULL,
	employee_id TEXT NOT NULL,
	requester_role TEXT NOT NULL,
	request_date TIMESTAMP NOT NULL,
	first_approved_date TIMESTAMP,
	first_rejection_reason TEXT,
	final_approved_date TIMESTAMP,
	final_rejection_reason TEXT
);

CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	request_id TEXT,
	recipient_role TEXT,
	recipient_id TEXT,
	timestamp TIMESTAMP NOT NULL,
	read BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS users (
	employee_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	team TEXT,
	created_on TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS virtual_machines (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	cpu INTEGER NOT NULL,
	memory_gb INTEGER NOT NULL,
	storage_gb INTEGER NOT NULL,
	os TEXT NOT NULL,
	count INTEGER NOT NULL,
	assigned_team TEXT,
	assignments TEXT,
	owner_id TEXT NOT NULL,
	created_on TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS provision_tasks (
	id TEXT PRIMARY KEY,
	vm_id TEXT NOT NULL,
	state TEXT NOT NULL,
	stage TEXT,
	message TEXT,
	created_on TIMESTAMP NOT NULL,
	updated_on TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS installed_packages (
	id TEXT PRIMARY KEY,
	vm_id TEXT NOT NULL,
	name TEXT NOT NULL,
	version TEXT,
	installed_on TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_requests_role ON package_requests(requester_role);
CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_role, recipient_id);
CREATE INDEX IF NOT EXISTS idx_tasks_state ON provision_tasks(state, created_on);
`
