package postgres

import (
	"database/sql"

	"cloudpilot-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.PackageRequestRepository
	repository.NotificationRepository
	repository.UserRepository
	repository.VMRepository
	repository.ProvisionTaskRepository
	repository.InstalledPackageRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                         db,
		PackageRequestRepository:   NewPackageRequestRepository(db),
		NotificationRepository:     NewNotificationRepository(db),
		UserRepository:             NewUserRepository(db),
		VMRepository:               NewVMRepository(db),
		ProvisionTaskRepository:    NewProvisionTaskRepository(db),
		InstalledPackageRepository: NewInstalledPackageRepository(db),
	}
}
