package sqlite

import (
	"context"
	"database/sql"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/repository"
)

type installedPackageRepository struct {
	db *sql.DB
}

func NewInstalledPackageRepository(db *sql.DB) repository.InstalledPackageRepository {
	return &installedPackageRepository{db: db}
}

func (r *installedPackageRepository) CreateBatch(ctx context.Context, pkgs []domain.InstalledPackage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO installed_packages (id, vm_id, name, version, installed_on)
	          VALUES (?, ?, ?, ?, ?)`
	for _, pkg := range pkgs {
		if _, err := tx.ExecContext(ctx, query, pkg.ID, pkg.VMID, pkg.Name, pkg.Version, pkg.InstalledOn); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *installedPackageRepository) List(ctx context.Context) ([]domain.InstalledPackage, error) {
	query := `SELECT id, vm_id, name, version, installed_on FROM installed_packages ORDER BY installed_on DESC`
	return r.queryPackages(ctx, query)
}

func (r *installedPackageRepository) ListByVM(ctx context.Context, vmID string) ([]domain.InstalledPackage, error) {
	query := `SELECT id, vm_id, name, version, installed_on FROM installed_packages WHERE vm_id = ? ORDER BY installed_on DESC`
	return r.queryPackages(ctx, query, vmID)
}

func (r *installedPackageRepository) queryPackages(ctx context.Context, query string, args ...any) ([]domain.InstalledPackage, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pkgs []domain.InstalledPackage
	for rows.Next() {
		var pkg domain.InstalledPackage
		if err := rows.Scan(&pkg.ID, &pkg.VMID, &pkg.Name, &pkg.Version, &pkg.InstalledOn); err != nil {
			return nil, err
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, rows.Err()
}
