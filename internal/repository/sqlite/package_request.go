package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/logger"
	"cloudpilot-backend/internal/repository"
)

type packageRequestRepository struct {
	db *sql.DB
}

func NewPackageRequestRepository(db *sql.DB) repository.PackageRequestRepository {
	return &packageRequestRepository{db: db}
}

const packageRequestColumns = `id, packages, first_approval_status, final_approval_status,
	requester, employee_id, requester_role, request_date,
	first_approved_date, first_rejection_reason, final_approved_date, final_rejection_reason`

func (r *packageRequestRepository) Create(ctx context.Context, req *domain.PackageRequest) error {
	pkgs, err := json.Marshal(req.Packages)
	if err != nil {
		return err
	}
	query := `INSERT INTO package_requests (` + packageRequestColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		req.ID, pkgs, req.FirstApprovalStatus, req.FinalApprovalStatus,
		req.Requester, req.EmployeeID, req.RequesterRole, req.RequestDate,
		req.FirstApprovedDate, req.FirstRejectionReason, req.FinalApprovedDate, req.FinalRejectionReason)
	return err
}

func (r *packageRequestRepository) GetByID(ctx context.Context, id string) (*domain.PackageRequest, error) {
	query := `SELECT ` + packageRequestColumns + ` FROM package_requests WHERE id = ?`
	req, err := scanPackageRequest(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return req, err
}

func (r *packageRequestRepository) List(ctx context.Context) ([]domain.PackageRequest, error) {
	query := `SELECT ` + packageRequestColumns + ` FROM package_requests ORDER BY request_date DESC`
	return r.queryRequests(ctx, query)
}

func (r *packageRequestRepository) ListByRequesterRole(ctx context.Context, role domain.RequesterRole) ([]domain.PackageRequest, error) {
	query := `SELECT ` + packageRequestColumns + ` FROM package_requests
	          WHERE requester_role = ? ORDER BY request_date DESC`
	return r.queryRequests(ctx, query, role)
}

func (r *packageRequestRepository) ListByEmployee(ctx context.Context, employeeID string) ([]domain.PackageRequest, error) {
	query := `SELECT ` + packageRequestColumns + ` FROM package_requests
	          WHERE employee_id = ? ORDER BY request_date DESC`
	return r.queryRequests(ctx, query, employeeID)
}

func (r *packageRequestRepository) ListFirstPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.PackageRequest, error) {
	query := `SELECT ` + packageRequestColumns + ` FROM package_requests
	          WHERE first_approval_status = 'pending' AND request_date < ? ORDER BY request_date`
	return r.queryRequests(ctx, query, cutoff)
}

func (r *packageRequestRepository) SetFirstApproval(ctx context.Context, id string, status domain.ApprovalStatus, approvedDate *time.Time, rejectionReason string) (bool, error) {
	query := `UPDATE package_requests
	          SET first_approval_status = ?, first_approved_date = ?, first_rejection_reason = ?
	          WHERE id = ? AND first_approval_status = 'pending'`
	result, err := r.db.ExecContext(ctx, query, status, approvedDate, rejectionReason, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *packageRequestRepository) SetFinalApproval(ctx context.Context, id string, status domain.ApprovalStatus, approvedDate *time.Time, rejectionReason string) (bool, error) {
	query := `UPDATE package_requests
	          SET final_approval_status = ?, final_approved_date = ?, final_rejection_reason = ?
	          WHERE id = ? AND first_approval_status = 'approved' AND final_approval_status = 'pending'`
	result, err := r.db.ExecContext(ctx, query, status, approvedDate, rejectionReason, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *packageRequestRepository) queryRequests(ctx context.Context, query string, args ...any) ([]domain.PackageRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.PackageRequest
	for rows.Next() {
		req, err := scanPackageRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPackageRequest(row rowScanner) (*domain.PackageRequest, error) {
	req := &domain.PackageRequest{}
	var pkgs []byte
	var firstReason, finalReason sql.NullString
	err := row.Scan(&req.ID, &pkgs, &req.FirstApprovalStatus, &req.FinalApprovalStatus,
		&req.Requester, &req.EmployeeID, &req.RequesterRole, &req.RequestDate,
		&req.FirstApprovedDate, &firstReason, &req.FinalApprovedDate, &finalReason)
	if err != nil {
		return nil, err
	}
	req.FirstRejectionReason = firstReason.String
	req.FinalRejectionReason = finalReason.String
	if len(pkgs) > 0 {
		if err := json.Unmarshal(pkgs, &req.Packages); err != nil {
			logger.Warn("Discarding malformed package payload", "requestID", req.ID, "error", err)
			req.Packages = nil
		}
	}
	return req, nil
}
