package postgres

import (
	"context"
	"database/sql"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/logger"
	"cloudpilot-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	logger.EnterMethod("notificationRepository.Create", "type", n.Type, "recipientRole", n.RecipientRole, "recipientID", n.RecipientID)

	query := `INSERT INTO notifications (id, type, title, message, request_id, recipient_role, recipient_id, timestamp, read)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	logger.DatabaseCall("INSERT", "notifications", "notificationID", n.ID)
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.Type, n.Title, n.Message, n.RequestID, n.RecipientRole, n.RecipientID, n.Timestamp, n.Read)
	logger.DatabaseResult("INSERT", 1, err, "notificationID", n.ID)

	if err != nil {
		logger.ExitMethodWithError("notificationRepository.Create", err, "notificationID", n.ID)
	} else {
		logger.ExitMethod("notificationRepository.Create", "notificationID", n.ID)
	}
	return err
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, role domain.SessionRole, employeeID string) ([]domain.Notification, error) {
	query := `SELECT id, type, title, message, request_id, recipient_role, recipient_id, timestamp, read
	          FROM notifications
	          WHERE recipient_role = $1 OR recipient_id = $2
	          ORDER BY timestamp DESC`
	rows, err := r.db.QueryContext(ctx, query, role, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var requestID, recipientID sql.NullString
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &requestID, &n.RecipientRole, &recipientID, &n.Timestamp, &n.Read); err != nil {
			return nil, err
		}
		n.RequestID = requestID.String
		n.RecipientID = recipientID.String
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// MarkAsRead is idempotent: re-marking an already-read notification
// matches the row again and leaves it read.
func (r *notificationRepository) MarkAsRead(ctx context.Context, id string) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, role domain.SessionRole, employeeID string) (int32, error) {
	query := `SELECT count(*) FROM notifications
	          WHERE read = FALSE AND (recipient_role = $1 OR recipient_id = $2)`
	var count int32
	err := r.db.QueryRowContext(ctx, query, role, employeeID).Scan(&count)
	return count, err
}
