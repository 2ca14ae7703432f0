package sqlite

import (
	"context"
	"database/sql"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `INSERT INTO notifications (id, type, title, message, request_id, recipient_role, recipient_id, timestamp, read)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.Type, n.Title, n.Message, n.RequestID, n.RecipientRole, n.RecipientID, n.Timestamp, n.Read)
	return err
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, role domain.SessionRole, employeeID string) ([]domain.Notification, error) {
	query := `SELECT id, type, title, message, request_id, recipient_role, recipient_id, timestamp, read
	          FROM notifications
	          WHERE recipient_role = ? OR recipient_id = ?
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

func (r *notificationRepository) MarkAsRead(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE id = ?`, id)
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
	          WHERE read = FALSE AND (recipient_role = ? OR recipient_id = ?)`
	var count int32
	err := r.db.QueryRowContext(ctx, query, role, employeeID).Scan(&count)
	return count, err
}
