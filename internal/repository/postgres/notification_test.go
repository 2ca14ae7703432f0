package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/repository"
	"cloudpilot-backend/internal/repository/postgres"
)

func TestNotificationRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()

	notif := &domain.Notification{
		ID:            "n-1",
		Type:          domain.NotificationTypeTeamLeaderPackageRequest,
		Title:         "Package request received",
		Message:       "Priya submitted a request for 1 package(s)",
		RequestID:     "req-1",
		RecipientRole: domain.SessionRoleLeader,
		Timestamp:     time.Now(),
	}

	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(notif.ID, string(notif.Type), notif.Title, notif.Message,
			notif.RequestID, string(notif.RecipientRole), notif.RecipientID, notif.Timestamp, notif.Read).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Create(ctx, notif))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkAsRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()

	t.Run("Marks unread notification", func(t *testing.T) {
		mock.ExpectExec("UPDATE notifications SET read = TRUE").
			WithArgs("n-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkAsRead(ctx, "n-1"))
	})

	t.Run("Re-marking an already-read notification still succeeds", func(t *testing.T) {
		// The update matches the row again; read stays TRUE.
		mock.ExpectExec("UPDATE notifications SET read = TRUE").
			WithArgs("n-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkAsRead(ctx, "n-1"))
	})

	t.Run("Unknown notification", func(t *testing.T) {
		mock.ExpectExec("UPDATE notifications SET read = TRUE").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.MarkAsRead(ctx, "missing"), repository.ErrNotFound)
	})
}

func TestNotificationRepository_ListForRecipient(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "type", "title", "message", "request_id", "recipient_role", "recipient_id", "timestamp", "read"}).
		AddRow("n-2", "first_approval", "Passed first approval", "msg", "req-1", "HEAD", nil, time.Now(), false).
		AddRow("n-1", "vm_ready", "VM ready", "msg", nil, "", "head-01", time.Now().Add(-time.Hour), true)

	mock.ExpectQuery("SELECT (.+) FROM notifications").
		WithArgs(string(domain.SessionRoleHead), "head-01").
		WillReturnRows(rows)

	notes, err := repo.ListForRecipient(ctx, domain.SessionRoleHead, "head-01")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "n-2", notes[0].ID)
	assert.Equal(t, "head-01", notes[1].RecipientID)
}

func TestNotificationRepository_CountUnread(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM notifications").
		WithArgs(string(domain.SessionRoleLeader), "leader-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountUnread(context.Background(), domain.SessionRoleLeader, "leader-01")
	require.NoError(t, err)
	assert.Equal(t, int32(3), count)
}
