package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"cloudpilot-backend/internal/domain"
	"cloudpilot-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (employee_id, name, email, password_hash, role, team, created_on)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		user.EmployeeID, user.Name, user.Email, user.PasswordHash, user.Role, user.Team, user.CreatedOn)
	return err
}

func (r *userRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.User, error) {
	user := &domain.User{}
	query := `SELECT employee_id, name, email, password_hash, role, team, created_on
	          FROM users WHERE employee_id = ?`
	err := r.db.QueryRowContext(ctx, query, employeeID).Scan(
		&user.EmployeeID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.Team, &user.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.SessionRole) ([]domain.User, error) {
	query := `SELECT employee_id, name, email, password_hash, role, team, created_on
	          FROM users WHERE role = ? ORDER BY name`
	return r.queryUsers(ctx, query, role)
}

func (r *userRepository) ListByTeam(ctx context.Context, team string) ([]domain.User, error) {
	query := `SELECT employee_id, name, email, password_hash, role, team, created_on
	          FROM users WHERE team = ? ORDER BY name`
	return r.queryUsers(ctx, query, team)
}

func (r *userRepository) queryUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.EmployeeID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Team, &u.CreatedOn); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
