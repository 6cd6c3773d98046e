package repository

import (
	"context"
	"errors"
	"time"

	"authapi/internal/logger"
	"authapi/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrEmailTaken — нарушение уникальности email (unique_violation).
var ErrEmailTaken = errors.New("email already registered")

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, password_reset_token, password_reset_expires, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.PasswordResetToken, &u.PasswordResetExpires,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail ищет пользователя по нормализованному email.
// Отсутствие записи — не ошибка, возвращается (nil, nil).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		user.Name, user.Email, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	if err != nil {
		logger.Log.Error("Ошибка создания пользователя (repo)", zap.Error(err))
	}
	return err
}

// SetResetToken сохраняет токен сброса и срок его жизни одним UPDATE.
// Повторный запрос перезаписывает прежнюю пару токен/срок.
func (r *UserRepository) SetResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users
		 SET password_reset_token = $1, password_reset_expires = $2, updated_at = now()
		 WHERE id = $3`,
		token, expiresAt, userID,
	)
	if err != nil {
		logger.Log.Error("Ошибка сохранения токена сброса (repo)", zap.Error(err), zap.Int64("user_id", userID))
	}
	return err
}

// GetByValidResetToken возвращает пользователя только если токен совпал
// и срок ещё не вышел. Просроченный или чужой токен — (nil, nil).
func (r *UserRepository) GetByValidResetToken(ctx context.Context, token string) (*models.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE password_reset_token = $1
		   AND password_reset_expires > now()`,
		token,
	)
	return scanUser(row)
}

// UpdatePasswordClearResetToken ставит новый хеш пароля и гасит токен
// сброса одним UPDATE — токен нельзя использовать второй раз.
func (r *UserRepository) UpdatePasswordClearResetToken(ctx context.Context, userID int64, passwordHash string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users
		 SET password_hash = $1,
		     password_reset_token = NULL,
		     password_reset_expires = NULL,
		     updated_at = now()
		 WHERE id = $2`,
		passwordHash, userID,
	)
	if err != nil {
		logger.Log.Error("Ошибка обновления пароля (repo)", zap.Error(err), zap.Int64("user_id", userID))
	}
	return err
}
