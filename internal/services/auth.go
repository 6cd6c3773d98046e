package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"authapi/internal/logger"
	"authapi/internal/models"
	"authapi/internal/repository"
	"authapi/internal/utils"

	"go.uber.org/zap"
)

const (
	resetTokenBytes = 16
	resetTokenTTL   = time.Hour
)

// Тексты ошибок уходят клиенту как есть — хендлеры подбирают
// только статус и форму конверта.
var (
	ErrEmailTaken      = errors.New("Account with that email address already exists.")
	ErrNoSuchUser      = errors.New("No such user.")
	ErrInvalidPassword = errors.New("Invalid password.")
	ErrNoAccount       = errors.New("Account with that email address does not exist.")
	ErrResetToken      = errors.New("Password reset token is invalid or has expired.")
)

type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	SetResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetByValidResetToken(ctx context.Context, token string) (*models.User, error)
	UpdatePasswordClearResetToken(ctx context.Context, userID int64, passwordHash string) error
}

type MailSender interface {
	SendPasswordReset(ctx context.Context, to, resetLink string) error
	SendPasswordChanged(ctx context.Context, to string) error
}

type AuthService struct {
	repo UserRepo
	mail MailSender
}

func NewAuthService(repo UserRepo, mail MailSender) *AuthService {
	return &AuthService{repo: repo, mail: mail}
}

// Register создаёт пользователя. Токен при регистрации не выдаётся —
// вход отдельным шагом.
func (s *AuthService) Register(ctx context.Context, name, email, plainPassword string) error {
	logger.WithCtx(ctx).Info("Регистрация пользователя (service)", zap.String("email", email))

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка проверки email", zap.Error(err))
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}

	hashed, err := utils.HashPassword(plainPassword)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка хеширования пароля", zap.Error(err))
		return err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		// Гонка двух регистраций упирается в уникальный индекс
		if errors.Is(err, repository.ErrEmailTaken) {
			return ErrEmailTaken
		}
		return err
	}

	logger.WithCtx(ctx).Info("Пользователь зарегистрирован (service)", zap.Int64("user_id", user.ID))
	return nil
}

// Login проверяет пару email/пароль и возвращает пользователя.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка поиска пользователя (service)", zap.Error(err))
		return nil, err
	}
	if user == nil {
		logger.WithCtx(ctx).Warn("Пользователь не найден (service)", zap.String("email", email))
		return nil, ErrNoSuchUser
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.WithCtx(ctx).Warn("Неверный пароль (service)", zap.Int64("user_id", user.ID))
		return nil, ErrInvalidPassword
	}

	return user, nil
}

// RequestReset — конвейер запроса сброса пароля: случайный токен,
// поиск пользователя, сохранение токена на час, письмо со ссылкой.
// Сбой любого шага обрывает остальные и уходит наверх как есть.
func (s *AuthService) RequestReset(ctx context.Context, email, host string) (string, error) {
	log := logger.WithCtx(ctx)
	log.Info("Запрос на сброс пароля", zap.String("email", email))

	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		log.Error("Ошибка генерации токена сброса", zap.Error(err))
		return "", err
	}
	token := hex.EncodeToString(raw)

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		log.Error("Ошибка поиска пользователя при сбросе", zap.Error(err))
		return "", err
	}
	if user == nil {
		return "", ErrNoAccount
	}

	expires := time.Now().Add(resetTokenTTL)
	if err := s.repo.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return "", err
	}

	resetLink := fmt.Sprintf("http://%s/api/reset/%s", host, token)
	if err := s.mail.SendPasswordReset(ctx, user.Email, resetLink); err != nil {
		log.Error("Ошибка отправки письма для сброса пароля", zap.Int64("user_id", user.ID), zap.Error(err))
		return "", err
	}

	log.Info("Токен сброса сохранён, письмо поставлено на отправку",
		zap.Int64("user_id", user.ID),
		zap.Time("expires_at", expires),
	)
	return token, nil
}

// ResetPassword подтверждает токен и устанавливает новый пароль.
// Токен гасится тем же UPDATE, что и смена хеша, — второй раз
// тем же токеном воспользоваться нельзя.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	log := logger.WithCtx(ctx)
	log.Info("Попытка сброса пароля по токену")

	user, err := s.repo.GetByValidResetToken(ctx, token)
	if err != nil {
		log.Error("Ошибка поиска по токену сброса", zap.Error(err))
		return err
	}
	if user == nil {
		log.Warn("Неверный или просроченный токен при сбросе пароля")
		return ErrResetToken
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		log.Error("Ошибка хеширования нового пароля", zap.Error(err), zap.Int64("user_id", user.ID))
		return err
	}

	if err := s.repo.UpdatePasswordClearResetToken(ctx, user.ID, hashed); err != nil {
		return err
	}

	if err := s.mail.SendPasswordChanged(ctx, user.Email); err != nil {
		log.Error("Ошибка отправки подтверждения смены пароля", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	log.Info("Пароль успешно сброшен", zap.Int64("user_id", user.ID))
	return nil
}
