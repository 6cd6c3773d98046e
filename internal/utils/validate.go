package utils

import (
	"net/mail"
	"strings"
)

// FieldError — одна ошибка валидации поля запроса.
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

// APIError — ошибка уровня запроса целиком.
type APIError struct {
	Title        string `json:"title"`
	Detail       string `json:"detail"`
	ErrorMessage string `json:"errorMessage"`
}

// NormalizeEmail приводит адрес к канонической форме записи —
// так же, как он нормализуется при регистрации.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail проверяет синтаксис адреса. Формы с display name
// ("Иван <a@b>") не принимаются.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// ValidName — имя не короче трёх символов (по рунам, не байтам).
func ValidName(name string) bool {
	return len([]rune(strings.TrimSpace(name))) >= 3
}

// ValidPassword — минимальная длина пароля.
func ValidPassword(password string) bool {
	return len(password) >= 4
}
