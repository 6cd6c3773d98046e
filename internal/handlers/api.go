package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"authapi/internal/config"
	"authapi/internal/logger"
	"authapi/internal/middleware"
	"authapi/internal/services"
	"authapi/internal/utils"
	"authapi/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const loginTokenTTL = 7 * 24 * time.Hour

type AuthHandler struct {
	authService  *services.AuthService
	tokenService *services.TokenService
	cfg          *config.Config
}

func NewAuthHandler(authService *services.AuthService, tokenService *services.TokenService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenService: tokenService,
		cfg:          cfg,
	}
}

type createRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Name    string `json:"name"`
	Token   string `json:"token"`
}

type forgotRequest struct {
	Email string `json:"email"`
}

type forgotResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Debug   bool   `json:"debug,omitempty"`
	Token   string `json:"token,omitempty"`
}

type resetRequest struct {
	Password string `json:"password"`
}

type meResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.WithCtx(r.Context()).Warn("Невалидный JSON в запросе", zap.Error(err))
		helpers.Errors(w, http.StatusBadRequest, []utils.FieldError{
			{Param: "body", Msg: "Invalid JSON"},
		})
		return false
	}
	return true
}

// Create godoc
// @Summary Регистрация нового аккаунта
// @Tags api
// @Accept json
// @Produce json
// @Param input body createRequest true "Имя, email и пароль"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Ошибки валидации или занятый email"
// @Router /api/create [post]
func (h *AuthHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = utils.NormalizeEmail(req.Email)

	var errs []utils.FieldError
	if !utils.ValidName(req.Name) {
		errs = append(errs, utils.FieldError{Param: "name", Msg: "Name is not valid"})
	}
	if !utils.ValidEmail(req.Email) {
		errs = append(errs, utils.FieldError{Param: "email", Msg: "Email is not valid"})
	}
	if !utils.ValidPassword(req.Password) {
		errs = append(errs, utils.FieldError{Param: "password", Msg: "Password must be at least 4 characters long"})
	}
	if len(errs) > 0 {
		logger.WithCtx(r.Context()).Warn("Ошибка валидации в Create", zap.Any("errors", errs))
		helpers.Errors(w, http.StatusBadRequest, errs)
		return
	}

	err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if errors.Is(err, services.ErrEmailTaken) {
		helpers.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка регистрации", zap.Error(err))
		helpers.Errors(w, http.StatusBadRequest, []utils.APIError{{
			Title:        "Registration Error",
			Detail:       "Something went wrong during registration process.",
			ErrorMessage: err.Error(),
		}})
		return
	}

	helpers.OK(w, "Your account is now active. Congratulations!")
}

// Login godoc
// @Summary Вход: проверка пары email/пароль и выдача токена
// @Tags api
// @Accept json
// @Produce json
// @Param input body loginRequest true "Email и пароль"
// @Success 200 {object} loginResponse
// @Failure 400 {object} map[string]interface{} "Ошибки валидации"
// @Failure 401 {object} map[string]interface{} "Неверные учётные данные"
// @Router /api/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = utils.NormalizeEmail(req.Email)

	var errs []utils.FieldError
	if !utils.ValidEmail(req.Email) {
		errs = append(errs, utils.FieldError{Param: "email", Msg: "Email is not valid"})
	}
	if !utils.ValidPassword(req.Password) {
		errs = append(errs, utils.FieldError{Param: "password", Msg: "Password must be at least 4 characters long"})
	}
	if len(errs) > 0 {
		logger.WithCtx(r.Context()).Warn("Ошибка валидации в Login", zap.Any("errors", errs))
		helpers.Errors(w, http.StatusBadRequest, errs)
		return
	}

	user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidPassword) {
		helpers.Fail(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		// "No such user." и сбои стора — один конверт, разные тексты
		helpers.Errors(w, http.StatusUnauthorized, []utils.APIError{{
			Title:        "Invalid Credentials",
			Detail:       "Check email and password combination",
			ErrorMessage: err.Error(),
		}})
		return
	}

	token, err := h.tokenService.Issue(user.Name, user.Email, loginTokenTTL)
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка подписи токена", zap.Error(err))
		helpers.Errors(w, http.StatusUnauthorized, []utils.APIError{{
			Title:        "Invalid Credentials",
			Detail:       "Check email and password combination",
			ErrorMessage: err.Error(),
		}})
		return
	}

	logger.WithCtx(r.Context()).Info("Вход выполнен", zap.Int64("user_id", user.ID))
	helpers.JSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "Welcome! " + user.Name,
		Name:    user.Name,
		Token:   token,
	})
}

// Forgot godoc
// @Summary Запрос восстановления пароля
// @Description Сохраняет одноразовый токен и отправляет письмо со ссылкой.
// @Description Вне production письмо не отправляется, а токен возвращается в ответе.
// @Tags api
// @Accept json
// @Produce json
// @Param input body forgotRequest true "Email аккаунта"
// @Success 200 {object} forgotResponse
// @Failure 400 {object} map[string]interface{} "Невалидный email"
// @Failure 403 {object} map[string]interface{} "Сбой шага конвейера"
// @Router /api/forgot [post]
func (h *AuthHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = utils.NormalizeEmail(req.Email)

	if !utils.ValidEmail(req.Email) {
		logger.WithCtx(r.Context()).Warn("Ошибка валидации в Forgot")
		helpers.Errors(w, http.StatusBadRequest, []utils.FieldError{
			{Param: "email", Msg: "Please enter a valid email address."},
		})
		return
	}

	token, err := h.authService.RequestReset(r.Context(), req.Email, r.Host)
	if err != nil {
		helpers.Errors(w, http.StatusForbidden, []string{err.Error()})
		return
	}

	resp := forgotResponse{
		Success: true,
		Message: "Instructions sent to registered email.",
	}
	if !h.cfg.IsProd() {
		resp.Debug = true
		resp.Token = token
	}
	helpers.JSON(w, http.StatusOK, resp)
}

// Reset godoc
// @Summary Установка нового пароля по токену из письма
// @Tags api
// @Accept json
// @Produce json
// @Param token path string true "Токен сброса"
// @Param input body resetRequest true "Новый пароль"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Короткий пароль"
// @Failure 403 {object} map[string]interface{} "Токен неверен или просрочен"
// @Router /api/reset/{token} [post]
func (h *AuthHandler) Reset(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	var req resetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !utils.ValidPassword(req.Password) {
		logger.WithCtx(r.Context()).Warn("Ошибка валидации в Reset")
		helpers.Errors(w, http.StatusBadRequest, []utils.FieldError{
			{Param: "password", Msg: "Password must be at least 4 characters long."},
		})
		return
	}

	if err := h.authService.ResetPassword(r.Context(), token, req.Password); err != nil {
		helpers.Errors(w, http.StatusForbidden, []string{err.Error()})
		return
	}

	helpers.OK(w, "Password reset.")
}

// Me godoc
// @Summary Проверка токена: эхо расшифрованного payload
// @Tags api
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} meResponse
// @Failure 401 {object} map[string]interface{} "Невалидный токен"
// @Failure 403 {object} map[string]interface{} "Токен не передан"
// @Router /api/me [post]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		// VerifyToken стоит перед хендлером, сюда попадать не должны
		helpers.Fail(w, http.StatusForbidden, "Token not found.")
		return
	}

	decoded, err := json.Marshal(claims)
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка сериализации claims", zap.Error(err))
		helpers.Fail(w, http.StatusUnauthorized, "Failed to authenticate token.")
		return
	}

	helpers.JSON(w, http.StatusOK, meResponse{
		Status:  true,
		Message: "Welcome! " + string(decoded),
	})
}
