package helpers

import (
	"encoding/json"
	"net/http"
)

type statusBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorsBody struct {
	Errors any `json:"errors"`
}

// JSON пишет произвольное тело ответа как есть.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		return
	}
}

// OK — конверт {success:true, message}.
func OK(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, statusBody{Success: true, Message: message})
}

// Fail — конверт {success:false, message}.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, statusBody{Success: false, Message: message})
}

// Errors — конверт {errors: [...]}; список может быть как набором
// ошибок полей, так и строками шагов конвейера.
func Errors(w http.ResponseWriter, status int, list any) {
	JSON(w, status, errorsBody{Errors: list})
}
