package handlers

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/ChronoCoders/flashloanbot/internal/engine"
	"github.com/ChronoCoders/flashloanbot/internal/repository"
	"github.com/ChronoCoders/flashloanbot/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse стандартный формат ответа об ошибке для всех API endpoints
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse стандартный формат успешного ответа
type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// respondJSON сериализует payload и пишет статус
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError пишет ошибку в стандартном формате
func respondError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
		if kind, ok := engine.KindOf(err); ok {
			resp.Code = kind.String()
		}
	}
	respondJSON(w, status, resp)
}

// respondEngineError транслирует категорию ошибки движка в HTTP статус
func respondEngineError(w http.ResponseWriter, message string, err error) {
	respondError(w, statusForError(err), message, err)
}

// statusForError выбирает HTTP статус по категории ошибки
func statusForError(err error) int {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, engine.ErrUnknownInvestor) {
		return http.StatusNotFound
	}
	if isValidationError(err) {
		return http.StatusBadRequest
	}

	kind, ok := engine.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case engine.KindValidation:
		return http.StatusBadRequest
	case engine.KindAuthorization:
		return http.StatusForbidden
	case engine.KindState:
		return http.StatusConflict
	case engine.KindReentrancy:
		return http.StatusConflict
	case engine.KindEconomic:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, utils.ErrEmptyIdentity) ||
		errors.Is(err, utils.ErrIdentityTooLong) ||
		errors.Is(err, utils.ErrBadIdentity) ||
		errors.Is(err, utils.ErrBadAssetID) ||
		errors.Is(err, utils.ErrMalformedAmount) ||
		errors.Is(err, utils.ErrFractionalWei) ||
		errors.Is(err, utils.ErrNegativeAmount)
}
