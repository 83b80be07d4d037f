package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lamyda/lamyda-backend/internal/apperr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAppError maps the service error taxonomy onto HTTP statuses.
func RespondAppError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		RespondError(c, http.StatusBadRequest, string(apperr.KindValidation), err)
	case apperr.KindNotFound:
		RespondError(c, http.StatusNotFound, string(apperr.KindNotFound), err)
	case apperr.KindStorage:
		RespondError(c, http.StatusBadGateway, string(apperr.KindStorage), err)
	case apperr.KindPersistence:
		RespondError(c, http.StatusInternalServerError, string(apperr.KindPersistence), err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
