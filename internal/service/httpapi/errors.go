package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

// ErrorResponse — тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// StatusClientClosedRequest — клиент закрыл соединение до ответа (nginx 499).
const StatusClientClosedRequest = 499

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded"
	case errors.Is(err, domain.ErrIdempotencyHashMismatch):
		return http.StatusUnprocessableEntity, "idempotency_key_reused"
	case errors.Is(err, domain.ErrIdempotencyInProgress):
		return http.StatusConflict, "request_in_progress"
	}

	switch domain.KindOf(err) {
	case domain.ErrInvalidArgument:
		return http.StatusBadRequest, "invalid_argument"
	case domain.ErrOutOfRange:
		return http.StatusBadRequest, "out_of_range"
	case domain.ErrInvalidState:
		return http.StatusConflict, "invalid_state"
	case domain.ErrNotFound:
		return http.StatusNotFound, "not_found"
	case domain.ErrConflict:
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (h *Handler) writeError(c *gin.Context, operation string, err error) {
	code, name := statusFor(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		h.logger.WithError(err).WithField("operation", operation).Error("sales request failed")
		message = "internal error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(code, ErrorResponse{Error: message, Code: name})
}

// bindingError отвечает на невалидное тело запроса. Количество вне [1, 20]
// отсекается здесь же и получает тот же код, что и от агрегата.
func bindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Quantity" && (fe.Tag() == "min" || fe.Tag() == "max") {
				c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
					Error: domain.ErrQuantityOutOfRange.Error(),
					Code:  "out_of_range",
				})
				return
			}
		}
	}
	badRequest(c, "invalid request payload")
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "invalid_argument"})
}
