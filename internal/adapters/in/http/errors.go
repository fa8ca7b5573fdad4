package http

import (
	"errors"
	"net/http"

	"harvestlog/internal/core/application/usecases/commands"
	"harvestlog/internal/core/domain/model/chat"
	"harvestlog/internal/core/domain/model/order"
	"harvestlog/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// statusFor maps use case errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, chat.ErrFloodControl):
		return http.StatusTooManyRequests
	case errors.Is(err, commands.ErrOrderAlreadyActive),
		errors.Is(err, commands.ErrNoActiveOrder),
		errors.Is(err, commands.ErrOrderUpdateInProgress),
		errors.Is(err, commands.ErrNoChatContext),
		errors.Is(err, order.ErrIllegalTransition),
		errors.Is(err, order.ErrTransporterAlreadyAssigned),
		errors.Is(err, order.ErrOrderNotAssignable),
		errors.Is(err, errs.ErrObjectAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, order.ErrItemsAreRequired),
		errors.Is(err, chat.ErrContentIsEmpty):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(ctx echo.Context, err error) error {
	code := statusFor(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		message = http.StatusText(code)
	}
	return ctx.JSON(code, Error{Code: code, Message: message})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}
