package handler

import (
	"errors"
	"net/http"

	"finepharma/internal/logger"
	"finepharma/internal/middleware"
	"finepharma/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// usecaseのエラー種別をHTTPステータスに写す
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	var stockErr *usecase.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: stockErr.Error()})
	}

	switch {
	case errors.Is(err, usecase.ErrValidation), errors.Is(err, usecase.ErrInvalidStatus):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, usecase.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case errors.Is(err, usecase.ErrInvalidTransition), errors.Is(err, usecase.ErrAlreadyExists):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	}

	//500。詳細はログにだけ出す。
	logger.FromCtx(c.Request().Context()).Error("internal error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getActorFromContext(c echo.Context) (usecase.Actor, bool) {
	return middleware.ActorFromContext(c)
}
