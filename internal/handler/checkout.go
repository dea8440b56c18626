package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"coursepay/internal/dto"
	"coursepay/internal/middleware"
	"coursepay/internal/service"
)

type CheckoutHandler struct {
	checkoutService    service.CheckoutService
	transactionService service.TransactionService
}

func NewCheckoutHandler(checkoutService service.CheckoutService, transactionService service.TransactionService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService:    checkoutService,
		transactionService: transactionService,
	}
}

func (h *CheckoutHandler) CreateSnapshot(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateSnapshotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	snap, err := h.checkoutService.CreateSnapshot(ctx, middleware.UserID(c), req.CouponCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrCouponNotFound):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusCreated, snap)
}

func (h *CheckoutHandler) GetSnapshot(c echo.Context) error {
	ctx := c.Request().Context()

	snap, err := h.checkoutService.GetSnapshot(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, service.ErrNoSnapshot) {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:      "no checkout in progress",
				ReturnPath: "/cart",
			})
		}
		return err
	}

	return c.JSON(http.StatusOK, snap)
}

func (h *CheckoutHandler) Preview(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PreviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	quote, err := h.checkoutService.Preview(ctx, middleware.UserID(c), req.CouponCode)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, quote)
}

func (h *CheckoutHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.checkoutService.Submit(ctx, middleware.UserID(c), req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSnapshot):
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:      "no checkout in progress",
				ReturnPath: "/cart",
			})
		case errors.Is(err, service.ErrCheckoutInFlight):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrBadPaymentMethod), errors.Is(err, service.ErrEmptyCart),
			errors.Is(err, service.ErrCouponNotFound):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *CheckoutHandler) Success(c echo.Context) error {
	ctx := c.Request().Context()

	reference := c.QueryParam("transaction_id")
	if reference == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing transaction_id")
	}

	result, err := h.checkoutService.ConfirmSuccess(ctx, middleware.UserID(c), reference)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTransactionNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrVerificationPending), errors.Is(err, service.ErrPaymentFailed):
			return c.JSON(http.StatusConflict, dto.ErrorResponse{
				Error:      err.Error(),
				ReturnPath: "/cart",
			})
		}
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *CheckoutHandler) GatewayWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	if err := h.transactionService.HandleGatewayWebhook(ctx, c.Request().Header, body); err != nil {
		return fmt.Errorf("handle webhook: %w", err)
	}

	return c.NoContent(http.StatusOK)
}
