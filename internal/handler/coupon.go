package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"coursepay/internal/dto"
	"coursepay/internal/service"
)

type CouponHandler struct {
	couponService service.CouponService
}

func NewCouponHandler(couponService service.CouponService) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
	}
}

func couponIDFromPath(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid coupon id")
	}
	return uint(id), nil
}

func (h *CouponHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CouponRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	coupon, err := h.couponService.Create(ctx, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponInvalid):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrCouponCodeExists):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusCreated, coupon)
}

func (h *CouponHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	coupons, err := h.couponService.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, coupons)
}

func (h *CouponHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := couponIDFromPath(c)
	if err != nil {
		return err
	}

	coupon, err := h.couponService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, coupon)
}

func (h *CouponHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := couponIDFromPath(c)
	if err != nil {
		return err
	}

	var req dto.CouponRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	coupon, err := h.couponService.Update(ctx, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrCouponInvalid):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrCouponCodeExists):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, coupon)
}

func (h *CouponHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := couponIDFromPath(c)
	if err != nil {
		return err
	}

	if err := h.couponService.Delete(ctx, id); err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
