package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"coursepay/internal/dto"
	"coursepay/internal/middleware"
	"coursepay/internal/service"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) Add(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	var req dto.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.CourseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "courseId is required")
	}

	result, err := h.cartService.Add(ctx, userID, req.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAlreadyInCart), errors.Is(err, service.ErrAlreadyOwned):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *CartHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.cartService.List(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

func (h *CartHandler) Check(c echo.Context) error {
	ctx := c.Request().Context()

	inCart, err := h.cartService.Check(ctx, middleware.UserID(c), c.Param("courseId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]bool{"inCart": inCart})
}

func (h *CartHandler) Count(c echo.Context) error {
	ctx := c.Request().Context()

	count, err := h.cartService.Count(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]int64{"count": count})
}

func (h *CartHandler) Remove(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.cartService.Remove(ctx, middleware.UserID(c), c.Param("cartItemId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "cart item not found")
		}
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
