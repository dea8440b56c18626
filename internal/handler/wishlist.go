package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"coursepay/internal/dto"
	"coursepay/internal/middleware"
	"coursepay/internal/model"
	"coursepay/internal/service"
)

type WishlistHandler struct {
	wishlistService service.WishlistService
}

func NewWishlistHandler(wishlistService service.WishlistService) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
	}
}

func (h *WishlistHandler) Add(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddToWishlistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.CourseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "courseId is required")
	}

	// an already-wishlisted course comes back 200 as well, not an error
	if err := h.wishlistService.Add(ctx, middleware.UserID(c), req.CourseID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

func (h *WishlistHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, err := h.wishlistService.List(ctx, middleware.UserID(c), page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ListResponse[*model.WishlistItem]{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h *WishlistHandler) Check(c echo.Context) error {
	ctx := c.Request().Context()

	saved, err := h.wishlistService.Check(ctx, middleware.UserID(c), c.Param("courseId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]bool{"inWishlist": saved})
}

func (h *WishlistHandler) Count(c echo.Context) error {
	ctx := c.Request().Context()

	count, err := h.wishlistService.Count(ctx, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]int64{"count": count})
}

func (h *WishlistHandler) Remove(c echo.Context) error {
	ctx := c.Request().Context()

	err := h.wishlistService.Remove(ctx, middleware.UserID(c), c.Param("courseId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "course not in wishlist")
		}
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Sync receives the course IDs a guest device saved before sign-in and merges
// them into the account wishlist.
func (h *WishlistHandler) Sync(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SyncWishlistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result := h.wishlistService.Sync(ctx, middleware.UserID(c), req.CourseIDs)

	return c.JSON(http.StatusOK, result)
}
