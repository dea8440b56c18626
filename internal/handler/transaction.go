package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"coursepay/internal/dto"
	"coursepay/internal/ledger"
	"coursepay/internal/model"
	"coursepay/internal/service"
)

type TransactionHandler struct {
	transactionService service.TransactionService
}

func NewTransactionHandler(transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

func transactionIDFromPath(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid transaction id")
	}
	return uint(id), nil
}

func (h *TransactionHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	txns, total, err := h.transactionService.List(ctx, c.QueryParam("status"), page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ListResponse[*model.Transaction]{
		Items: txns,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (h *TransactionHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.transactionService.Stats(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stats)
}

func (h *TransactionHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := transactionIDFromPath(c)
	if err != nil {
		return err
	}

	txn, err := h.transactionService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, txn)
}

func (h *TransactionHandler) Approve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := transactionIDFromPath(c)
	if err != nil {
		return err
	}

	txn, err := h.transactionService.Approve(ctx, id)
	if err != nil {
		return mapLedgerError(err)
	}

	return c.JSON(http.StatusOK, txn)
}

func (h *TransactionHandler) Refund(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := transactionIDFromPath(c)
	if err != nil {
		return err
	}

	txn, err := h.transactionService.Refund(ctx, id)
	if err != nil {
		return mapLedgerError(err)
	}

	return c.JSON(http.StatusOK, txn)
}

func (h *TransactionHandler) Export(c echo.Context) error {
	ctx := c.Request().Context()

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="transactions.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	return h.transactionService.ExportCSV(ctx, c.Response())
}

func mapLedgerError(err error) error {
	var illegal *ledger.IllegalTransitionError
	switch {
	case errors.Is(err, service.ErrTransactionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.As(err, &illegal):
		return echo.NewHTTPError(http.StatusConflict, illegal.Error())
	}
	return err
}
