package handler

import (
	"net/http"

	"catalog/internal/middleware"
	"catalog/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductCreateRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int64           `json:"stock"`
}

// 在庫更新/入荷の入力。stockは必須。
type StockRequest struct {
	Stock *int64 `json:"stock"`
}

// 在庫を変える更新系API
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// 更新系を登録。guardsが空なら認証なし。
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, guards ...echo.MiddlewareFunc) {
	e.POST("/products", h.createProduct, guards...)
	e.PUT("/products/:id/stock", h.updateStock, guards...)
	e.POST("/products/:id/shipments", h.receiveShipment, guards...)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), usecase.CreateProductInput{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Stock:    req.Stock,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

// 在庫の上書き
func (h *AdminProductHandler) updateStock(c echo.Context) error {
	id, stock, ok, err := bindStock(c)
	if !ok {
		return err
	}

	p, err := h.uc.SetStock(c.Request().Context(), middleware.ActorID(c), id, stock)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

// 入荷（加算）
func (h *AdminProductHandler) receiveShipment(c echo.Context) error {
	id, stock, ok, err := bindStock(c)
	if !ok {
		return err
	}

	p, err := h.uc.ReceiveShipment(c.Request().Context(), middleware.ActorID(c), id, stock)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

// okがfalseならレスポンスは書き込み済み
func bindStock(c echo.Context) (int64, int64, bool, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return 0, 0, false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req StockRequest
	if err := c.Bind(&req); err != nil {
		return 0, 0, false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Stock == nil {
		return 0, 0, false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "stock required"})
	}

	return id, *req.Stock, true, nil
}
