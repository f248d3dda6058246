package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/harvest/internal/service/ledger"
)

// ListReceipts returns every receipt.
func (h *Handler) ListReceipts(c *gin.Context) {
	items, err := h.state.Receipts(principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetReceipt(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	receipt, err := h.state.Receipt(principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// CreateReceipt derives the lot and totals from the submitted draft.
func (h *Handler) CreateReceipt(c *gin.Context) {
	var draft ledger.ReceiptDraft
	if err := bind(c, &draft); err != nil {
		h.fail(c, err)
		return
	}
	receipt, err := h.state.CreateReceipt(c.Request.Context(), principal(c), draft)
	h.respond(c, http.StatusCreated, receipt, err)
}

func (h *Handler) UpdateReceipt(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var draft ledger.ReceiptDraft
	if err := bind(c, &draft); err != nil {
		h.fail(c, err)
		return
	}
	receipt, err := h.state.UpdateReceipt(c.Request.Context(), principal(c), id, draft)
	h.respond(c, http.StatusOK, receipt, err)
}

func (h *Handler) DeleteReceipt(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	receipt, err := h.state.DeleteReceipt(c.Request.Context(), principal(c), id)
	h.respond(c, http.StatusOK, receipt, err)
}

// ListOrders returns every order.
func (h *Handler) ListOrders(c *gin.Context) {
	items, err := h.state.Orders(principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	order, err := h.state.Order(principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var draft ledger.OrderDraft
	if err := bind(c, &draft); err != nil {
		h.fail(c, err)
		return
	}
	order, err := h.state.CreateOrder(c.Request.Context(), principal(c), draft)
	h.respond(c, http.StatusCreated, order, err)
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var draft ledger.OrderDraft
	if err := bind(c, &draft); err != nil {
		h.fail(c, err)
		return
	}
	order, err := h.state.UpdateOrder(c.Request.Context(), principal(c), id, draft)
	h.respond(c, http.StatusOK, order, err)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	order, err := h.state.DeleteOrder(c.Request.Context(), principal(c), id)
	h.respond(c, http.StatusOK, order, err)
}

// Storage reports usage for every storage location.
func (h *Handler) Storage(c *gin.Context) {
	report, err := h.state.Storage(principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) StorageUsage(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	usage, err := h.state.StorageUsage(principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, usage)
}
