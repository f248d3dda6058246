package app

import (
	"context"

	"github.com/mamadbah2/harvest/internal/domain/models"
	"github.com/mamadbah2/harvest/internal/service/ledger"
)

// Receipts lists every receipt.
func (s *State) Receipts(p models.Principal) ([]models.Receipt, error) {
	var out []models.Receipt
	err := s.query(p, "list receipts", func() error {
		out = s.ledger.Receipts()
		return nil
	})
	return out, err
}

// Receipt returns a single receipt.
func (s *State) Receipt(p models.Principal, id int) (models.Receipt, error) {
	var out models.Receipt
	err := s.query(p, "view receipt", func() error {
		var err error
		out, err = s.ledger.Receipt(id)
		return err
	})
	return out, err
}

// CreateReceipt records a receipt stamped with the acting user and the clock.
func (s *State) CreateReceipt(ctx context.Context, p models.Principal, draft ledger.ReceiptDraft) (models.Receipt, error) {
	var out models.Receipt
	err := s.exec(ctx, "create_receipt", p, models.CapEdit, func() error {
		var err error
		out, err = s.ledger.CreateReceipt(draft, ledger.Stamp{By: p.Username, At: s.now().UTC()})
		return err
	}, CollReceipts)
	return out, err
}

func (s *State) UpdateReceipt(ctx context.Context, p models.Principal, id int, draft ledger.ReceiptDraft) (models.Receipt, error) {
	var out models.Receipt
	err := s.exec(ctx, "update_receipt", p, models.CapEdit, func() error {
		var err error
		out, err = s.ledger.UpdateReceipt(id, draft)
		return err
	}, CollReceipts)
	return out, err
}

func (s *State) DeleteReceipt(ctx context.Context, p models.Principal, id int) (models.Receipt, error) {
	var out models.Receipt
	err := s.exec(ctx, "delete_receipt", p, models.CapDelete, func() error {
		var err error
		out, err = s.ledger.DeleteReceipt(id)
		return err
	}, CollReceipts)
	return out, err
}

// Orders lists every order.
func (s *State) Orders(p models.Principal) ([]models.Order, error) {
	var out []models.Order
	err := s.query(p, "list orders", func() error {
		out = s.ledger.Orders()
		return nil
	})
	return out, err
}

// Order returns a single order.
func (s *State) Order(p models.Principal, id int) (models.Order, error) {
	var out models.Order
	err := s.query(p, "view order", func() error {
		var err error
		out, err = s.ledger.Order(id)
		return err
	})
	return out, err
}

// CreateOrder records an order stamped with the acting user and the clock.
func (s *State) CreateOrder(ctx context.Context, p models.Principal, draft ledger.OrderDraft) (models.Order, error) {
	var out models.Order
	err := s.exec(ctx, "create_order", p, models.CapEdit, func() error {
		var err error
		out, err = s.ledger.CreateOrder(draft, ledger.Stamp{By: p.Username, At: s.now().UTC()})
		return err
	}, CollOrders)
	return out, err
}

func (s *State) UpdateOrder(ctx context.Context, p models.Principal, id int, draft ledger.OrderDraft) (models.Order, error) {
	var out models.Order
	err := s.exec(ctx, "update_order", p, models.CapEdit, func() error {
		var err error
		out, err = s.ledger.UpdateOrder(id, draft)
		return err
	}, CollOrders)
	return out, err
}

func (s *State) DeleteOrder(ctx context.Context, p models.Principal, id int) (models.Order, error) {
	var out models.Order
	err := s.exec(ctx, "delete_order", p, models.CapDelete, func() error {
		var err error
		out, err = s.ledger.DeleteOrder(id)
		return err
	}, CollOrders)
	return out, err
}
