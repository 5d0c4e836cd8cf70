// Package billing holds the checkout domain: the cart, the totals
// calculation and the per-desk billing session state machine.
package billing

import (
	"github.com/google/uuid"
	"github.com/sangkips/salon-billing-api/internal/domain/entity"
	"github.com/sangkips/salon-billing-api/internal/domain/enum"
	"github.com/sangkips/salon-billing-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// CatalogItem is a sellable entry as seen by the cart
type CatalogItem struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Kind          enum.ItemKind   `json:"item_type"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity *int            `json:"stock_quantity,omitempty"`
}

// ServiceItem adapts a service; services bill at their minimum price
func ServiceItem(s *entity.Service) CatalogItem {
	return CatalogItem{
		ID:        s.ID,
		Name:      s.Name,
		Kind:      enum.ItemKindService,
		UnitPrice: s.MinPrice,
	}
}

// ProductItem adapts a product and captures its current stock
func ProductItem(p *entity.Product) CatalogItem {
	stock := p.StockQuantity
	return CatalogItem{
		ID:            p.ID,
		Name:          p.Name,
		Kind:          enum.ItemKindProduct,
		UnitPrice:     p.Price,
		StockQuantity: &stock,
	}
}

// CartLine is one billable line
type CartLine struct {
	ItemID    uuid.UUID       `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Kind      enum.ItemKind   `json:"item_type"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"total_price"`
}

func (l *CartLine) setQuantity(q int) {
	l.Quantity = q
	l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(q)))
}

// Cart is an ordered set of lines with at most one line per (item, kind)
type Cart struct {
	lines []CartLine
}

// AddItem merges item into the cart and returns the resulting line
func (c *Cart) AddItem(item CatalogItem) CartLine {
	for i := range c.lines {
		if c.lines[i].ItemID == item.ID && c.lines[i].Kind == item.Kind {
			c.lines[i].setQuantity(c.lines[i].Quantity + 1)
			return c.lines[i]
		}
	}

	line := CartLine{
		ItemID:    item.ID,
		ItemName:  item.Name,
		Kind:      item.Kind,
		UnitPrice: item.UnitPrice,
	}
	line.setQuantity(1)
	c.lines = append(c.lines, line)
	return line
}

// SetQuantity overwrites the quantity of the line at index. Quantities
// below one are ignored and report false.
func (c *Cart) SetQuantity(index, quantity int) (bool, error) {
	if err := c.checkIndex(index); err != nil {
		return false, err
	}
	if quantity < 1 {
		return false, nil
	}
	c.lines[index].setQuantity(quantity)
	return true, nil
}

// RemoveLine deletes the line at index and returns it
func (c *Cart) RemoveLine(index int) (CartLine, error) {
	if err := c.checkIndex(index); err != nil {
		return CartLine{}, err
	}
	removed := c.lines[index]
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return removed, nil
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the lines in insertion order
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of lines
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) checkIndex(index int) error {
	if index < 0 || index >= len(c.lines) {
		return apperror.NewNotFoundError("Cart line")
	}
	return nil
}
