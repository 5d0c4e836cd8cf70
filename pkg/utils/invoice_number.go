package utils

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// InvoiceNumberGenerator hands out unique, time-ordered invoice numbers
// of the form PREFIX-<snowflake id>.
type InvoiceNumberGenerator struct {
	prefix string
	node   *snowflake.Node
}

// NewInvoiceNumberGenerator creates a generator for the given node id (0-1023).
// Each running instance must use a distinct node id.
func NewInvoiceNumberGenerator(prefix string, nodeID int64) (*InvoiceNumberGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice number node: %w", err)
	}
	if prefix == "" {
		prefix = "INV"
	}
	return &InvoiceNumberGenerator{prefix: prefix, node: node}, nil
}

// Next returns a new invoice number
func (g *InvoiceNumberGenerator) Next() string {
	return g.prefix + "-" + g.node.Generate().String()
}
