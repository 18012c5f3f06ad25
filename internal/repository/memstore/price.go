package memstore

import "github.com/shopspring/decimal"

// roundPrice mirrors the NUMERIC(10,2) column.
func roundPrice(p *decimal.Decimal) *decimal.Decimal {
	if p == nil {
		return nil
	}
	v := p.Round(2)
	return &v
}
