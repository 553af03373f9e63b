package domain

// TaxAmount is a single tax line on a Mirakl order line.
type TaxAmount struct {
	Code   string
	Amount float64
}

// OrderLine is one line of a Mirakl product order, carrying its tax details.
type OrderLine struct {
	Taxes         []TaxAmount
	ShippingTaxes []TaxAmount
}

// ProductOrder is a Mirakl product order, reduced to the fields the
// settlement flow reads.
type ProductOrder struct {
	ID                 string
	Lines              []OrderLine
	OperatorCommission float64
}

// TotalTaxes sums the order-level taxes across all lines.
func (o *ProductOrder) TotalTaxes() float64 {
	var total float64
	for _, l := range o.Lines {
		for _, t := range l.Taxes {
			total += t.Amount
		}
	}
	return total
}

// TotalShippingTaxes sums the shipping taxes across all lines.
func (o *ProductOrder) TotalShippingTaxes() float64 {
	var total float64
	for _, l := range o.Lines {
		for _, t := range l.ShippingTaxes {
			total += t.Amount
		}
	}
	return total
}
