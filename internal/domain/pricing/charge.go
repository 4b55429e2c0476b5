package pricing

// MinorLine is a Line in integer minor units.
type MinorLine struct {
	UnitAmount int64
	Quantity   int64
}

// Charge is Totals expressed in integer minor units for a payment provider. Its parts
// always add up to the rounded total:
//
//	sum(UnitAmount*Quantity) + Tax + Shipping - Discount == Total
//
// Rounding residue from per-unit prices, tax and percent coupons is absorbed into
// Discount, or into Tax when the residue is negative. Providers only discount item
// lines, so a discount larger than items plus tax is taken off Shipping instead.
type Charge struct {
	Lines    []MinorLine
	Tax      int64
	Shipping int64
	Discount int64
	Total    int64
}

// ItemsAmount is the sum of the item lines.
func (c Charge) ItemsAmount() int64 {
	var sum int64
	for _, line := range c.Lines {
		sum += line.UnitAmount * line.Quantity
	}

	return sum
}

// Amount is what the provider collects for this charge.
func (c Charge) Amount() int64 {
	return c.ItemsAmount() + c.Tax + c.Shipping - c.Discount
}

// ChargeFor converts lines and the Totals computed from them into a Charge.
func ChargeFor(lines []Line, totals Totals) Charge {
	charge := Charge{
		Lines:    make([]MinorLine, 0, len(lines)),
		Tax:      ToMinorUnits(totals.Tax),
		Shipping: ToMinorUnits(totals.Shipping),
		Total:    ToMinorUnits(totals.Total),
	}
	for _, line := range lines {
		charge.Lines = append(charge.Lines, MinorLine{
			UnitAmount: ToMinorUnits(line.UnitPrice),
			Quantity:   int64(line.Quantity),
		})
	}

	residue := charge.ItemsAmount() + charge.Tax + charge.Shipping - charge.Total
	if residue < 0 {
		charge.Tax -= residue
		residue = 0
	}
	charge.Discount = residue

	if discountable := charge.ItemsAmount() + charge.Tax; charge.Discount > discountable {
		charge.Shipping -= charge.Discount - discountable
		charge.Discount = discountable
	}

	return charge
}
