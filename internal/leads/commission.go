package leads

import (
	"github.com/shopspring/decimal"

	"github.com/forkandfield/catersync/internal/tenants"
	"github.com/forkandfield/catersync/pkg/ezmanage"
	"github.com/forkandfield/catersync/pkg/nutshell"
)

const deliveryFeeName = "Delivery Fee"

var centsPerDollar = decimal.NewFromInt(100)

// CommissionCents derives the platform commission from the order totals: what
// the caterer is actually due minus the customer-facing subtotal, delivery
// fee, and tip. Routinely negative.
func CommissionCents(snapshot *ezmanage.Snapshot) int {
	deliveryFee := 0
	for _, fee := range snapshot.Cart.FeesAndDiscounts {
		if fee.Name == deliveryFeeName {
			deliveryFee = fee.CostCents
			break
		}
	}
	return snapshot.Cart.TotalDueCents - (snapshot.Totals.SubTotalCents + deliveryFee + snapshot.Totals.TipCents)
}

// CommissionLine builds the synthetic quantity-1 product carrying the
// commission as an explicit price override.
func CommissionLine(profile *tenants.Profile, snapshot *ezmanage.Snapshot) nutshell.LeadProduct {
	amount := decimal.NewFromInt(int64(CommissionCents(snapshot))).Div(centsPerDollar)
	return nutshell.LeadProduct{
		Product:  nutshell.ProductRef{ID: profile.CommissionProductID},
		Quantity: 1,
		Price: &nutshell.Price{
			CurrencyShortname: "USD",
			Amount:            amount,
		},
	}
}
