package rental

import "github.com/shopspring/decimal"

// Rental longer than this many days earns the duration discount.
const longRentalDays = 7

var (
	durationDiscountRate = decimal.RequireFromString("0.10")
	vipDiscountRate      = decimal.RequireFromString("0.15")
	riskSurchargeRate    = decimal.RequireFromString("0.05")

	one = decimal.NewFromInt(1)
)

// PriceBreakdown is returned to the caller of Reserve so the applied rates can
// be rendered and audited. It is never persisted.
type PriceBreakdown struct {
	BaseTotal        decimal.Decimal `json:"base_total"`
	DurationDiscount decimal.Decimal `json:"duration_discount"`
	VIPDiscount      decimal.Decimal `json:"vip_discount"`
	RiskSurcharge    decimal.Decimal `json:"risk_surcharge"`
	Total            decimal.Decimal `json:"total"`
}

// Price computes the final rental price. Discounts compound multiplicatively
// in a fixed order: duration, then VIP, then the risk surcharge. The total is
// rounded half-up to cents.
func Price(baseTotal decimal.Decimal, durationDays int, clientVIP, clientRisky bool) PriceBreakdown {
	b := PriceBreakdown{
		BaseTotal:        baseTotal,
		DurationDiscount: decimal.Zero,
		VIPDiscount:      decimal.Zero,
		RiskSurcharge:    decimal.Zero,
	}

	if durationDays > longRentalDays {
		b.DurationDiscount = durationDiscountRate
	}
	if clientVIP {
		b.VIPDiscount = vipDiscountRate
	}
	if clientRisky {
		b.RiskSurcharge = riskSurchargeRate
	}

	b.Total = baseTotal.
		Mul(one.Sub(b.DurationDiscount)).
		Mul(one.Sub(b.VIPDiscount)).
		Mul(one.Add(b.RiskSurcharge)).
		Round(2)

	return b
}
