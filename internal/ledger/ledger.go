// Package ledger holds the stock arithmetic of the inventory ledger: wastage,
// weighted-average cost and the signed deltas written to the movement log.
// Everything here is pure; persistence lives in the service layer.
package ledger

import (
	"fmt"

	"sushishop/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// WastagePercent is the share of gross weight lost to processing, rounded to the
// two decimals the column stores. It is undefined (nil) unless gross > 0.
func WastagePercent(gross, net float64) *float64 {
	g := decimal.NewFromFloat(gross)
	if !g.IsPositive() {
		return nil
	}
	w, _ := g.Sub(decimal.NewFromFloat(net)).Div(g).Mul(hundred).Round(2).Float64()
	return &w
}

// MergeStock folds an incoming quantity into a running balance and returns the new
// balance together with the quantity-weighted average unit price.
// When the merged balance is not positive the intake price is returned as is.
func MergeStock(stock, avgPrice, qty, intakePrice float64) (newStock, newAvgPrice float64) {
	s := decimal.NewFromFloat(stock)
	q := decimal.NewFromFloat(qty)
	total := s.Add(q)
	newStock, _ = total.Float64()
	if !total.IsPositive() {
		return newStock, intakePrice
	}
	value := s.Mul(decimal.NewFromFloat(avgPrice)).Add(q.Mul(decimal.NewFromFloat(intakePrice)))
	newAvgPrice, _ = value.Div(total).Float64()
	return newStock, newAvgPrice
}

// WithdrawStock removes qty from the balance, never going below zero.
// shortfall is the part of qty that could not be covered by the balance.
func WithdrawStock(stock, qty float64) (newStock, shortfall float64) {
	s := decimal.NewFromFloat(stock)
	q := decimal.NewFromFloat(qty)
	if q.GreaterThan(s) {
		shortfall, _ = q.Sub(s).Float64()
		return 0, shortfall
	}
	newStock, _ = s.Sub(q).Float64()
	return newStock, 0
}

// TotalPrice is the informational batch cost: gross weight times unit price.
func TotalPrice(gross, unitPrice float64) float64 {
	t, _ := decimal.NewFromFloat(gross).Mul(decimal.NewFromFloat(unitPrice)).Round(2).Float64()
	return t
}

// Delta classifies a quantity change as a movement type and its magnitude.
// ok is false when the quantity did not change.
func Delta(oldQty, newQty float64) (movementType string, qty float64, ok bool) {
	d := decimal.NewFromFloat(newQty).Sub(decimal.NewFromFloat(oldQty))
	switch d.Sign() {
	case 0:
		return "", 0, false
	case 1:
		qty, _ = d.Float64()
		return model.MovementArrival, qty, true
	default:
		qty, _ = d.Abs().Float64()
		return model.MovementWriteOff, qty, true
	}
}

// ArrivalNotes combines the caller's notes with the computed wastage.
func ArrivalNotes(notes string, wastage *float64) *string {
	hasWastage := wastage != nil && *wastage > 0
	switch {
	case notes != "" && hasWastage:
		s := fmt.Sprintf("%s (отход: %.1f%%)", notes, *wastage)
		return &s
	case notes != "":
		return &notes
	case hasWastage:
		s := fmt.Sprintf("Отход: %.1f%%", *wastage)
		return &s
	default:
		return nil
	}
}

// AdjustmentNotes is the fixed marker written for manual quantity edits.
func AdjustmentNotes(movementType string) string {
	if movementType == model.MovementArrival {
		return "Приход ингредиента"
	}
	return "Списание ингредиента"
}

const RemovalNotes = "Удаление из складского учета"
