package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/paperline/paperline/internal/core"
)

// lot is an open position slice awaiting its offsetting fill. Quantity
// is positive for long lots and negative for short lots.
type lot struct {
	quantity   int64
	price      decimal.Decimal
	commission decimal.Decimal // per-share share of the opening fill's commission
}

// roundTrip is a matched open/close pair, possibly a partial slice of
// either fill.
type roundTrip struct {
	symbol   string
	quantity int64
	pnl      decimal.Decimal
	exitAt   time.Time
}

// matchRoundTrips pairs fills FIFO per symbol into closed trades. A
// fill that flips the position closes the open lots first and the
// remainder opens a new lot on the other side. Commissions are
// allocated per share across partial matches.
func matchRoundTrips(orders []OrderRecord) []roundTrip {
	open := make(map[string][]lot)
	var trades []roundTrip

	for _, order := range orders {
		signed := order.Quantity
		if order.Side == core.SideSell {
			signed = -signed
		}
		perShare := order.Commission.Div(decimal.NewFromInt(order.Quantity))

		remaining := signed
		lots := open[order.Symbol]
		for remaining != 0 && len(lots) > 0 && opposite(lots[0].quantity, remaining) {
			head := &lots[0]
			matched := min64(abs64(head.quantity), abs64(remaining))
			qty := decimal.NewFromInt(matched)

			// PnL is exit minus entry, oriented by the side of the
			// open lot.
			diff := order.ExecutedPrice.Sub(head.price)
			if head.quantity < 0 {
				diff = diff.Neg()
			}
			pnl := diff.Mul(qty).
				Sub(head.commission.Mul(qty)).
				Sub(perShare.Mul(qty))
			trades = append(trades, roundTrip{
				symbol:   order.Symbol,
				quantity: matched,
				pnl:      pnl,
				exitAt:   order.Timestamp,
			})

			head.quantity -= matched * sign64(head.quantity)
			remaining -= matched * sign64(remaining)
			if head.quantity == 0 {
				lots = lots[1:]
			}
		}
		if remaining != 0 {
			lots = append(lots, lot{
				quantity:   remaining,
				price:      order.ExecutedPrice,
				commission: perShare,
			})
		}
		open[order.Symbol] = lots
	}
	return trades
}

func opposite(a, b int64) bool {
	return (a > 0 && b < 0) || (a < 0 && b > 0)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func sign64(v int64) int64 {
	if v < 0 {
		return -1
	}
	return 1
}
