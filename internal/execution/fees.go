package execution

import (
	"github.com/shopspring/decimal"

	"github.com/paperline/paperline/internal/core"
)

// FeeModel computes the commission charged on an executed fill. The result
// is never negative.
type FeeModel interface {
	Calculate(executedPrice decimal.Decimal, quantity int64, side core.Side) decimal.Decimal
}

// IndianEquityFeeModel composes the levies charged on NSE/BSE equity
// delivery trades. STT applies on sells only and stamp duty on buys only;
// GST applies to the brokerage, transaction and SEBI charges subtotal.
// The total is rounded to 2 decimal places with banker's rounding.
type IndianEquityFeeModel struct {
	BrokerageBps         float64
	STTBps               float64
	TransactionChargeBps float64
	SEBIChargeBps        float64
	StampDutyBps         float64
	GSTPct               float64
}

// NewIndianEquityFeeModel returns the model with standard NSE delivery
// charges.
func NewIndianEquityFeeModel() *IndianEquityFeeModel {
	return &IndianEquityFeeModel{
		BrokerageBps:         3.0,
		STTBps:               10.0,
		TransactionChargeBps: 0.345,
		SEBIChargeBps:        0.0001,
		StampDutyBps:         1.5,
		GSTPct:               18.0,
	}
}

func (m *IndianEquityFeeModel) Calculate(executedPrice decimal.Decimal, quantity int64, side core.Side) decimal.Decimal {
	turnover := executedPrice.Mul(decimal.NewFromInt(quantity))

	brokerage := turnover.Mul(bpsRate(m.BrokerageBps))
	transactionCharge := turnover.Mul(bpsRate(m.TransactionChargeBps))
	sebiCharge := turnover.Mul(bpsRate(m.SEBIChargeBps))

	stt := decimal.Zero
	if side == core.SideSell {
		stt = turnover.Mul(bpsRate(m.STTBps))
	}

	stampDuty := decimal.Zero
	if side == core.SideBuy {
		stampDuty = turnover.Mul(bpsRate(m.StampDutyBps))
	}

	taxable := brokerage.Add(transactionCharge).Add(sebiCharge)
	gst := taxable.Mul(decimal.NewFromFloat(m.GSTPct / 100.0))

	total := brokerage.Add(stt).Add(transactionCharge).Add(sebiCharge).Add(stampDuty).Add(gst)
	return total.RoundBank(2)
}

// SimpleFeeModel charges a flat basis-point commission on turnover,
// rounded to 2 decimal places.
type SimpleFeeModel struct {
	CommissionBps float64
}

// NewSimpleFeeModel returns a SimpleFeeModel with the given rate.
func NewSimpleFeeModel(commissionBps float64) *SimpleFeeModel {
	return &SimpleFeeModel{CommissionBps: commissionBps}
}

func (m *SimpleFeeModel) Calculate(executedPrice decimal.Decimal, quantity int64, side core.Side) decimal.Decimal {
	turnover := executedPrice.Mul(decimal.NewFromInt(quantity))
	return turnover.Mul(bpsRate(m.CommissionBps)).RoundBank(2)
}

func bpsRate(bps float64) decimal.Decimal {
	return decimal.NewFromFloat(bps).Div(decimal.NewFromInt(10000))
}
