package fixgateway

import (
	"time"

	"github.com/google/uuid"
	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	"github.com/quickfixgo/fix44/executionreport"
	"github.com/quickfixgo/fix44/ordercancelreject"
	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

func reportStatus(state *orderState, status orderbook.OutcomeStatus) (enum.OrdStatus, enum.ExecType) {
	switch status {
	case orderbook.StatusFilled:
		return enum.OrdStatus_FILLED, enum.ExecType_TRADE
	case orderbook.StatusPartiallyFilled:
		// market order remainder is discarded, the order is done
		return enum.OrdStatus_PARTIALLY_FILLED, enum.ExecType_TRADE
	case orderbook.StatusResting:
		if state.cumQty > 0 {
			return enum.OrdStatus_PARTIALLY_FILLED, enum.ExecType_TRADE
		}
		return enum.OrdStatus_NEW, enum.ExecType_NEW
	default:
		return enum.OrdStatus_REJECTED, enum.ExecType_REJECTED
	}
}

func buildExecutionReport(state *orderState, ordStatus enum.OrdStatus, execType enum.ExecType, leavesQty int64) executionreport.ExecutionReport {
	req := state.req

	avgPx := decimal.Zero
	if state.cumQty > 0 {
		avgPx = decimal.NewFromFloat(state.notional).Div(decimal.NewFromInt(state.cumQty))
	}

	msg := executionreport.New(
		field.NewOrderID(state.orderID),
		field.NewExecID(uuid.NewString()),
		field.NewExecType(execType),
		field.NewOrdStatus(ordStatus),
		field.NewSide(req.Side),
		field.NewLeavesQty(decimal.NewFromInt(leavesQty), 0),
		field.NewCumQty(decimal.NewFromInt(state.cumQty), 0),
		field.NewAvgPx(avgPx, 4),
	)

	msg.SetClOrdID(req.ClOrdID)
	msg.SetAccount(req.Account)
	msg.SetSymbol(req.Symbol)
	msg.SetOrderQty(req.OrderQty, 0)
	msg.SetPrice(req.Price, 0)
	msg.SetTimeInForce(req.TimeInForce)
	msg.SetTransactTime(time.Now())

	return msg
}

func sendExecutionReport(state *orderState, status orderbook.OutcomeStatus) error {
	ordStatus, execType := reportStatus(state, status)

	// only a resting remainder is still working; a partially filled market
	// order discards its remainder
	var leavesQty int64
	if status == orderbook.StatusResting {
		leavesQty = state.req.OrderQty.IntPart() - state.cumQty
	}

	msg := buildExecutionReport(state, ordStatus, execType, leavesQty)
	return quickfix.SendToTarget(msg, *state.req.SessionID)
}

func sendCancelReport(req *OrderCancelRequest, state *orderState) error {
	msg := buildExecutionReport(state, enum.OrdStatus_CANCELED, enum.ExecType_CANCELED, 0)
	msg.SetClOrdID(req.ClOrdID)
	msg.SetOrigClOrdID(req.OrigClOrdID)
	return quickfix.SendToTarget(msg, *req.SessionID)
}

func sendReject(state *orderState, reason string) error {
	msg := buildExecutionReport(state, enum.OrdStatus_REJECTED, enum.ExecType_REJECTED, 0)
	msg.SetText(reason)
	return quickfix.SendToTarget(msg, *state.req.SessionID)
}

func sendCancelReject(req *OrderCancelRequest) error {
	msg := ordercancelreject.New(
		field.NewOrderID("NONE"),
		field.NewClOrdID(req.ClOrdID),
		field.NewOrigClOrdID(req.OrigClOrdID),
		field.NewOrdStatus(enum.OrdStatus_REJECTED),
		field.NewCxlRejResponseTo(enum.CxlRejResponseTo_ORDER_CANCEL_REQUEST),
	)
	return quickfix.SendToTarget(msg, *req.SessionID)
}
