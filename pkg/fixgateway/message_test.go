package fixgateway

import (
	"testing"
	"time"

	"github.com/quickfixgo/enum"
	"github.com/shopspring/decimal"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

func TestOrderTypeFromFIX(t *testing.T) {
	cases := []struct {
		name    string
		ordType enum.OrdType
		tif     enum.TimeInForce
		want    orderbook.OrderType
		wantErr bool
	}{
		{"limit fok", enum.OrdType_LIMIT, enum.TimeInForce_FILL_OR_KILL, orderbook.FOK, false},
		{"limit gtc", enum.OrdType_LIMIT, enum.TimeInForce_GOOD_TILL_CANCEL, orderbook.GTC, false},
		{"limit day", enum.OrdType_LIMIT, enum.TimeInForce_DAY, orderbook.GTC, false},
		{"limit no tif", enum.OrdType_LIMIT, enum.TimeInForce(""), orderbook.GTC, false},
		{"market", enum.OrdType_MARKET, enum.TimeInForce(""), orderbook.MKT, false},
		{"limit ioc unsupported", enum.OrdType_LIMIT, enum.TimeInForce_IMMEDIATE_OR_CANCEL, "", true},
		{"stop unsupported", enum.OrdType_STOP, enum.TimeInForce_DAY, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := orderTypeFromFIX(tc.ordType, tc.tif)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("want error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSideFromFIX(t *testing.T) {
	if got, err := sideFromFIX(enum.Side_BUY); err != nil || got != orderbook.BUY {
		t.Errorf("buy: got %v, %v", got, err)
	}
	if got, err := sideFromFIX(enum.Side_SELL); err != nil || got != orderbook.SELL {
		t.Errorf("sell: got %v, %v", got, err)
	}
	if _, err := sideFromFIX(enum.Side_CROSS); err == nil {
		t.Error("cross: want error")
	}
}

func testState() *orderState {
	return &orderState{
		req: &NewOrderSingle{
			Account:      "ACC1",
			ClOrdID:      "C1",
			Symbol:       "AAPL",
			OrdType:      enum.OrdType_LIMIT,
			Price:        decimal.NewFromInt(100),
			TimeInForce:  enum.TimeInForce_GOOD_TILL_CANCEL,
			Side:         enum.Side_BUY,
			TransactTime: time.Now(),
			OrderQty:     decimal.NewFromInt(50),
		},
		orderID:  "O1",
		cumQty:   30,
		notional: 3015, // 30 @ 100.5
	}
}

func TestReportStatusMapping(t *testing.T) {
	state := testState()

	if st, et := reportStatus(state, orderbook.StatusFilled); st != enum.OrdStatus_FILLED || et != enum.ExecType_TRADE {
		t.Errorf("filled: got %v/%v", st, et)
	}
	if st, et := reportStatus(state, orderbook.StatusPartiallyFilled); st != enum.OrdStatus_PARTIALLY_FILLED || et != enum.ExecType_TRADE {
		t.Errorf("partial: got %v/%v", st, et)
	}
	if st, et := reportStatus(state, orderbook.StatusResting); st != enum.OrdStatus_PARTIALLY_FILLED || et != enum.ExecType_TRADE {
		t.Errorf("resting with fills: got %v/%v", st, et)
	}
	if st, et := reportStatus(state, orderbook.StatusRejected); st != enum.OrdStatus_REJECTED || et != enum.ExecType_REJECTED {
		t.Errorf("rejected: got %v/%v", st, et)
	}

	state.cumQty = 0
	if st, et := reportStatus(state, orderbook.StatusResting); st != enum.OrdStatus_NEW || et != enum.ExecType_NEW {
		t.Errorf("resting no fills: got %v/%v", st, et)
	}
}

func TestBuildExecutionReportFields(t *testing.T) {
	state := testState()
	msg := buildExecutionReport(state, enum.OrdStatus_PARTIALLY_FILLED, enum.ExecType_TRADE, 20)

	if got, err := msg.GetOrderID(); err != nil || got != "O1" {
		t.Errorf("OrderID: got %v, %v", got, err)
	}
	if got, err := msg.GetClOrdID(); err != nil || got != "C1" {
		t.Errorf("ClOrdID: got %v, %v", got, err)
	}
	if got, err := msg.GetSymbol(); err != nil || got != "AAPL" {
		t.Errorf("Symbol: got %v, %v", got, err)
	}
	if got, err := msg.GetCumQty(); err != nil || !got.Equal(decimal.NewFromInt(30)) {
		t.Errorf("CumQty: got %v, %v", got, err)
	}
	if got, err := msg.GetLeavesQty(); err != nil || !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("LeavesQty: got %v, %v", got, err)
	}
	if got, err := msg.GetAvgPx(); err != nil || !got.Equal(decimal.NewFromFloat(100.5)) {
		t.Errorf("AvgPx: got %v, %v", got, err)
	}
	if got, err := msg.GetOrdStatus(); err != nil || got != enum.OrdStatus_PARTIALLY_FILLED {
		t.Errorf("OrdStatus: got %v, %v", got, err)
	}
}

func BenchmarkBuildExecutionReport(b *testing.B) {
	state := testState()
	for i := 0; i < b.N; i++ {
		_ = buildExecutionReport(state, enum.OrdStatus_FILLED, enum.ExecType_TRADE, 0)
	}
}
