package fixgateway

import (
	"context"
	"errors"
	"sync"

	"github.com/quickfixgo/enum"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/dispatch"
	"github.com/joripage/matching-engine/pkg/orderbook"
)

type Gateway struct {
	cfg        *GatewayConfig
	app        *Application
	dispatcher *dispatch.Dispatcher

	// ClOrdID -> *orderState; cancel requests resolve the engine order id
	// through here
	orderMapping sync.Map
}

type GatewayConfig struct {
	ConfigFilepath string
}

// orderState is what the gateway remembers about an accepted order: enough
// to build execution reports and to translate OrigClOrdID on cancels.
type orderState struct {
	req      *NewOrderSingle
	orderID  string
	cumQty   int64
	notional float64
}

func NewGateway(cfg *GatewayConfig, dispatcher *dispatch.Dispatcher) *Gateway {
	return &Gateway{
		cfg:        cfg,
		dispatcher: dispatcher,
	}
}

func (s *Gateway) Start(ctx context.Context) error {
	app, err := startApp(s.cfg.ConfigFilepath, s)
	if err != nil {
		zap.S().Errorf("start fix app err=%v", err)
		return err
	}
	s.app = app
	return nil
}

func (s *Gateway) Stop() {
	if s.app != nil {
		stopApp(s.app)
	}
}

// AddOrder translates a NewOrderSingle into an engine request and submits
// it. The execution report goes out from the dispatch worker once the engine
// answers.
func (s *Gateway) AddOrder(msg *NewOrderSingle) {
	typ, err := orderTypeFromFIX(msg.OrdType, msg.TimeInForce)
	if err != nil {
		zap.S().Warnw("fix: unsupported order", "clordid", msg.ClOrdID, "err", err)
		_ = sendReject(&orderState{req: msg}, err.Error())
		return
	}

	side, err := sideFromFIX(msg.Side)
	if err != nil {
		zap.S().Warnw("fix: unsupported side", "clordid", msg.ClOrdID, "err", err)
		_ = sendReject(&orderState{req: msg}, err.Error())
		return
	}

	price, _ := msg.Price.Float64()
	qty := msg.OrderQty.IntPart()

	state := &orderState{req: msg}
	s.orderMapping.Store(msg.ClOrdID, state)

	s.dispatcher.Submit(&dispatch.Request{
		Type:      dispatch.PlaceOrder,
		UserID:    msg.Account,
		Symbol:    msg.Symbol,
		Price:     price,
		Volume:    qty,
		Side:      side,
		OrderType: typ,
		Reply: func(res dispatch.Result) {
			s.onPlaceResult(state, res)
		},
	})
}

func (s *Gateway) CancelOrder(msg *OrderCancelRequest) {
	v, ok := s.orderMapping.Load(msg.OrigClOrdID)
	if !ok {
		zap.S().Warnw("fix: cancel for unknown order", "origclordid", msg.OrigClOrdID)
		_ = sendCancelReject(msg)
		return
	}
	state := v.(*orderState)

	s.dispatcher.Submit(&dispatch.Request{
		Type:   dispatch.CancelOrder,
		Symbol: msg.Symbol,
		// resolved on the shard worker: a cancel chasing its own placement
		// must see the orderID the place reply commits
		OrderIDFunc: func() string { return state.orderID },
		Reply: func(res dispatch.Result) {
			s.onCancelResult(msg, state, res)
		},
	})
}

func (s *Gateway) onPlaceResult(state *orderState, res dispatch.Result) {
	if res.Err != nil {
		_ = sendReject(state, res.Err.Error())
		s.orderMapping.Delete(state.req.ClOrdID)
		return
	}

	out := res.Outcome
	state.orderID = out.OrderID
	for _, t := range out.Trades {
		state.cumQty += t.Volume
		state.notional += t.Price * float64(t.Volume)
	}

	if err := sendExecutionReport(state, out.Status); err != nil {
		zap.S().Errorf("fix: send execution report err=%v", err)
	}

	// only resting orders can still be cancelled or reported against
	if out.Status != orderbook.StatusResting {
		s.orderMapping.Delete(state.req.ClOrdID)
	}
}

func (s *Gateway) onCancelResult(msg *OrderCancelRequest, state *orderState, res dispatch.Result) {
	if res.Err != nil || !res.Cancelled {
		_ = sendCancelReject(msg)
		return
	}

	s.orderMapping.Delete(state.req.ClOrdID)
	if err := sendCancelReport(msg, state); err != nil {
		zap.S().Errorf("fix: send cancel report err=%v", err)
	}
}

func orderTypeFromFIX(ordType enum.OrdType, tif enum.TimeInForce) (orderbook.OrderType, error) {
	if ordType == enum.OrdType_MARKET {
		return orderbook.MKT, nil
	}
	if ordType != enum.OrdType_LIMIT {
		return "", errors.New("unsupported OrdType")
	}

	switch tif {
	case enum.TimeInForce_FILL_OR_KILL:
		return orderbook.FOK, nil
	case enum.TimeInForce_GOOD_TILL_CANCEL, enum.TimeInForce_DAY, enum.TimeInForce(""):
		return orderbook.GTC, nil
	default:
		return "", errors.New("unsupported TimeInForce")
	}
}

func sideFromFIX(side enum.Side) (orderbook.Side, error) {
	switch side {
	case enum.Side_BUY:
		return orderbook.BUY, nil
	case enum.Side_SELL:
		return orderbook.SELL, nil
	default:
		return "", errors.New("unsupported Side")
	}
}
