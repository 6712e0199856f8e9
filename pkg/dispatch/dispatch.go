package dispatch

import (
	"github.com/joripage/go_util/pkg/shardqueue"
	"go.uber.org/zap"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

type RequestType string

const (
	PlaceOrder  RequestType = "PLACE_ORDER"
	CancelOrder RequestType = "CANCEL_ORDER"
)

// Request is one order-intake or cancel intent handed to the engine by a
// front end. Submit never blocks past the enqueue; the outcome comes back
// through Reply on a worker goroutine.
type Request struct {
	Type RequestType

	UserID    string
	Symbol    string
	Price     float64
	Volume    int64
	Side      orderbook.Side
	OrderType orderbook.OrderType

	// cancel intents carry the order id; Symbol still keys the shard so
	// cancels stay ordered with placements on the same instrument
	OrderID string

	// OrderIDFunc supersedes OrderID when set. It runs on the shard worker,
	// after every earlier request on the same shard has replied, so a cancel
	// can name an order whose id is only known once its placement commits.
	OrderIDFunc func() string

	Reply func(Result)
}

type Result struct {
	Outcome   orderbook.Outcome
	Cancelled bool
	Err       error
}

type Config struct {
	Shards    int
	QueueSize int
}

// Dispatcher drains submitted requests through a sharded worker pool, one
// worker per shard keyed by symbol. Requests for one instrument are handled
// first-in-first-out; different instruments proceed in parallel.
type Dispatcher struct {
	engine *orderbook.MatchingEngine
	sq     *shardqueue.Shardqueue
}

func NewDispatcher(engine *orderbook.MatchingEngine, cfg Config) *Dispatcher {
	if cfg.Shards <= 0 {
		cfg.Shards = 16
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100_000
	}

	return &Dispatcher{
		engine: engine,
		sq:     shardqueue.NewShardQueue(cfg.Shards, cfg.QueueSize),
	}
}

func (d *Dispatcher) Start() {
	d.sq.Start(func(msg interface{}) error {
		req, ok := msg.(*Request)
		if !ok {
			return nil
		}
		d.handle(req)
		return nil
	})
}

// Submit enqueues a request on its symbol's shard and returns immediately.
func (d *Dispatcher) Submit(req *Request) {
	d.sq.Shard(req.Symbol, req)
}

func (d *Dispatcher) handle(req *Request) {
	var res Result

	switch req.Type {
	case PlaceOrder:
		res.Outcome, res.Err = d.engine.PlaceOrder(req.UserID, req.Symbol, req.Price, req.Volume, req.Side, req.OrderType)
	case CancelOrder:
		orderID := req.OrderID
		if req.OrderIDFunc != nil {
			orderID = req.OrderIDFunc()
		}
		res.Cancelled, res.Err = d.engine.CancelOrder(orderID)
	default:
		zap.S().Warnf("dispatch: unknown request type %q", req.Type)
		return
	}

	if res.Err != nil {
		zap.S().Errorw("dispatch: request failed",
			"type", req.Type,
			"symbol", req.Symbol,
			"err", res.Err,
		)
	}

	if req.Reply != nil {
		req.Reply(res)
	}
}
