package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

const (
	numOrders = 1_000_000
	minPrice  = 100.0
	maxPrice  = 200.0
	minQty    = 1
	maxQty    = 100
)

type benchOrder struct {
	side  orderbook.Side
	price float64
	qty   int64
}

func randomOrder() benchOrder {
	side := orderbook.BUY
	if rand.Intn(2) == 0 {
		side = orderbook.SELL
	}
	price := minPrice + rand.Float64()*(maxPrice-minPrice)

	return benchOrder{
		side:  side,
		price: float64(int(price*100)) / 100,
		qty:   int64(rand.Intn(maxQty-minQty+1) + minQty),
	}
}

func main() {
	engine := orderbook.NewMatchingEngine()

	totalMatched := 0
	totalQty := int64(0)
	engine.RegisterTradeCallback(func(trades []orderbook.Trade) {
		for _, t := range trades {
			totalMatched++
			totalQty += t.Volume
		}
	})

	start := time.Now()
	for i := 0; i < numOrders; i++ {
		o := randomOrder()
		if _, err := engine.PlaceOrder("bench", "ABC", o.price, o.qty, o.side, orderbook.GTC); err != nil {
			panic(err)
		}
	}

	elapsed := time.Since(start)

	fmt.Println("--------")
	fmt.Printf("Total Orders     : %d\n", numOrders)
	fmt.Printf("Total Matches    : %d\n", totalMatched)
	fmt.Printf("Total Matched Qty: %d\n", totalQty)
	fmt.Printf("Time Taken       : %s\n", elapsed)
	fmt.Printf("Orders/sec       : %.0f\n", float64(numOrders)/elapsed.Seconds())
}
