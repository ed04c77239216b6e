package validator

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	bybit "github.com/bybit-exchange/bybit.go.api"
	"github.com/shopspring/decimal"

	"pairdiscovery/config"
	"pairdiscovery/logger"
	"pairdiscovery/model"
)

// runBybitSource validates BybitSpot/BybitFutures using the bybit.go.api
// public-WebSocket helper rather than the generic gorilla/websocket engine,
// so validation exercises the same client code a live feed reader would.
func runBybitSource(ctx context.Context, source model.SourceId, tasks []task, url string, valCfg config.ValidationConfig, batchSize int) *model.ValidationResult {
	log := logger.GetLogger().WithComponent("validator").WithFields(logger.Fields{"source": source.String()})
	result := model.NewValidationResult(source)
	result.Total = len(tasks)
	if len(tasks) == 0 {
		return result
	}

	bySymbol := make(map[string]uint16, len(tasks))
	for _, t := range tasks {
		bySymbol[t.ExchangeSymbol] = t.SymbolId
	}

	obsCh := make(chan observation, 256)
	handler := func(message string) error {
		var env struct {
			Topic string          `json:"topic"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal([]byte(message), &env); err != nil || env.Topic == "" {
			return nil
		}
		parts := strings.Split(env.Topic, ".")
		if len(parts) < 2 {
			return nil
		}
		symbol := parts[len(parts)-1]

		var d struct {
			Bid1Price string `json:"bid1Price"`
			Ask1Price string `json:"ask1Price"`
		}
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil
		}
		if d.Bid1Price == "" && d.Ask1Price == "" {
			return nil
		}
		bid, _ := decimal.NewFromString(d.Bid1Price)
		ask, _ := decimal.NewFromString(d.Ask1Price)
		select {
		case obsCh <- observation{ExchangeSymbol: symbol, Bid: &bid, Ask: &ask}:
		default:
		}
		return nil
	}

	ws := bybit.NewBybitPublicWebSocket(url, handler)
	conn := ws.Connect()
	defer conn.Disconnect()

	for bi, b := range batch(tasks, batchSize) {
		if bi > 0 {
			time.Sleep(valCfg.InterBatchPause)
		}

		args := make([]string, len(b))
		for i, t := range b {
			args[i] = "tickers." + t.ExchangeSymbol
		}
		conn.SendSubscription(args)

		pending := make(map[string]bool, len(b))
		for _, t := range b {
			pending[t.ExchangeSymbol] = true
		}

		overall := time.NewTimer(valCfg.OverallBatchTimeout)
		collect := time.NewTimer(valCfg.CollectDuration)
		idle := time.NewTimer(valCfg.IdleTimeout)

	batchLoop:
		for len(pending) > 0 {
			select {
			case <-ctx.Done():
				break batchLoop
			case <-overall.C:
				break batchLoop
			case <-collect.C:
				break batchLoop
			case <-idle.C:
				break batchLoop
			case o := <-obsCh:
				id, known := bySymbol[o.ExchangeSymbol]
				if !known || !pending[o.ExchangeSymbol] {
					continue
				}
				valid, reason := classify(o)
				if valid {
					result.MarkValid(id)
				} else {
					result.MarkInvalid(id, o.ExchangeSymbol, reason)
				}
				delete(pending, o.ExchangeSymbol)
				if !idle.Stop() {
					<-idle.C
				}
				idle.Reset(valCfg.IdleTimeout)
			}
		}
		overall.Stop()
		collect.Stop()
		idle.Stop()

		for sym := range pending {
			if id, ok := bySymbol[sym]; ok {
				result.MarkInvalid(id, sym, model.NoMessage)
			}
		}
	}

	log.WithFields(logger.Fields{"valid": len(result.Valid), "invalid": len(result.Invalid)}).Info("bybit validation complete")
	return result
}
