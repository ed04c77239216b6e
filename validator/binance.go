package validator

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// binanceSource builds the wsSource for BinanceSpot/BinanceFutures: a
// combined SUBSCRIBE/UNSUBSCRIBE-style control message and bookTicker
// payload parsing.
func binanceSource(url string) wsSource {
	return wsSource{
		URL: url,
		BuildSubscribe: func(b []task) interface{} {
			params := make([]string, len(b))
			for i, t := range b {
				params[i] = t.ExchangeSymbol + "@bookTicker"
			}
			return map[string]interface{}{
				"method": "SUBSCRIBE",
				"params": params,
				"id":     1,
			}
		},
		ParseMessage: func(data []byte) []observation {
			var msg struct {
				S string `json:"s"`
				B string `json:"b"`
				A string `json:"a"`
			}
			if err := json.Unmarshal(data, &msg); err != nil || msg.S == "" {
				return nil
			}
			bid, _ := decimal.NewFromString(msg.B)
			ask, _ := decimal.NewFromString(msg.A)
			return []observation{{ExchangeSymbol: toLower(msg.S), Bid: &bid, Ask: &ask}}
		},
	}
}
