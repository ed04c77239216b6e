package validator

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// mexcSource builds the wsSource for MexcSpot (book-ticker channel) and
// MexcFutures (push.deal channel) subscribe and parsing. MEXC futures uses
// the same SUBSCRIPTION framing
// and is validated uniformly, rather than special-cased as a REST-trust
// skip.
func mexcSource(url string, futures bool) wsSource {
	channelPrefix := "spot@public.book_ticker.v3.api.pb@"
	if futures {
		channelPrefix = "push.deal@"
	}
	return wsSource{
		URL: url,
		BuildSubscribe: func(b []task) interface{} {
			params := make([]string, len(b))
			for i, t := range b {
				params[i] = channelPrefix + t.ExchangeSymbol
			}
			return map[string]interface{}{
				"method": "SUBSCRIPTION",
				"params": params,
			}
		},
		ParseMessage: func(data []byte) []observation {
			var msg struct {
				Channel string `json:"c"`
				Symbol  string `json:"s"`
				Data    struct {
					BidPrice string `json:"b"`
					AskPrice string `json:"a"`
				} `json:"d"`
			}
			if err := json.Unmarshal(data, &msg); err != nil || msg.Symbol == "" {
				return nil
			}
			if !strings.Contains(msg.Channel, "book_ticker") && !strings.Contains(msg.Channel, "deal") {
				return nil
			}
			bid, _ := decimal.NewFromString(msg.Data.BidPrice)
			ask, _ := decimal.NewFromString(msg.Data.AskPrice)
			return []observation{{ExchangeSymbol: msg.Symbol, Bid: &bid, Ask: &ask}}
		},
	}
}
