package validator

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// okxSource builds the wsSource for OkxSpot/OkxFutures: arg-list subscribe
// payload, tickers channel parsing, and the venue's "ping"/"pong" text
// keepalive.
func okxSource(url string) wsSource {
	return wsSource{
		URL: url,
		BuildSubscribe: func(b []task) interface{} {
			args := make([]map[string]string, len(b))
			for i, t := range b {
				args[i] = map[string]string{"channel": "tickers", "instId": t.ExchangeSymbol}
			}
			return map[string]interface{}{"op": "subscribe", "args": args}
		},
		HandleKeepalive: func(conn *websocket.Conn, data []byte) bool {
			if string(data) == "ping" {
				_ = conn.WriteMessage(websocket.TextMessage, []byte("pong"))
				return true
			}
			return false
		},
		ParseMessage: func(data []byte) []observation {
			var msg struct {
				Arg struct {
					InstId string `json:"instId"`
				} `json:"arg"`
				Data []struct {
					BidPx string `json:"bidPx"`
					AskPx string `json:"askPx"`
				} `json:"data"`
			}
			if err := json.Unmarshal(data, &msg); err != nil || len(msg.Data) == 0 || msg.Arg.InstId == "" {
				return nil
			}
			d := msg.Data[0]
			bid, _ := decimal.NewFromString(d.BidPx)
			ask, _ := decimal.NewFromString(d.AskPx)
			return []observation{{ExchangeSymbol: msg.Arg.InstId, Bid: &bid, Ask: &ask}}
		},
	}
}
