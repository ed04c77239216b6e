package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"pairdiscovery/config"
	"pairdiscovery/model"
)

type mexcSpotFilter struct {
	FilterType string `json:"filterType"`
	MinQty     string `json:"minQty"`
	MaxQty     string `json:"maxQty"`
	TickSize   string `json:"tickSize"`
}

type mexcSpotSymbol struct {
	Symbol     string           `json:"symbol"`
	Status     string           `json:"status"`
	BaseAsset  string           `json:"baseAsset"`
	QuoteAsset string           `json:"quoteAsset"`
	Filters    []mexcSpotFilter `json:"filters"`
}

type mexcSpotExchangeInfo struct {
	Symbols []mexcSpotSymbol `json:"symbols"`
}

// fetchMexcSpot retrieves MexcSpot's exchange info, which reuses the
// Binance-style exchangeInfo shape, filtering status=="1".
func fetchMexcSpot(ctx context.Context, client *http.Client, limiter *rate.Limiter, restURL string, retry config.RetryConfig) ([]model.RawInstrument, error) {
	body, err := withRetry(ctx, retry, func(ctx context.Context) ([]byte, int, error) {
		return httpGet(ctx, client, limiter, restURL)
	})
	if err != nil {
		return nil, fmt.Errorf("mexc spot fetch: %w", err)
	}

	var info mexcSpotExchangeInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("mexc spot parse: %w", err)
	}

	var out []model.RawInstrument
	for _, s := range info.Symbols {
		if s.Status != "1" {
			continue
		}
		attrs := model.Attributes{}
		for _, f := range s.Filters {
			switch f.FilterType {
			case "LOT_SIZE":
				attrs.MinQty = parseDecimalPtr(f.MinQty)
				attrs.MaxQty = parseDecimalPtr(f.MaxQty)
			case "PRICE_FILTER":
				attrs.TickSize = parseDecimalPtr(f.TickSize)
			}
		}
		out = append(out, model.RawInstrument{
			Source:     model.MexcSpot,
			Symbol:     s.Symbol,
			Base:       s.BaseAsset,
			Quote:      s.QuoteAsset,
			Status:     model.StatusTrading,
			Attributes: attrs,
		})
	}
	return out, nil
}

type mexcFuturesInstrument struct {
	Symbol    string  `json:"symbol"`
	State     int     `json:"state"`
	BaseCoin  string  `json:"baseCoin"`
	QuoteCoin string  `json:"quoteCoin"`
	MinVol    float64 `json:"minVol"`
	PriceUnit float64 `json:"priceUnit"`
}

type mexcFuturesResponse struct {
	Success bool                    `json:"success"`
	Data    []mexcFuturesInstrument `json:"data"`
}

// fetchMexcFutures retrieves MexcFutures's contract detail, filtering
// state==0 (enabled). Known to return a permanent 4xx for non-institutional
// accounts — that is tolerated at the quorum level, not specially handled
// here.
func fetchMexcFutures(ctx context.Context, client *http.Client, limiter *rate.Limiter, restURL string, retry config.RetryConfig) ([]model.RawInstrument, error) {
	body, err := withRetry(ctx, retry, func(ctx context.Context) ([]byte, int, error) {
		return httpGet(ctx, client, limiter, restURL)
	})
	if err != nil {
		return nil, fmt.Errorf("mexc futures fetch: %w", err)
	}

	var resp mexcFuturesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("mexc futures parse: %w", err)
	}

	var out []model.RawInstrument
	for _, inst := range resp.Data {
		if inst.State != 0 {
			continue
		}
		attrs := model.Attributes{}
		if inst.MinVol != 0 {
			attrs.MinQty = floatToDecimalPtr(inst.MinVol)
		}
		if inst.PriceUnit != 0 {
			attrs.TickSize = floatToDecimalPtr(inst.PriceUnit)
		}
		out = append(out, model.RawInstrument{
			Source:     model.MexcFutures,
			Symbol:     inst.Symbol,
			Base:       inst.BaseCoin,
			Quote:      inst.QuoteCoin,
			Status:     model.StatusTrading,
			Attributes: attrs,
		})
	}
	return out, nil
}
