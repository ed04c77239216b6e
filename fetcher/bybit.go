package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/go-querystring/query"
	"golang.org/x/time/rate"

	"pairdiscovery/config"
	"pairdiscovery/model"
)

// bybitQuery is encoded by google/go-querystring into the instruments-info
// request's query string for Bybit's cursor-paged fetch.
type bybitQuery struct {
	Category string `url:"category"`
	Cursor   string `url:"cursor,omitempty"`
	Limit    int    `url:"limit,omitempty"`
}

type bybitInstrument struct {
	Symbol        string `json:"symbol"`
	Status        string `json:"status"`
	BaseCoin      string `json:"baseCoin"`
	QuoteCoin     string `json:"quoteCoin"`
	ContractType  string `json:"contractType"`
	LotSizeFilter struct {
		MinOrderQty string `json:"minOrderQty"`
		MaxOrderQty string `json:"maxOrderQty"`
	} `json:"lotSizeFilter"`
	PriceFilter struct {
		TickSize string `json:"tickSize"`
	} `json:"priceFilter"`
}

type bybitResult struct {
	List           []bybitInstrument `json:"list"`
	NextPageCursor string            `json:"nextPageCursor"`
}

type bybitResponse struct {
	RetCode int         `json:"retCode"`
	RetMsg  string      `json:"retMsg"`
	Result  bybitResult `json:"result"`
}

// fetchBybit retrieves one of BybitSpot/BybitFutures's instruments-info
// listing, paging via nextPageCursor, filtering status=="Trading" and (for
// futures) contractType=="LinearPerpetual".
func fetchBybit(ctx context.Context, client *http.Client, limiter *rate.Limiter, restURL string, source model.SourceId, category string, retry config.RetryConfig) ([]model.RawInstrument, error) {
	var out []model.RawInstrument
	cursor := ""

	for {
		q, err := query.Values(bybitQuery{Category: category, Cursor: cursor, Limit: 1000})
		if err != nil {
			return nil, fmt.Errorf("bybit query encode: %w", err)
		}
		url := restURL + "?" + q.Encode()

		body, err := withRetry(ctx, retry, func(ctx context.Context) ([]byte, int, error) {
			return httpGet(ctx, client, limiter, url)
		})
		if err != nil {
			return nil, fmt.Errorf("bybit %s fetch: %w", category, err)
		}

		var resp bybitResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("bybit %s parse: %w", category, err)
		}
		if resp.RetCode != 0 {
			return nil, fmt.Errorf("bybit %s error: %s", category, resp.RetMsg)
		}

		for _, inst := range resp.Result.List {
			if inst.Status != "Trading" {
				continue
			}
			if source == model.BybitFutures && inst.ContractType != "LinearPerpetual" {
				continue
			}
			out = append(out, model.RawInstrument{
				Source: source,
				Symbol: inst.Symbol,
				Base:   inst.BaseCoin,
				Quote:  inst.QuoteCoin,
				Status: model.StatusTrading,
				Attributes: model.Attributes{
					MinQty:   parseDecimalPtr(inst.LotSizeFilter.MinOrderQty),
					MaxQty:   parseDecimalPtr(inst.LotSizeFilter.MaxOrderQty),
					TickSize: parseDecimalPtr(inst.PriceFilter.TickSize),
				},
			})
		}

		if resp.Result.NextPageCursor == "" {
			break
		}
		cursor = resp.Result.NextPageCursor
	}

	return out, nil
}
