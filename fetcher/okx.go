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

type okxInstrument struct {
	InstId    string `json:"instId"`
	BaseCcy   string `json:"baseCcy"`
	QuoteCcy  string `json:"quoteCcy"`
	CtValCcy  string `json:"ctValCcy"`
	SettleCcy string `json:"settleCcy"`
	State     string `json:"state"`
	LotSz     string `json:"lotSz"`
	TickSz    string `json:"tickSz"`
	MinSz     string `json:"minSz"`
}

type okxResponse struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data []okxInstrument `json:"data"`
}

// fetchOkx retrieves one of OkxSpot/OkxFutures's public instruments
// listing, filtering state=="live". Futures (SWAP) instruments report base
// asset as ctValCcy and quote asset as settleCcy rather than baseCcy/quoteCcy.
func fetchOkx(ctx context.Context, client *http.Client, limiter *rate.Limiter, restURL string, source model.SourceId, instType string, retry config.RetryConfig) ([]model.RawInstrument, error) {
	url := restURL + "?instType=" + instType

	body, err := withRetry(ctx, retry, func(ctx context.Context) ([]byte, int, error) {
		return httpGet(ctx, client, limiter, url)
	})
	if err != nil {
		return nil, fmt.Errorf("okx %s fetch: %w", instType, err)
	}

	var resp okxResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("okx %s parse: %w", instType, err)
	}
	if resp.Code != "0" {
		return nil, fmt.Errorf("okx %s error: %s", instType, resp.Msg)
	}

	var out []model.RawInstrument
	for _, inst := range resp.Data {
		if inst.State != "live" {
			continue
		}
		base, quote := inst.BaseCcy, inst.QuoteCcy
		if source == model.OkxFutures {
			base, quote = inst.CtValCcy, inst.SettleCcy
		}
		out = append(out, model.RawInstrument{
			Source: source,
			Symbol: inst.InstId,
			Base:   base,
			Quote:  quote,
			Status: model.StatusTrading,
			Attributes: model.Attributes{
				MinQty:   parseDecimalPtr(inst.MinSz),
				TickSize: parseDecimalPtr(inst.TickSz),
			},
		})
	}
	return out, nil
}
