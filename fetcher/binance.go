package fetcher

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"pairdiscovery/model"
)

// fetchBinanceSpot retrieves BinanceSpot's exchange info via go-binance/v2,
// filtering status=="TRADING". The request is made once; withRetry is not
// applied.
func fetchBinanceSpot(ctx context.Context, restURL string) ([]model.RawInstrument, error) {
	client := binance.NewClient("", "")
	if restURL != "" {
		client.BaseURL = restURL
	}

	info, err := client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance spot exchangeInfo: %w", err)
	}

	var out []model.RawInstrument
	for _, s := range info.Symbols {
		if s.Status != "TRADING" {
			continue
		}
		attrs := model.Attributes{}
		if lot := s.LotSizeFilter(); lot != nil {
			attrs.MinQty = parseDecimalPtr(lot.MinQuantity)
			attrs.MaxQty = parseDecimalPtr(lot.MaxQuantity)
		}
		if pf := s.PriceFilter(); pf != nil {
			attrs.TickSize = parseDecimalPtr(pf.TickSize)
		}
		if mn := s.NotionalFilter(); mn != nil {
			attrs.MinNotional = parseDecimalPtr(mn.MinNotional)
		}
		out = append(out, model.RawInstrument{
			Source:     model.BinanceSpot,
			Symbol:     s.Symbol,
			Base:       s.BaseAsset,
			Quote:      s.QuoteAsset,
			Status:     model.StatusTrading,
			Attributes: attrs,
		})
	}
	return out, nil
}

// fetchBinanceFutures retrieves BinanceFutures's exchange info, filtering
// status=="TRADING" && contractType=="PERPETUAL". The request is made once;
// withRetry is not applied.
func fetchBinanceFutures(ctx context.Context, restURL string) ([]model.RawInstrument, error) {
	client := futures.NewClient("", "")
	if restURL != "" {
		client.BaseURL = restURL
	}

	info, err := client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance futures exchangeInfo: %w", err)
	}

	var out []model.RawInstrument
	for _, s := range info.Symbols {
		if s.Status != "TRADING" || s.ContractType != "PERPETUAL" {
			continue
		}
		attrs := model.Attributes{}
		if lot := s.LotSizeFilter(); lot != nil {
			attrs.MinQty = parseDecimalPtr(lot.MinQuantity)
			attrs.MaxQty = parseDecimalPtr(lot.MaxQuantity)
		}
		if pf := s.PriceFilter(); pf != nil {
			attrs.TickSize = parseDecimalPtr(pf.TickSize)
		}
		out = append(out, model.RawInstrument{
			Source:     model.BinanceFutures,
			Symbol:     s.Symbol,
			Base:       s.BaseAsset,
			Quote:      s.QuoteAsset,
			Status:     model.StatusTrading,
			Attributes: attrs,
		})
	}
	return out, nil
}

func parseDecimalPtr(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}
