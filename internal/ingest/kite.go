package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"sentiment-trader/internal/logger"
	"sentiment-trader/internal/types"
)

// KitePriceSource fetches daily candles from the Zerodha Kite historical
// API. Instrument tokens are resolved once per process from the exchange's
// instrument dump.
type KitePriceSource struct {
	client   *kiteconnect.Client
	exchange string
	tokens   map[string]int
}

// NewKitePriceSource reads KITE_API_KEY and KITE_ACCESS_TOKEN from the
// environment.
func NewKitePriceSource(exchange string) (*KitePriceSource, error) {
	apiKey := os.Getenv("KITE_API_KEY")
	accessToken := os.Getenv("KITE_ACCESS_TOKEN")
	if apiKey == "" || accessToken == "" {
		return nil, fmt.Errorf("KITE_API_KEY and KITE_ACCESS_TOKEN must be set")
	}

	client := kiteconnect.New(apiKey)
	client.SetAccessToken(accessToken)

	if exchange == "" {
		exchange = "NSE"
	}
	return &KitePriceSource{client: client, exchange: exchange}, nil
}

// FetchDaily returns day candles for ticker over [from, to].
func (s *KitePriceSource) FetchDaily(ctx context.Context, ticker string, from, to time.Time) ([]types.PriceBar, error) {
	token, err := s.instrumentToken(ctx, ticker)
	if err != nil {
		return nil, err
	}

	candles, err := s.client.GetHistoricalData(token, "day", from, to, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candles for %s: %w", ticker, err)
	}

	bars := make([]types.PriceBar, 0, len(candles))
	for _, c := range candles {
		bars = append(bars, types.PriceBar{
			Ticker:   ticker,
			Date:     c.Date.Time,
			Open:     c.Open,
			High:     c.High,
			Low:      c.Low,
			Close:    c.Close,
			AdjClose: c.Close,
			Volume:   float64(c.Volume),
		})
	}

	logger.Debug(ctx, "Fetched daily candles", "ticker", ticker, "bars", len(bars))
	return bars, nil
}

// instrumentToken resolves a trading symbol on the configured exchange,
// loading the instrument dump on first use.
func (s *KitePriceSource) instrumentToken(ctx context.Context, ticker string) (int, error) {
	if s.tokens == nil {
		instruments, err := s.client.GetInstrumentsByExchange(s.exchange)
		if err != nil {
			return 0, fmt.Errorf("failed to load instruments for %s: %w", s.exchange, err)
		}
		s.tokens = make(map[string]int, len(instruments))
		for _, inst := range instruments {
			s.tokens[strings.ToUpper(inst.Tradingsymbol)] = inst.InstrumentToken
		}
		logger.Debug(ctx, "Loaded instrument dump", "exchange", s.exchange, "instruments", len(s.tokens))
	}

	token, ok := s.tokens[strings.ToUpper(ticker)]
	if !ok {
		return 0, fmt.Errorf("%s not found on %s", ticker, s.exchange)
	}
	return token, nil
}
