// Package backtest replays a trained model over historical feature rows
// without lookahead: a signal computed from day t's features earns day
// t+1's return.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"sentiment-trader/internal/features"
	"sentiment-trader/internal/logger"
	"sentiment-trader/internal/mlearn"
	"sentiment-trader/internal/predict"
	"sentiment-trader/internal/storage"
	"sentiment-trader/internal/train"
	"sentiment-trader/internal/types"
)

// Options mirror the backtest section of the config file.
type Options struct {
	TransactionCost float64
	InitialCapital  float64
}

// Day is one replay step. Position is the signal from the previous day;
// NetReturn is the strategy's return after costs.
type Day struct {
	Date      time.Time `json:"date"`
	UpProba   float64   `json:"up_proba"`
	Signal    int       `json:"signal"`
	Position  int       `json:"position"`
	NetReturn float64   `json:"net_return"`
	Equity    float64   `json:"equity"`
	BuyHold   float64   `json:"buy_hold"`
}

// Result summarizes one ticker's replay.
type Result struct {
	Ticker        string  `json:"ticker"`
	Days          []Day   `json:"days"`
	TotalReturn   float64 `json:"total_return"`
	BuyHoldReturn float64 `json:"buy_hold_return"`
	SharpeRatio   float64 `json:"sharpe_ratio"`
	MaxDrawdown   float64 `json:"max_drawdown"`
	FinalEquity   float64 `json:"final_equity"`
	Trades        int     `json:"trades"`
}

// Backtester replays persisted models over stored history.
type Backtester struct {
	builder   *features.Builder
	modelsDir string
	opts      Options
}

func New(store *storage.Store, modelsDir string, opts Options) *Backtester {
	if opts.InitialCapital == 0 {
		opts.InitialCapital = 1.0
	}
	return &Backtester{
		builder:   features.NewBuilder(store),
		modelsDir: modelsDir,
		opts:      opts,
	}
}

// Run replays one ticker end to end: loads its model, rebuilds its feature
// rows and simulates the long/flat strategy against buy-and-hold.
func (b *Backtester) Run(ctx context.Context, ticker string) (*Result, error) {
	timer := logger.StartOperation(ctx, "backtest", "ticker", ticker)

	art, err := train.LoadArtifact(train.ArtifactPath(b.modelsDir, ticker))
	if err != nil {
		if os.IsNotExist(err) {
			err = fmt.Errorf("%w for %s", predict.ErrModelNotFound, ticker)
		}
		timer.EndWithError(err)
		return nil, err
	}

	rows, err := b.builder.Build(ctx, ticker, art.SentimentModel)
	if err != nil {
		timer.EndWithError(err)
		return nil, err
	}
	if len(rows) == 0 {
		err = errors.New("no feature rows to replay")
		timer.EndWithError(err)
		return nil, err
	}

	result := b.replay(ticker, rows, art.Forest)

	timer.End(
		"days", len(result.Days),
		"total_return", result.TotalReturn,
		"sharpe", result.SharpeRatio,
		"max_drawdown", result.MaxDrawdown)
	return result, nil
}

// replay walks the rows once. The model's signal on day t becomes the
// position held through day t+1, so the first day is always flat. Each
// position change pays the transaction cost.
func (b *Backtester) replay(ticker string, rows []types.FeatureRow, forest *mlearn.Forest) *Result {
	result := &Result{Ticker: ticker, Days: make([]Day, len(rows))}

	equity := b.opts.InitialCapital
	buyHold := b.opts.InitialCapital
	netReturns := make([]float64, len(rows))
	equityCurve := make([]float64, len(rows))

	prevSignal := 0
	for i, row := range rows {
		upProba := forest.PredictProba(row.Vector())
		signal := 0
		if upProba >= 0.5 {
			signal = 1
		}

		position := prevSignal
		gross := float64(position) * row.Return1D
		cost := b.opts.TransactionCost * abs(float64(signal-prevSignal))
		net := gross - cost
		if signal != prevSignal {
			result.Trades++
		}
		prevSignal = signal

		equity *= 1 + net
		buyHold *= 1 + row.Return1D

		netReturns[i] = net
		equityCurve[i] = equity
		result.Days[i] = Day{
			Date:      row.Date,
			UpProba:   upProba,
			Signal:    signal,
			Position:  position,
			NetReturn: net,
			Equity:    equity,
			BuyHold:   buyHold,
		}
	}

	result.FinalEquity = equity
	result.TotalReturn = equity/b.opts.InitialCapital - 1
	result.BuyHoldReturn = buyHold/b.opts.InitialCapital - 1
	result.SharpeRatio = SharpeRatio(netReturns, 0)
	result.MaxDrawdown = MaxDrawdown(equityCurve)
	return result
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
