package marketdata

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// BinanceSource fetches daily klines from Binance spot. Public kline
// endpoints need no API key.
type BinanceSource struct {
	client      *binance.Client
	quoteSuffix string
	interval    string
}

// NewBinanceSource creates a source quoting symbols against the given
// suffix, e.g. "USDT" turns asset "ARB" into pair "ARBUSDT".
func NewBinanceSource(quoteSuffix string) *BinanceSource {
	return &BinanceSource{
		client:      binance.NewClient("", ""),
		quoteSuffix: quoteSuffix,
		interval:    "1d",
	}
}

// Candles implements Source using the Binance klines endpoint.
func (s *BinanceSource) Candles(ctx context.Context, symbol string, limit int) (types.Series, error) {
	klines, err := s.client.NewKlinesService().
		Symbol(symbol + s.quoteSuffix).
		Interval(s.interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err,
			"failed to fetch klines for %s%s", symbol, s.quoteSuffix)
	}

	return klinesToSeries(klines)
}

// klinesToSeries converts Binance kline rows to the internal bar
// format. Binance returns rows oldest first already.
func klinesToSeries(klines []*binance.Kline) (types.Series, error) {
	series := make(types.Series, 0, len(klines))

	for _, k := range klines {
		open, err := strconv.ParseFloat(k.Open, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "bad open price", err)
		}

		high, err := strconv.ParseFloat(k.High, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "bad high price", err)
		}

		low, err := strconv.ParseFloat(k.Low, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "bad low price", err)
		}

		closePrice, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "bad close price", err)
		}

		volume, err := strconv.ParseFloat(k.Volume, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "bad volume", err)
		}

		series = append(series, types.Bar{
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	return series, nil
}
