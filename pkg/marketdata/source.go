// Package marketdata provides historical OHLCV candles for the
// scanner. The engine treats "no data" as "no signal possible", so
// sources report absence with an empty series rather than an error
// where the venue simply has nothing for the symbol.
package marketdata

import (
	"context"

	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// Source provides historical OHLCV candles for an asset.
type Source interface {
	// Candles returns up to limit most recent daily bars for the
	// symbol, oldest first. An empty series means no data is available
	// for the symbol.
	Candles(ctx context.Context, symbol string, limit int) (types.Series, error)
}
