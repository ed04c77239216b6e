package validator

import (
	"context"
	"net"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"
	"github.com/shopspring/decimal"

	"pairdiscovery/config"
	"pairdiscovery/logger"
	"pairdiscovery/model"
)

// observation is one parsed tick candidate extracted from a WS message,
// keyed by the exchange-native symbol string so the caller can resolve it
// back to a symbol_id.
type observation struct {
	ExchangeSymbol string
	Bid            *decimal.Decimal
	Ask            *decimal.Decimal
}

// classify applies the tick-validity rule: valid iff bid>0, ask>0, bid<=ask.
func classify(o observation) (valid bool, reason model.InvalidReason) {
	if o.Bid == nil || o.Bid.Sign() <= 0 {
		return false, model.ZeroOrMissingBid
	}
	if o.Ask == nil || o.Ask.Sign() <= 0 {
		return false, model.ZeroOrMissingAsk
	}
	if o.Bid.GreaterThan(*o.Ask) {
		return false, model.BidAboveAsk
	}
	return true, 0
}

// wsSource describes one venue's WS protocol to the generic engine: how to
// build a subscribe payload for a batch, how to parse incoming messages
// into observations, and how to answer venue-level keepalive control
// frames (e.g. OKX's text "ping"/"pong").
type wsSource struct {
	URL              string
	BuildSubscribe   func(batch []task) interface{}
	ParseMessage     func(data []byte) []observation
	HandleKeepalive  func(conn *websocket.Conn, data []byte) (handled bool)
	SubscribeRejected func(data []byte) []string // exchange symbols explicitly rejected, if the venue reports that
}

// runSource validates every task for one source against src, returning a
// ValidationResult. Handles per-source connection reuse,
// reconnect-with-backoff, venue batch sizing, and the four-way batch-exit
// condition.
func runSource(ctx context.Context, source model.SourceId, tasks []task, src wsSource, valCfg config.ValidationConfig, batchSize int) *model.ValidationResult {
	log := logger.GetLogger().WithComponent("validator").WithFields(logger.Fields{"source": source.String()})
	result := model.NewValidationResult(source)
	result.Total = len(tasks)
	if len(tasks) == 0 {
		return result
	}

	bySymbol := make(map[string]uint16, len(tasks))
	for _, t := range tasks {
		bySymbol[t.ExchangeSymbol] = t.SymbolId
	}

	batches := batch(tasks, batchSize)

	conn, err := connectWithRetry(ctx, src.URL, valCfg)
	if err != nil {
		log.WithError(err).Warn("failed to establish control connection; marking all symbols invalid")
		for _, t := range tasks {
			result.MarkInvalid(t.SymbolId, t.ExchangeSymbol, model.ConnectionDropped)
		}
		return result
	}
	defer conn.Close()

	for bi, b := range batches {
		if bi > 0 {
			time.Sleep(valCfg.InterBatchPause)
		}

		if conn == nil {
			newConn, err := connectWithRetry(ctx, src.URL, valCfg)
			if err != nil {
				log.WithError(err).Warn("reconnect exhausted; marking remaining batches invalid")
				markRemaining(result, batches[bi:], bySymbol)
				return result
			}
			conn = newConn
		}

		dropped := runBatch(ctx, conn, b, src, valCfg, result, bySymbol)
		if dropped {
			conn.Close()
			conn = nil
		}
	}

	if conn != nil {
		conn.Close()
	}
	return result
}

// runBatch runs one batch's subscribe-and-observe loop. Returns true if the
// connection was dropped mid-batch (caller must reconnect before the next
// batch).
func runBatch(ctx context.Context, conn *websocket.Conn, b []task, src wsSource, valCfg config.ValidationConfig, result *model.ValidationResult, bySymbol map[string]uint16) bool {
	log := logger.GetLogger().WithComponent("validator")

	payload := src.BuildSubscribe(b)
	if err := conn.WriteJSON(payload); err != nil {
		log.WithError(err).Warn("subscribe write failed; treating as connection drop")
		markBatchUnobserved(result, b, model.ConnectionDropped)
		return true
	}

	pending := make(map[string]bool, len(b))
	for _, t := range b {
		pending[t.ExchangeSymbol] = true
	}

	overallDeadline := time.Now().Add(valCfg.OverallBatchTimeout)
	collectDeadline := time.Now().Add(valCfg.CollectDuration)
	idleDeadline := time.Now().Add(valCfg.IdleTimeout)

	for len(pending) > 0 {
		now := time.Now()
		if now.After(overallDeadline) || now.After(collectDeadline) || now.After(idleDeadline) {
			break
		}
		if ctx.Err() != nil {
			break
		}

		_ = conn.SetReadDeadline(time.Now().Add(valCfg.ReadSlice))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue // absence during read_slice is normal
			}
			log.WithError(err).Warn("read error; treating remaining batch symbols as connection drop")
			for sym := range pending {
				if id, ok := bySymbol[sym]; ok {
					result.MarkInvalid(id, sym, model.ConnectionDropped)
				}
			}
			return true
		}

		if src.HandleKeepalive != nil && src.HandleKeepalive(conn, data) {
			continue
		}

		if src.SubscribeRejected != nil {
			for _, sym := range src.SubscribeRejected(data) {
				if id, ok := bySymbol[sym]; ok && pending[sym] {
					result.MarkInvalid(id, sym, model.SubscribeRejected)
					delete(pending, sym)
				}
			}
		}

		observations := src.ParseMessage(data)
		if len(observations) == 0 {
			continue
		}

		sawNew := false
		for _, o := range observations {
			id, known := bySymbol[o.ExchangeSymbol]
			if !known || !pending[o.ExchangeSymbol] {
				continue
			}
			valid, reason := classify(o)
			if valid {
				result.MarkValid(id)
			} else {
				result.MarkInvalid(id, o.ExchangeSymbol, reason)
			}
			delete(pending, o.ExchangeSymbol)
			sawNew = true
		}
		if sawNew {
			idleDeadline = time.Now().Add(valCfg.IdleTimeout)
		}
	}

	for sym := range pending {
		if id, ok := bySymbol[sym]; ok {
			result.MarkInvalid(id, sym, model.NoMessage)
		}
	}
	return false
}

func markBatchUnobserved(result *model.ValidationResult, b []task, reason model.InvalidReason) {
	for _, t := range b {
		result.MarkInvalid(t.SymbolId, t.ExchangeSymbol, reason)
	}
}

func markRemaining(result *model.ValidationResult, batches [][]task, bySymbol map[string]uint16) {
	for _, b := range batches {
		markBatchUnobserved(result, b, model.ConnectionDropped)
	}
}

// connectWithRetry dials url up to valCfg.ReconnectAttempts times with
// exponential backoff (100ms base, 30s cap by default).
func connectWithRetry(ctx context.Context, url string, valCfg config.ValidationConfig) (*websocket.Conn, error) {
	b := &backoff.Backoff{Min: valCfg.ReconnectBaseDelay, Max: valCfg.ReconnectMaxDelay, Factor: 2}
	var lastErr error
	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	for attempt := 1; attempt <= valCfg.ReconnectAttempts; attempt++ {
		conn, _, err := dialer.DialContext(ctx, url, nil)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if attempt == valCfg.ReconnectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
	return nil, lastErr
}
