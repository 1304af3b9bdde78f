package pricing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"github.com/fleetpay/fleetpay/internal/isk"
	"github.com/fleetpay/fleetpay/internal/metrics"
)

// DefaultBaseURL is the public Janice REST endpoint.
const DefaultBaseURL = "https://janice.e-351.com/api/rest/v2"

const cacheSize = 256

// JaniceConfig configures the appraisal client.
type JaniceConfig struct {
	BaseURL   string
	APIKey    string
	Market    string        // e.g. "jita"
	PriceType string        // "buy" or "sell"
	Timeout   time.Duration // per-request timeout
	CacheTTL  time.Duration // how long identical pastes stay cached
}

// JaniceClient appraises loot pastes against the Janice API, caching
// results by input text for the configured TTL.
type JaniceClient struct {
	cfg    JaniceConfig
	client *http.Client
	clock  clockwork.Clock
	cache  *expirable.LRU[string, *Appraisal]
}

var _ Appraiser = (*JaniceClient)(nil)

// NewJaniceClient creates a client. clock may be nil for the real clock.
func NewJaniceClient(cfg JaniceConfig, clock clockwork.Clock) *JaniceClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Market == "" {
		cfg.Market = "jita"
	}
	if cfg.PriceType == "" {
		cfg.PriceType = "buy"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Hour
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &JaniceClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		clock:  clock,
		cache:  expirable.NewLRU[string, *Appraisal](cacheSize, nil, cfg.CacheTTL),
	}
}

// janiceItem mirrors one entry of the upstream pricer response.
type janiceItem struct {
	ItemType struct {
		EID  int64  `json:"eid"`
		Name string `json:"name"`
	} `json:"itemType"`
	Quantity        int64                  `json:"quantity"`
	ImmediatePrices map[string]json.Number `json:"immediatePrices"`
}

// Appraise values a loot paste. Identical pastes within the cache TTL
// are served from memory without touching the API.
func (c *JaniceClient) Appraise(ctx context.Context, lootText string) (*Appraisal, error) {
	text := strings.TrimSpace(lootText)
	if text == "" {
		metrics.AppraisalRequests.WithLabelValues("error").Inc()
		return nil, &Error{Kind: KindEmptyInput, Msg: "loot text cannot be empty"}
	}
	if c.cfg.APIKey == "" {
		metrics.AppraisalRequests.WithLabelValues("error").Inc()
		return nil, &Error{Kind: KindAuth, Msg: "janice API key not configured"}
	}

	key := cacheKey(text)
	if cached, ok := c.cache.Get(key); ok {
		slog.Info("returning cached appraisal", "items", len(cached.Items))
		metrics.AppraisalRequests.WithLabelValues("cache_hit").Inc()
		return cached, nil
	}

	appraisal, err := c.appraise(ctx, text)
	if err != nil {
		metrics.AppraisalRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	c.cache.Add(key, appraisal)
	metrics.AppraisalRequests.WithLabelValues("ok").Inc()
	return appraisal, nil
}

func (c *JaniceClient) appraise(ctx context.Context, text string) (*Appraisal, error) {
	url := fmt.Sprintf("%s/pricer?market=%s", c.cfg.BaseURL, c.cfg.Market)

	slog.Info("calling janice API",
		"lines", len(strings.Split(text, "\n")),
		"market", c.cfg.Market,
		"price_type", c.cfg.PriceType,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(text))
	if err != nil {
		return nil, &Error{Kind: KindConnection, Msg: "failed to build request", Err: err}
	}
	req.Header.Set("X-ApiKey", c.cfg.APIKey)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.client.Do(req)
	if err != nil {
		kind := KindConnection
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			kind = KindTimeout
		}
		slog.Error("janice request failed", "error", err)
		return nil, &Error{Kind: kind, Msg: "janice API request failed", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &Error{Kind: KindAuth, Msg: "invalid janice API key"}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &Error{Kind: KindRateLimit, Msg: "janice API rate limit exceeded"}
	case resp.StatusCode >= 500:
		return nil, &Error{Kind: KindServer, Msg: fmt.Sprintf("janice API server error: %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, &Error{Kind: KindMalformed, Msg: fmt.Sprintf("unexpected status: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindConnection, Msg: "failed to read response", Err: err}
	}

	var raw []janiceItem
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &Error{Kind: KindMalformed, Msg: "unexpected API response format", Err: err}
	}

	priceKey := c.cfg.PriceType + "Price"
	appraisal := &Appraisal{
		Market:      c.cfg.Market,
		PriceType:   c.cfg.PriceType,
		TotalValue:  decimal.Zero,
		AppraisedAt: c.clock.Now(),
	}

	for _, it := range raw {
		price, ok := it.ImmediatePrices[priceKey]
		if !ok {
			slog.Warn("skipping item without price", "name", it.ItemType.Name, "price_key", priceKey)
			continue
		}
		unitPrice, err := decimal.NewFromString(price.String())
		if err != nil {
			slog.Warn("skipping item with unparseable price", "name", it.ItemType.Name, "error", err)
			continue
		}
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		total := unitPrice.Mul(decimal.NewFromInt(qty))

		appraisal.Items = append(appraisal.Items, Item{
			TypeID:     it.ItemType.EID,
			Name:       it.ItemType.Name,
			Quantity:   qty,
			UnitPrice:  unitPrice,
			TotalValue: total,
		})
		appraisal.TotalValue = appraisal.TotalValue.Add(total)
	}

	slog.Info("appraised loot",
		"items", len(appraisal.Items),
		"total_value", isk.Format(appraisal.TotalValue),
	)
	return appraisal, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
