package venue

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/ChronoCoders/flashloanbot/pkg/ratelimit"
	"github.com/ChronoCoders/flashloanbot/pkg/retry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HTTPClientConfig содержит настройки HTTP клиента для площадок.
// Параметры подобраны под торговые операции: короткие таймауты,
// connection pooling с Keep-Alive.
type HTTPClientConfig struct {
	ConnectTimeout      time.Duration
	TotalTimeout        time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration

	// Лимит запросов к площадке (token bucket)
	RateLimit float64
	RateBurst float64

	// APIKey отправляется в Authorization: Bearer, если задан
	APIKey string
}

// DefaultHTTPClientConfig возвращает конфигурацию по умолчанию
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		ConnectTimeout:      5 * time.Second,
		TotalTimeout:        15 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		RateLimit:           10,
		RateBurst:           20,
	}
}

// newHTTPClient собирает http.Client по конфигурации
func newHTTPClient(cfg HTTPClientConfig) *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
	}
	return &http.Client{Transport: transport, Timeout: cfg.TotalTimeout}
}

// HTTPVenue - адаптер внешней площадки ликвидности по REST API.
//
// Ожидаемые endpoints:
//   - GET  /quote?asset_in=..&asset_out=..&amount_in=..
//   - POST /swap  {"asset_in":..,"asset_out":..,"amount_in":..}
//
// Quote ретраится (идемпотентен), Swap - НЕТ: повтор свопа может
// исполниться дважды, ретраи на совести вызывающего.
type HTTPVenue struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *ratelimit.Limiter
	retrier retry.Config
}

// NewHTTPVenue создаёт адаптер площадки
func NewHTTPVenue(name, baseURL string, cfg HTTPClientConfig) *HTTPVenue {
	return &HTTPVenue{
		name:    name,
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		client:  newHTTPClient(cfg),
		limiter: ratelimit.New(cfg.RateLimit, cfg.RateBurst),
		retrier: retry.DefaultConfig(),
	}
}

func (v *HTTPVenue) authorize(req *http.Request) {
	if v.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.apiKey)
	}
}

// Name возвращает имя площадки
func (v *HTTPVenue) Name() string { return v.name }

// swapResponse - ответ площадки на quote/swap
type swapResponse struct {
	AmountOut decimal.Decimal `json:"amount_out"`
}

// Quote запрашивает котировку (с ретраями по временным ошибкам)
func (v *HTTPVenue) Quote(ctx context.Context, assetIn, assetOut string, amountIn decimal.Decimal) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("asset_in", assetIn)
	q.Set("asset_out", assetOut)
	q.Set("amount_in", amountIn.String())

	var out decimal.Decimal
	err := retry.Do(ctx, func() error {
		resp, err := v.get(ctx, "/quote?"+q.Encode())
		if err != nil {
			return err
		}
		out = resp.AmountOut
		return nil
	}, v.retrier)
	return out, err
}

// Swap исполняет своп; без ретраев
func (v *HTTPVenue) Swap(ctx context.Context, assetIn, assetOut string, amountIn decimal.Decimal) (decimal.Decimal, error) {
	if err := v.limiter.Wait(ctx); err != nil {
		return decimal.Zero, err
	}

	body, err := json.Marshal(map[string]string{
		"asset_in":  assetIn,
		"asset_out": assetOut,
		"amount_in": amountIn.String(),
	})
	if err != nil {
		return decimal.Zero, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/swap", bytes.NewReader(body))
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Content-Type", "application/json")
	v.authorize(req)

	resp, err := v.client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("venue %s: swap failed with status %d", v.name, resp.StatusCode)
	}

	var sr swapResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return decimal.Zero, fmt.Errorf("venue %s: decode swap response: %w", v.name, err)
	}
	return sr.AmountOut, nil
}

// get выполняет GET с rate limit и разбором ответа
func (v *HTTPVenue) get(ctx context.Context, path string) (*swapResponse, error) {
	if err := v.limiter.Wait(ctx); err != nil {
		return nil, retry.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+path, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	v.authorize(req)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err // сетевые ошибки ретраим
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("venue %s: status %d", v.name, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, retry.Permanent(fmt.Errorf("venue %s: status %d", v.name, resp.StatusCode))
	}

	var sr swapResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, retry.Permanent(fmt.Errorf("venue %s: decode response: %w", v.name, err))
	}
	return &sr, nil
}

// HTTPFeed - адаптер ценового фида по REST API.
// Endpoint: GET /price/{ref}, GET /liquidity/{asset}
type HTTPFeed struct {
	baseURL string
	client  *http.Client
	limiter *ratelimit.Limiter
}

// NewHTTPFeed создаёт адаптер фида
func NewHTTPFeed(baseURL string, cfg HTTPClientConfig) *HTTPFeed {
	return &HTTPFeed{
		baseURL: baseURL,
		client:  newHTTPClient(cfg),
		limiter: ratelimit.New(cfg.RateLimit, cfg.RateBurst),
	}
}

// priceResponse - ответ фида
type priceResponse struct {
	Value decimal.Decimal `json:"value"`
}

func (f *HTTPFeed) fetch(ctx context.Context, path string) (decimal.Decimal, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return decimal.Zero, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("price feed: status %d", resp.StatusCode)
	}
	var pr priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return decimal.Zero, err
	}
	return pr.Value, nil
}

// Price возвращает цену по ссылке
func (f *HTTPFeed) Price(ctx context.Context, ref string) (decimal.Decimal, error) {
	return f.fetch(ctx, "/price/"+url.PathEscape(ref))
}

// Liquidity возвращает ликвидность по активу
func (f *HTTPFeed) Liquidity(ctx context.Context, assetID string) (decimal.Decimal, error) {
	return f.fetch(ctx, "/liquidity/"+url.PathEscape(assetID))
}

var (
	_ SwapVenue = (*HTTPVenue)(nil)
	_ PriceFeed = (*HTTPFeed)(nil)
)
