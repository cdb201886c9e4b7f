// Package aggregator is the client for the off-chain swap aggregation
// service: quote lookup (GET /quote) and swap transaction payload
// retrieval (GET /swap). Failures are classified into the shared error
// taxonomy at the call site; the client never retries on its own.
package aggregator

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	gocache "github.com/patrickmn/go-cache"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"dexswap/pkg/tokens"
	"dexswap/pkg/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultQuoteTimeout = 10 * time.Second
	defaultSwapTimeout  = 15 * time.Second
	quoteCacheTTL       = 3 * time.Second
)

// Config carries the aggregation service settings. Empty credentials
// put the client in simulated mode: quotes are synthetic and clearly
// labeled, and swap payload requests are refused.
type Config struct {
	BaseURL      string
	APIKey       string
	APISecret    string
	QuoteTimeout time.Duration
	SwapTimeout  time.Duration
}

// Client talks to the aggregation service over HTTPS.
type Client struct {
	httpClient   *fasthttp.Client
	baseURL      string
	apiKey       string
	apiSecret    string
	quoteTimeout time.Duration
	swapTimeout  time.Duration
	limiter      *rate.Limiter
	quoteCache   *gocache.Cache
	logger       *zap.Logger
	now          func() time.Time
}

// New creates an aggregation service client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.QuoteTimeout <= 0 {
		cfg.QuoteTimeout = defaultQuoteTimeout
	}
	if cfg.SwapTimeout <= 0 {
		cfg.SwapTimeout = defaultSwapTimeout
	}
	return &Client{
		httpClient:   &fasthttp.Client{},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		apiSecret:    cfg.APISecret,
		quoteTimeout: cfg.QuoteTimeout,
		swapTimeout:  cfg.SwapTimeout,
		limiter:      rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		quoteCache:   gocache.New(quoteCacheTTL, time.Minute),
		logger:       logger.Named("aggregator"),
		now:          time.Now,
	}
}

// Simulated reports whether the client runs without credentials and
// therefore serves synthetic, non-authoritative quotes.
func (c *Client) Simulated() bool {
	return c.apiKey == "" || c.apiSecret == ""
}

// GetQuote fetches the best-price route for the request. Identical
// requests within a short window are served from cache to stay inside
// the service's rate limits.
func (c *Client) GetQuote(ctx context.Context, req types.SwapQuoteRequest) (*types.SwapQuote, error) {
	if c.Simulated() {
		return c.simulatedQuote(req)
	}

	query := url.Values{}
	query.Set("chainId", fmt.Sprintf("%d", req.ChainID))
	query.Set("inTokenAddress", req.FromToken)
	query.Set("outTokenAddress", req.ToToken)
	query.Set("amount", req.AmountBaseUnits)
	query.Set("slippage", req.SlippagePercent)

	cacheKey := query.Encode()
	if cached, ok := c.quoteCache.Get(cacheKey); ok {
		quote := cached.(types.SwapQuote)
		return &quote, nil
	}

	body, err := c.get(ctx, "/quote", query, c.quoteTimeout)
	if err != nil {
		return nil, err
	}

	var envelope quoteEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, types.Wrap(types.KindApplicationError, "quote response is not valid JSON", err)
	}
	if envelope.Code != codeOK {
		c.logger.Warn("quote rejected by service",
			zap.String("code", envelope.Code),
			zap.String("msg", envelope.Msg))
		return nil, types.E(types.KindApplicationError, envelope.Msg)
	}
	if len(envelope.Data) == 0 {
		return nil, types.E(types.KindApplicationError, "quote response carried no route")
	}

	route := envelope.Data[0]
	if err := route.validate(); err != nil {
		return nil, types.Wrap(types.KindApplicationError, "malformed quote response", err)
	}

	quote := types.SwapQuote{
		FromSymbol:         route.InTokenSymbol,
		ToSymbol:           route.OutTokenSymbol,
		FromDecimals:       decimalsFor(route.InTokenSymbol),
		ToDecimals:         decimalsFor(route.OutTokenSymbol),
		InAmount:           route.InAmount,
		OutAmount:          route.OutAmount,
		EstimatedGas:       route.EstimatedGas,
		PriceImpactPercent: route.PriceImpactPercentage,
		RouterLabel:        route.RouterStr,
	}
	c.quoteCache.Set(cacheKey, quote, gocache.DefaultExpiration)

	c.logger.Debug("quote received",
		zap.String("in", route.InAmount),
		zap.String("out", route.OutAmount),
		zap.String("router", route.RouterStr))
	return &quote, nil
}

// GetSwapTransaction fetches the transaction payload for execution.
// Refused outright in simulated mode: a synthetic quote must never be
// presented for signing.
func (c *Client) GetSwapTransaction(ctx context.Context, req types.SwapQuoteRequest, walletAddress string) (*types.SwapTransaction, error) {
	if c.Simulated() {
		return nil, types.E(types.KindSimulatedQuote,
			"service credentials are not configured; execution is disabled in simulated mode")
	}

	query := url.Values{}
	query.Set("chainId", fmt.Sprintf("%d", req.ChainID))
	query.Set("inTokenAddress", req.FromToken)
	query.Set("outTokenAddress", req.ToToken)
	query.Set("amount", req.AmountBaseUnits)
	query.Set("slippage", req.SlippagePercent)
	query.Set("userWalletAddress", walletAddress)

	body, err := c.get(ctx, "/swap", query, c.swapTimeout)
	if err != nil {
		return nil, err
	}

	var envelope swapEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, types.Wrap(types.KindApplicationError, "swap response is not valid JSON", err)
	}
	if envelope.Code != codeOK {
		c.logger.Warn("swap payload rejected by service",
			zap.String("code", envelope.Code),
			zap.String("msg", envelope.Msg))
		return nil, types.E(types.KindApplicationError, envelope.Msg)
	}
	if len(envelope.Data) == 0 {
		return nil, types.E(types.KindApplicationError, "swap response carried no transaction")
	}

	tx := envelope.Data[0].Tx
	if err := tx.validate(); err != nil {
		return nil, types.Wrap(types.KindApplicationError, "malformed swap response", err)
	}

	return &types.SwapTransaction{
		To:       tx.To,
		Data:     tx.Data,
		Value:    tx.Value,
		GasLimit: tx.Gas,
		GasPrice: tx.GasPrice,
	}, nil
}

// get performs a signed GET against the service with a bounded
// deadline and classifies transport and HTTP-level failures.
func (c *Client) get(ctx context.Context, path string, query url.Values, timeout time.Duration) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, types.Wrap(types.KindTimeout, "request cancelled while rate limited", err)
	}

	requestPath := path + "?" + query.Encode()
	requestURL := c.baseURL + requestPath

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentType("application/json")
	c.signRequest(req, fasthttp.MethodGet, requestPath)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline := c.now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			c.logger.Warn("aggregation service call timed out", zap.String("path", path))
			return nil, types.Wrap(types.KindTimeout, "aggregation service did not answer in time", err)
		}
		c.logger.Error("aggregation service unreachable", zap.String("path", path), zap.Error(err))
		return nil, types.Wrap(types.KindServiceUnavailable, "aggregation service is unreachable", err)
	}

	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)

	switch {
	case status == fasthttp.StatusTooManyRequests:
		c.logger.Warn("aggregation service rate limited the request", zap.String("path", path))
		return nil, types.E(types.KindRateLimited, "too many requests; slow down and retry")
	case status >= 500:
		c.logger.Error("aggregation service error", zap.String("path", path), zap.Int("status", status))
		return nil, types.E(types.KindServiceUnavailable,
			fmt.Sprintf("aggregation service failed with status %d", status))
	case status != fasthttp.StatusOK:
		return nil, types.E(types.KindApplicationError,
			fmt.Sprintf("aggregation service returned status %d: %s", status, string(body)))
	}

	return body, nil
}

// signRequest attaches the API key and an HMAC-SHA256 signature over
// timestamp+method+path when credentials are configured.
func (c *Client) signRequest(req *fasthttp.Request, method, requestPath string) {
	if c.apiKey == "" || c.apiSecret == "" {
		return
	}

	timestamp := c.now().UTC().Format(time.RFC3339)
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(timestamp + method + requestPath))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req.Header.Set("DEX-ACCESS-KEY", c.apiKey)
	req.Header.Set("DEX-ACCESS-SIGN", signature)
	req.Header.Set("DEX-ACCESS-TIMESTAMP", timestamp)
}

// simulatedQuote produces a deterministic placeholder quote from a
// static price table so the flow can be exercised without credentials.
// The quote is flagged so execution paths can reject it.
func (c *Client) simulatedQuote(req types.SwapQuoteRequest) (*types.SwapQuote, error) {
	from, err := tokens.FindByAddress(req.FromToken)
	if err != nil {
		return nil, types.Wrap(types.KindApplicationError, "unknown source token in simulated mode", err)
	}
	to, err := tokens.FindByAddress(req.ToToken)
	if err != nil {
		return nil, types.Wrap(types.KindApplicationError, "unknown destination token in simulated mode", err)
	}

	out, err := simulateOutAmount(req.AmountBaseUnits, from, to)
	if err != nil {
		return nil, types.Wrap(types.KindApplicationError, "could not simulate quote", err)
	}

	c.logger.Info("serving simulated quote; no service credentials configured",
		zap.String("from", from.Symbol),
		zap.String("to", to.Symbol))

	return &types.SwapQuote{
		FromSymbol:         from.Symbol,
		ToSymbol:           to.Symbol,
		FromDecimals:       from.Decimals,
		ToDecimals:         to.Decimals,
		InAmount:           req.AmountBaseUnits,
		OutAmount:          out,
		EstimatedGas:       "210000",
		PriceImpactPercent: "0",
		RouterLabel:        "SIMULATED",
		Simulated:          true,
	}, nil
}

// decimalsFor resolves a symbol's precision from the known token set,
// defaulting to 18 for symbols outside it.
func decimalsFor(symbol string) uint8 {
	if t, err := tokens.Find(symbol); err == nil {
		return t.Decimals
	}
	return 18
}
