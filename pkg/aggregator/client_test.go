package aggregator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dexswap/pkg/types"
)

const (
	ethAddress  = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
	usdcAddress = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
)

func quoteRequest() types.SwapQuoteRequest {
	return types.SwapQuoteRequest{
		ChainID:         1,
		FromToken:       ethAddress,
		ToToken:         usdcAddress,
		Amount:          "1.5",
		AmountBaseUnits: "1500000000000000000",
		SlippagePercent: "0.5",
	}
}

func newTestClient(baseURL string) *Client {
	return New(Config{
		BaseURL:   baseURL,
		APIKey:    "test-key",
		APISecret: "test-secret",
	}, zap.NewNop())
}

func TestGetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quote", r.URL.Path)
		require.Equal(t, "1500000000000000000", r.URL.Query().Get("amount"))
		require.Equal(t, "0.5", r.URL.Query().Get("slippage"))
		require.NotEmpty(t, r.Header.Get("DEX-ACCESS-KEY"))
		require.NotEmpty(t, r.Header.Get("DEX-ACCESS-SIGN"))
		require.NotEmpty(t, r.Header.Get("DEX-ACCESS-TIMESTAMP"))

		w.Write([]byte(`{"code":"0","msg":"","data":[{
			"chainId":"1",
			"inTokenAddress":"` + ethAddress + `",
			"outTokenAddress":"` + usdcAddress + `",
			"inTokenSymbol":"ETH",
			"outTokenSymbol":"USDC",
			"inAmount":"1500000000000000000",
			"outAmount":"4500000000",
			"estimatedGas":"180000",
			"routerStr":"UniswapV3",
			"priceImpactPercentage":"0.01"
		}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	quote, err := client.GetQuote(context.Background(), quoteRequest())
	require.NoError(t, err)
	require.Equal(t, "ETH", quote.FromSymbol)
	require.Equal(t, "USDC", quote.ToSymbol)
	require.Equal(t, uint8(18), quote.FromDecimals)
	require.Equal(t, uint8(6), quote.ToDecimals)
	require.Equal(t, "4500000000", quote.OutAmount)
	require.Equal(t, "UniswapV3", quote.RouterLabel)
	require.False(t, quote.Simulated)
}

func TestGetQuoteApplicationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"50011","msg":"insufficient liquidity","data":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetQuote(context.Background(), quoteRequest())
	require.Error(t, err)
	require.Equal(t, types.KindApplicationError, types.KindOf(err))
	require.Equal(t, "insufficient liquidity", types.UserMessage(err))
}

func TestGetQuoteClassifiesHTTPFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   types.Kind
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, want: types.KindRateLimited},
		{name: "server error", status: http.StatusInternalServerError, want: types.KindServiceUnavailable},
		{name: "bad gateway", status: http.StatusBadGateway, want: types.KindServiceUnavailable},
		{name: "other client error", status: http.StatusBadRequest, want: types.KindApplicationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			_, err := client.GetQuote(context.Background(), quoteRequest())
			require.Error(t, err)
			require.Equal(t, tt.want, types.KindOf(err))
		})
	}
}

func TestGetQuoteTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	client := New(Config{
		BaseURL:      server.URL,
		APIKey:       "test-key",
		APISecret:    "test-secret",
		QuoteTimeout: 50 * time.Millisecond,
	}, zap.NewNop())

	_, err := client.GetQuote(context.Background(), quoteRequest())
	require.Error(t, err)
	require.Equal(t, types.KindTimeout, types.KindOf(err))
}

func TestGetQuoteUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetQuote(context.Background(), quoteRequest())
	require.Error(t, err)
	require.Equal(t, types.KindServiceUnavailable, types.KindOf(err))
}

func TestGetQuoteEmptyRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"0","msg":"","data":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetQuote(context.Background(), quoteRequest())
	require.Error(t, err)
	require.Equal(t, types.KindApplicationError, types.KindOf(err))
}

func TestGetQuoteMalformedRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"0","msg":"","data":[{"inTokenSymbol":"ETH"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetQuote(context.Background(), quoteRequest())
	require.Error(t, err)
	require.Equal(t, types.KindApplicationError, types.KindOf(err))
}

func TestGetQuoteServedFromCache(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"code":"0","msg":"","data":[{
			"inTokenSymbol":"ETH","outTokenSymbol":"USDC",
			"inAmount":"1500000000000000000","outAmount":"4500000000"
		}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetQuote(context.Background(), quoteRequest())
	require.NoError(t, err)
	_, err = client.GetQuote(context.Background(), quoteRequest())
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestGetSwapTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/swap", r.URL.Path)
		require.Equal(t, "0xabc", r.URL.Query().Get("userWalletAddress"))

		w.Write([]byte(`{"code":"0","msg":"","data":[{"tx":{
			"to":"0xrouter",
			"data":"0xdeadbeef",
			"value":"1500000000000000000",
			"gas":"210000",
			"gasPrice":"20000000000"
		}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	tx, err := client.GetSwapTransaction(context.Background(), quoteRequest(), "0xabc")
	require.NoError(t, err)
	require.Equal(t, "0xrouter", tx.To)
	require.Equal(t, "0xdeadbeef", tx.Data)
	require.Equal(t, "210000", tx.GasLimit)
}

func TestSimulatedMode(t *testing.T) {
	client := New(Config{BaseURL: "http://127.0.0.1:1"}, zap.NewNop())
	require.True(t, client.Simulated())

	quote, err := client.GetQuote(context.Background(), quoteRequest())
	require.NoError(t, err)
	require.True(t, quote.Simulated)
	require.Equal(t, "SIMULATED", quote.RouterLabel)
	// 1.5 ETH at the fixed 3000 USD reference is 4500 USDC.
	require.Equal(t, "4500000000", quote.OutAmount)

	_, err = client.GetSwapTransaction(context.Background(), quoteRequest(), "0xabc")
	require.Error(t, err)
	require.Equal(t, types.KindSimulatedQuote, types.KindOf(err))
}
