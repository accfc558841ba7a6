package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullResponse = `{
  "data": {
    "tokenProjects": [{
      "name": "USD Coin",
      "description": "USDC is a fully collateralized US dollar stablecoin.",
      "homepageUrl": "https://www.circle.com/usdc",
      "twitterName": "circle",
      "tokens": [{"chain": "ETHEREUM", "address": "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", "symbol": "usdc"}],
      "markets": [{
        "price": {"value": 1.0001},
        "marketCap": {"value": 42000000000},
        "volume24h": {"value": 3100000000},
        "priceHigh52W": {"value": 1.02},
        "priceLow52W": null,
        "priceHistory": [{"timestamp": 1700000000, "value": 0.999}, {"timestamp": 1700003600, "value": 1.001}]
      }]
    }]
  }
}`

func TestFetchRemoteDetail(t *testing.T) {
	var got graphQLRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(fullResponse))
	}))
	defer srv.Close()

	detail, err := FetchRemoteDetail(context.Background(), srv.URL, usdc, "ETHEREUM")
	require.NoError(t, err)

	contract, ok := got.Variables["contract"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ETHEREUM", contract["chain"])
	assert.Equal(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", contract["address"])

	require.NotNil(t, detail.Name)
	assert.Equal(t, "USD Coin", *detail.Name)
	assert.Equal(t, "circle", *detail.TwitterName)
	assert.Equal(t, 42000000000.0, *detail.MarketCap)
	assert.Equal(t, 1.02, *detail.PriceHigh52W)
	assert.Nil(t, detail.PriceLow52W)
	require.Len(t, detail.Tokens, 1)
	assert.Equal(t, "usdc", detail.Tokens[0].Symbol)
	require.Len(t, detail.PriceHistory, 2)
	assert.Equal(t, int64(1700000000), detail.PriceHistory[0].Timestamp.Unix())
}

func TestParseRemoteDetail_Empty(t *testing.T) {
	detail, err := ParseRemoteDetail([]byte(`{"data":{"tokenProjects":[]}}`))
	require.NoError(t, err)
	assert.Nil(t, detail.Name)
	assert.Nil(t, detail.Description)
	assert.Nil(t, detail.MarketCap)
	assert.Empty(t, detail.Tokens)
}

func TestParseRemoteDetail_Errors(t *testing.T) {
	_, err := ParseRemoteDetail([]byte(`not json`))
	assert.Error(t, err)

	_, err = ParseRemoteDetail([]byte(`{"errors":[{"message":"rate limited"}]}`))
	assert.EqualError(t, err, "data api: rate limited")
}

func TestFetchRemoteDetail_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := FetchRemoteDetail(context.Background(), srv.URL, usdc, "ETHEREUM")
	assert.ErrorContains(t, err, "502")
}
