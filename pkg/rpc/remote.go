package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tokenview/pkg/models"

	"github.com/tidwall/gjson"
)

var RemoteTimeout = 15 * time.Second

var httpClient = &http.Client{Timeout: RemoteTimeout}

const tokenDetailQuery = `query TokenDetail($contract: ContractInput!) {
  tokenProjects(contracts: [$contract]) {
    name
    description
    homepageUrl
    twitterName
    tokens { chain address symbol }
    markets(currencies: [USD]) {
      price { value }
      marketCap { value }
      volume24h: volume(duration: DAY) { value }
      priceHigh52W: priceHighLow(duration: YEAR, highLow: HIGH) { value }
      priceLow52W: priceHighLow(duration: YEAR, highLow: LOW) { value }
      priceHistory(duration: WEEK) { timestamp value }
    }
  }
}`

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// FetchRemoteDetail queries the data API for the off-chain record of address
// on the network scope. Fields the API does not return stay nil.
func FetchRemoteDetail(ctx context.Context, baseURL, address, scope string) (models.RemoteDetail, error) {
	body, err := json.Marshal(graphQLRequest{
		Query: tokenDetailQuery,
		Variables: map[string]interface{}{
			"contract": map[string]string{"address": strings.ToLower(address), "chain": scope},
		},
	})
	if err != nil {
		return models.RemoteDetail{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, bytes.NewReader(body))
	if err != nil {
		return models.RemoteDetail{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return models.RemoteDetail{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return models.RemoteDetail{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return models.RemoteDetail{}, fmt.Errorf("data api returned %s", resp.Status)
	}
	return ParseRemoteDetail(raw)
}

// ParseRemoteDetail extracts a RemoteDetail from a TokenDetail response body.
func ParseRemoteDetail(raw []byte) (models.RemoteDetail, error) {
	if !gjson.ValidBytes(raw) {
		return models.RemoteDetail{}, fmt.Errorf("data api returned invalid JSON")
	}
	doc := gjson.ParseBytes(raw)
	if msg := doc.Get("errors.0.message"); msg.Exists() && !doc.Get("data.tokenProjects").IsArray() {
		return models.RemoteDetail{}, fmt.Errorf("data api: %s", msg.String())
	}

	project := doc.Get("data.tokenProjects.0")
	market := project.Get("markets.0")

	detail := models.RemoteDetail{
		Name:         optString(project.Get("name")),
		Description:  optString(project.Get("description")),
		HomepageURL:  optString(project.Get("homepageUrl")),
		TwitterName:  optString(project.Get("twitterName")),
		Price:        optFloat(market.Get("price.value")),
		MarketCap:    optFloat(market.Get("marketCap.value")),
		Volume24h:    optFloat(market.Get("volume24h.value")),
		PriceHigh52W: optFloat(market.Get("priceHigh52W.value")),
		PriceLow52W:  optFloat(market.Get("priceLow52W.value")),
	}
	project.Get("tokens").ForEach(func(_, t gjson.Result) bool {
		detail.Tokens = append(detail.Tokens, models.RemoteToken{
			Symbol:  t.Get("symbol").String(),
			Chain:   t.Get("chain").String(),
			Address: t.Get("address").String(),
		})
		return true
	})
	market.Get("priceHistory").ForEach(func(_, p gjson.Result) bool {
		if !p.Get("value").Exists() {
			return true
		}
		detail.PriceHistory = append(detail.PriceHistory, models.PricePoint{
			Timestamp: time.Unix(p.Get("timestamp").Int(), 0).UTC(),
			Value:     p.Get("value").Float(),
		})
		return true
	})
	return detail, nil
}

func optString(r gjson.Result) *string {
	if r.Type != gjson.String {
		return nil
	}
	s := r.String()
	return &s
}

func optFloat(r gjson.Result) *float64 {
	if r.Type != gjson.Number {
		return nil
	}
	f := r.Float()
	return &f
}
