// Package fetch reads cryptocurrency market data into the database.
package fetch

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dense-analysis/cryptodash/internal/database"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// CoinCount is the number of top-ranked coins refreshed per cycle.
const CoinCount = 50

// MarketResult is one row from the markets endpoint, ranked by market cap.
//
// The change fields can be null in API responses, so they decode through
// NullDecimal and default to zero.
type MarketResult struct {
	ID                       string              `json:"id"`
	Symbol                   string              `json:"symbol"`
	Name                     string              `json:"name"`
	CurrentPrice             decimal.NullDecimal `json:"current_price"`
	LastUpdated              string              `json:"last_updated"`
	PriceChange24h           decimal.NullDecimal `json:"price_change_24h"`
	PriceChangePercentage24h decimal.NullDecimal `json:"price_change_percentage_24h"`
	PriceChangePercentage7d  decimal.NullDecimal `json:"price_change_percentage_7d_in_currency"`
}

type coinDetailResult struct {
	Description struct {
		En string `json:"en"`
	} `json:"description"`
	Links struct {
		Homepage []string `json:"homepage"`
	} `json:"links"`
}

// Client fetches market data from the CoinGecko HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for the public CoinGecko API.
//
// The API is third-party and possibly slow, so requests carry an explicit
// timeout rather than hanging a fetch cycle forever.
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a client against an alternate API host.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
	}
}

func (client *Client) getJSON(requestURL string, ptr any) error {
	response, err := client.httpClient.Get(requestURL)

	if err != nil {
		return err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("api error: %s", response.Status)
	}

	content, err := io.ReadAll(response.Body)

	if err != nil {
		return err
	}

	return json.Unmarshal(content, ptr)
}

func (client *Client) readMarkets() ([]MarketResult, error) {
	values := url.Values{}
	values.Set("vs_currency", "usd")
	values.Set("order", "market_cap_desc")
	values.Set("per_page", fmt.Sprintf("%d", CoinCount))
	values.Set("page", "1")
	values.Set("sparkline", "false")
	values.Set("price_change_percentage", "7d")

	var results []MarketResult

	if err := client.getJSON(
		client.baseURL+"/coins/markets?"+values.Encode(),
		&results,
	); err != nil {
		return nil, err
	}

	return results, nil
}

func (client *Client) readDetail(coinID string) (string, string, error) {
	var detail coinDetailResult

	if err := client.getJSON(client.baseURL+"/coins/"+coinID, &detail); err != nil {
		return "", "", err
	}

	homepage := ""

	if len(detail.Links.Homepage) > 0 {
		homepage = detail.Links.Homepage[0]
	}

	return detail.Description.En, homepage, nil
}

func upsertCoin(
	conn database.Queryable,
	result *MarketResult,
	description string,
	homepage string,
) error {
	return conn.Exec(
		`insert or replace into coins
			(id, symbol, name, price, last_updated,
			 price_change_24h, price_change_percentage_24h,
			 price_change_percentage_7d, description, homepage)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.Symbol,
		result.Name,
		result.CurrentPrice.Decimal,
		result.LastUpdated,
		result.PriceChange24h.Decimal,
		result.PriceChangePercentage24h.Decimal,
		result.PriceChangePercentage7d.Decimal,
		description,
		homepage,
	)
}

// FetchAll runs one complete fetch cycle.
//
// Every coin from the markets endpoint is upserted by ID. A failed detail
// lookup for one coin downgrades that coin to empty description/homepage
// fields without aborting the batch. A failed markets request abandons the
// whole cycle and leaves the existing cache untouched.
//
// The loop is not wrapped in a transaction: an interrupted cycle leaves a
// mix of refreshed and stale rows, which the next cycle repairs.
func (client *Client) FetchAll(conn database.Queryable) error {
	results, err := client.readMarkets()

	if err != nil {
		return err
	}

	for i := range results {
		description, homepage, detailErr := client.readDetail(results[i].ID)

		if detailErr != nil {
			description = ""
			homepage = ""
		}

		if err := upsertCoin(conn, &results[i], description, homepage); err != nil {
			return err
		}
	}

	return nil
}
