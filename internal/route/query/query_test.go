package query_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dense-analysis/cryptodash/internal/database"
	"github.com/dense-analysis/cryptodash/internal/model"
	"github.com/dense-analysis/cryptodash/internal/route/query"
)

func openTestConn(t *testing.T) *database.Conn {
	t.Helper()

	conn, err := database.Open(filepath.Join(t.TempDir(), "test.db"))

	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	t.Cleanup(func() { conn.Close() })

	if err := database.EnsureSchema(conn); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	return conn
}

func insertCoin(t *testing.T, conn *database.Conn, id string, symbol string, name string, price string) {
	t.Helper()

	if err := conn.Exec(
		`insert or replace into coins
			(id, symbol, name, price, last_updated,
			 price_change_24h, price_change_percentage_24h,
			 price_change_percentage_7d, description, homepage)
		values (?, ?, ?, ?, '', 0, 0, 0, '', '')`,
		id,
		symbol,
		name,
		decimal.RequireFromString(price),
	); err != nil {
		t.Fatalf("failed to insert coin %q: %v", id, err)
	}
}

func TestLoadCoinPageOrdersByPriceDescending(t *testing.T) {
	conn := openTestConn(t)
	insertCoin(t, conn, "litecoin", "ltc", "Litecoin", "100")
	insertCoin(t, conn, "bitcoin", "btc", "Bitcoin", "50000")
	insertCoin(t, conn, "ethereum", "eth", "Ethereum", "3000")

	var coinList []model.Coin

	if err := query.LoadCoinPage(conn, &query.CoinFilter{}, 1, &coinList); err != nil {
		t.Fatalf("LoadCoinPage returned error: %v", err)
	}

	if len(coinList) != 3 {
		t.Fatalf("expected 3 coins, got %d", len(coinList))
	}

	expectedOrder := []string{"bitcoin", "ethereum", "litecoin"}

	for i, id := range expectedOrder {
		if coinList[i].ID != id {
			t.Fatalf("expected coin %d to be %q, got %q", i, id, coinList[i].ID)
		}
	}
}

func TestLoadCoinPageBreaksPriceTiesByID(t *testing.T) {
	conn := openTestConn(t)
	insertCoin(t, conn, "zcash", "zec", "Zcash", "100")
	insertCoin(t, conn, "aave", "aave", "Aave", "100")

	var coinList []model.Coin

	if err := query.LoadCoinPage(conn, &query.CoinFilter{}, 1, &coinList); err != nil {
		t.Fatalf("LoadCoinPage returned error: %v", err)
	}

	if len(coinList) != 2 || coinList[0].ID != "aave" || coinList[1].ID != "zcash" {
		t.Fatalf("expected deterministic tie ordering, got %+v", coinList)
	}
}

func TestLoadCoinPageNeverExceedsPageSize(t *testing.T) {
	conn := openTestConn(t)

	for i := 0; i < 15; i++ {
		id := fmt.Sprintf("coin-%02d", i)
		insertCoin(t, conn, id, id, id, fmt.Sprintf("%d", 1000-i))
	}

	var coinList []model.Coin

	if err := query.LoadCoinPage(conn, &query.CoinFilter{}, 1, &coinList); err != nil {
		t.Fatalf("LoadCoinPage returned error: %v", err)
	}

	if len(coinList) != query.PerPage {
		t.Fatalf("expected %d coins on page 1, got %d", query.PerPage, len(coinList))
	}

	if err := query.LoadCoinPage(conn, &query.CoinFilter{}, 2, &coinList); err != nil {
		t.Fatalf("LoadCoinPage returned error: %v", err)
	}

	if len(coinList) != 5 {
		t.Fatalf("expected 5 coins on page 2, got %d", len(coinList))
	}

	if err := query.LoadCoinPage(conn, &query.CoinFilter{}, 3, &coinList); err != nil {
		t.Fatalf("LoadCoinPage returned error: %v", err)
	}

	if len(coinList) != 0 {
		t.Fatalf("expected an empty page past the end, got %d coins", len(coinList))
	}
}

func TestTextFilterMatchesNameOrSymbol(t *testing.T) {
	conn := openTestConn(t)
	insertCoin(t, conn, "bitcoin", "btc", "Bitcoin", "50000")
	insertCoin(t, conn, "litecoin", "ltc", "Litecoin", "100")

	var coinList []model.Coin

	if err := query.LoadCoinPage(
		conn,
		&query.CoinFilter{Text: "bit"},
		1,
		&coinList,
	); err != nil {
		t.Fatalf("LoadCoinPage returned error: %v", err)
	}

	if len(coinList) != 1 || coinList[0].ID != "bitcoin" {
		t.Fatalf("expected only bitcoin for query %q, got %+v", "bit", coinList)
	}

	if err := query.LoadCoinPage(
		conn,
		&query.CoinFilter{Text: "LTC"},
		1,
		&coinList,
	); err != nil {
		t.Fatalf("LoadCoinPage returned error: %v", err)
	}

	if len(coinList) != 1 || coinList[0].ID != "litecoin" {
		t.Fatalf("expected symbol match to be case-insensitive, got %+v", coinList)
	}
}

func TestFavoritesFilterWithEmptySetMatchesNothing(t *testing.T) {
	conn := openTestConn(t)
	insertCoin(t, conn, "bitcoin", "btc", "Bitcoin", "50000")
	insertCoin(t, conn, "litecoin", "ltc", "Litecoin", "100")

	var coinList []model.Coin

	if err := query.LoadCoinPage(
		conn,
		&query.CoinFilter{FavoritesOnly: true},
		1,
		&coinList,
	); err != nil {
		t.Fatalf("LoadCoinPage returned error: %v", err)
	}

	if len(coinList) != 0 {
		t.Fatalf("expected empty favorites to match nothing, got %d coins", len(coinList))
	}
}

func TestTextAndFavoritesFiltersCombine(t *testing.T) {
	conn := openTestConn(t)
	insertCoin(t, conn, "bitcoin", "btc", "Bitcoin", "50000")
	insertCoin(t, conn, "bitcoin-cash", "bch", "Bitcoin Cash", "300")
	insertCoin(t, conn, "litecoin", "ltc", "Litecoin", "100")

	filter := query.CoinFilter{
		Text:          "bit",
		FavoritesOnly: true,
		FavoriteIDs:   []string{"bitcoin-cash", "litecoin"},
	}

	var coinList []model.Coin

	if err := query.LoadCoinPage(conn, &filter, 1, &coinList); err != nil {
		t.Fatalf("LoadCoinPage returned error: %v", err)
	}

	if len(coinList) != 1 || coinList[0].ID != "bitcoin-cash" {
		t.Fatalf("expected both filters to apply, got %+v", coinList)
	}
}

func TestCountCoinsRespectsFilter(t *testing.T) {
	conn := openTestConn(t)
	insertCoin(t, conn, "bitcoin", "btc", "Bitcoin", "50000")
	insertCoin(t, conn, "bitcoin-cash", "bch", "Bitcoin Cash", "300")
	insertCoin(t, conn, "litecoin", "ltc", "Litecoin", "100")

	total, err := query.CountCoins(conn, &query.CoinFilter{})

	if err != nil {
		t.Fatalf("CountCoins returned error: %v", err)
	}

	if total != 3 {
		t.Fatalf("expected 3 coins unfiltered, got %d", total)
	}

	total, err = query.CountCoins(conn, &query.CoinFilter{Text: "bit"})

	if err != nil {
		t.Fatalf("CountCoins returned error: %v", err)
	}

	if total != 2 {
		t.Fatalf("expected 2 coins matching %q, got %d", "bit", total)
	}
}

func TestToggleFavoriteIsIdempotentOverTwoCalls(t *testing.T) {
	conn := openTestConn(t)

	if err := query.ToggleFavorite(conn, "alice", "bitcoin"); err != nil {
		t.Fatalf("first toggle returned error: %v", err)
	}

	favoriteIDs, err := query.LoadFavoriteIDs(conn, "alice")

	if err != nil {
		t.Fatalf("LoadFavoriteIDs returned error: %v", err)
	}

	if !favoriteIDs["bitcoin"] {
		t.Fatalf("expected bitcoin to be favorited after one toggle")
	}

	if err := query.ToggleFavorite(conn, "alice", "bitcoin"); err != nil {
		t.Fatalf("second toggle returned error: %v", err)
	}

	favoriteIDs, err = query.LoadFavoriteIDs(conn, "alice")

	if err != nil {
		t.Fatalf("LoadFavoriteIDs returned error: %v", err)
	}

	if len(favoriteIDs) != 0 {
		t.Fatalf("expected no favorites after a double toggle, got %v", favoriteIDs)
	}
}

func TestToggleFavoriteIsScopedPerUser(t *testing.T) {
	conn := openTestConn(t)

	if err := query.ToggleFavorite(conn, "alice", "bitcoin"); err != nil {
		t.Fatalf("toggle returned error: %v", err)
	}

	favoriteIDs, err := query.LoadFavoriteIDs(conn, "bob")

	if err != nil {
		t.Fatalf("LoadFavoriteIDs returned error: %v", err)
	}

	if len(favoriteIDs) != 0 {
		t.Fatalf("expected bob to have no favorites, got %v", favoriteIDs)
	}
}

func TestLoadCoinByIDMissing(t *testing.T) {
	conn := openTestConn(t)

	var coin model.Coin
	err := query.LoadCoinByID(conn, &coin, "dogecoin")

	if err != database.ErrNoRows {
		t.Fatalf("expected ErrNoRows for a missing coin, got %v", err)
	}
}
