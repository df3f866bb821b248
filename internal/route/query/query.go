// Package query builds the SQL used for the coin listing pages.
package query

import (
	"strings"

	"github.com/dense-analysis/cryptodash/internal/database"
	"github.com/dense-analysis/cryptodash/internal/fetch"
	"github.com/dense-analysis/cryptodash/internal/model"
)

// PerPage is the fixed number of coins on one listing page.
const PerPage = 10

var coinQuery = `
select
	id,
	symbol,
	name,
	price,
	last_updated,
	price_change_24h,
	price_change_percentage_24h,
	price_change_percentage_7d,
	description,
	homepage
from coins
`

func ScanCoin(row database.Row, coin *model.Coin) error {
	return row.Scan(
		&coin.ID,
		&coin.Symbol,
		&coin.Name,
		&coin.Price,
		&coin.LastUpdated,
		&coin.PriceChange24h,
		&coin.PriceChangePercentage24h,
		&coin.PriceChangePercentage7d,
		&coin.Description,
		&coin.Homepage,
	)
}

// CoinFilter enumerates the optional restrictions for a listing page.
//
// Filters are always applied through parameterized clauses. User input is
// never spliced into the SQL text.
type CoinFilter struct {
	Text          string
	FavoritesOnly bool
	FavoriteIDs   []string
}

func (filter *CoinFilter) whereClause() (string, []any) {
	var clauseList []string
	var arguments []any

	if len(filter.Text) > 0 {
		pattern := "%" + strings.ToLower(filter.Text) + "%"
		clauseList = append(
			clauseList,
			"(lower(name) like ? or lower(symbol) like ?)",
		)
		arguments = append(arguments, pattern, pattern)
	}

	if filter.FavoritesOnly {
		if len(filter.FavoriteIDs) == 0 {
			// An empty favorite set must match nothing, not fall
			// through to an unfiltered listing.
			clauseList = append(clauseList, "1 = 0")
		} else {
			placeholders := make([]string, len(filter.FavoriteIDs))

			for i := range placeholders {
				placeholders[i] = "?"
			}

			clauseList = append(
				clauseList,
				"id in ("+strings.Join(placeholders, ", ")+")",
			)

			for _, id := range filter.FavoriteIDs {
				arguments = append(arguments, id)
			}
		}
	}

	if len(clauseList) == 0 {
		return "", nil
	}

	return "where " + strings.Join(clauseList, " and "), arguments
}

// LoadCoinPage loads one page of the filtered listing.
//
// Pages are 1-based. Results are ordered by price, highest first, with the
// coin ID as a deterministic tiebreak. Pages past the end of the results
// come back empty.
func LoadCoinPage(
	conn database.Queryable,
	filter *CoinFilter,
	page int,
	coinList *[]model.Coin,
) error {
	where, arguments := filter.whereClause()
	arguments = append(arguments, PerPage, PerPage*(page-1))

	return model.LoadList(
		conn,
		coinList,
		PerPage,
		ScanCoin,
		coinQuery+where+" order by price desc, id asc limit ? offset ?",
		arguments...,
	)
}

// CountCoins counts the rows matching the filter.
//
// The count respects the filter, so pagination controls stay correct when a
// search or the favorites toggle is active.
func CountCoins(conn database.Queryable, filter *CoinFilter) (int, error) {
	where, arguments := filter.whereClause()
	row := conn.QueryRow("select count(*) from coins "+where, arguments...)

	var total int
	err := row.Scan(&total)

	return total, err
}

// LoadCoinByID loads a single coin by its ID.
func LoadCoinByID(conn database.Queryable, coin *model.Coin, coinID string) error {
	row := conn.QueryRow(coinQuery+"where id = ?", coinID)

	return ScanCoin(row, coin)
}

// LoadAllCoins loads every cached coin, ordered by price.
func LoadAllCoins(conn database.Queryable, coinList *[]model.Coin) error {
	return model.LoadList(
		conn,
		coinList,
		fetch.CoinCount,
		ScanCoin,
		coinQuery+"order by price desc, id asc",
	)
}

// LoadFavoriteIDs loads the set of coin IDs a user has marked as favorites.
func LoadFavoriteIDs(conn database.Queryable, username string) (map[string]bool, error) {
	rows, err := conn.Query(
		"select coin_id from favorites where user = ?",
		username,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	favoriteIDs := map[string]bool{}

	for rows.Next() {
		var coinID string

		if err := rows.Scan(&coinID); err != nil {
			return nil, err
		}

		favoriteIDs[coinID] = true
	}

	return favoriteIDs, rows.Err()
}

// ToggleFavorite flips favorite membership for one user and coin.
//
// Toggling twice returns the favorite set to its original state.
func ToggleFavorite(conn database.Queryable, username string, coinID string) error {
	favoriteIDs, err := LoadFavoriteIDs(conn, username)

	if err != nil {
		return err
	}

	if favoriteIDs[coinID] {
		return conn.Exec(
			"delete from favorites where user = ? and coin_id = ?",
			username,
			coinID,
		)
	}

	return conn.Exec(
		"insert or ignore into favorites (user, coin_id) values (?, ?)",
		username,
		coinID,
	)
}
