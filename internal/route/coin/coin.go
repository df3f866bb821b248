// Package coin defines routes for the coin listing, details, and export
package coin

import (
	"encoding/csv"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dense-analysis/cryptodash/internal/database"
	"github.com/dense-analysis/cryptodash/internal/model"
	"github.com/dense-analysis/cryptodash/internal/route/query"
	"github.com/dense-analysis/cryptodash/internal/route/util"
	"github.com/dense-analysis/cryptodash/internal/session"
	"github.com/dense-analysis/cryptodash/internal/template"
)

// ListPageData is the template data for the listing page.
type ListPageData struct {
	LoggedIn      bool
	User          model.User
	Messages      []string
	CoinList      []model.Coin
	FavoriteIDs   map[string]bool
	Query         string
	ShowFavorites bool
	Page          int
	TotalPages    int
	PrevPage      int
	NextPage      int
}

// DetailPageData is the template data for one coin's detail page.
type DetailPageData struct {
	LoggedIn  bool
	User      model.User
	Messages  []string
	Coin      model.Coin
	Favorited bool
}

func HandleCoinList(conn *database.Conn, writer http.ResponseWriter, request *http.Request) {
	data := ListPageData{Page: 1}

	loggedIn, err := session.LoadUserFromSession(conn, request, &data.User)

	if err != nil {
		util.RespondInternalServerError(writer, err)

		return
	}

	data.LoggedIn = loggedIn

	values := request.URL.Query()
	data.Query = values.Get("q")

	// A malformed page number falls back to the first page instead of
	// failing the request.
	if page, pageErr := strconv.Atoi(values.Get("page")); pageErr == nil && page >= 1 {
		data.Page = page
	}

	// The favorites filter only applies for logged-in users.
	data.ShowFavorites = values.Get("favorites") == "1" && loggedIn

	if loggedIn {
		favoriteIDs, favErr := query.LoadFavoriteIDs(conn, data.User.Username)

		if favErr != nil {
			util.RespondInternalServerError(writer, favErr)

			return
		}

		data.FavoriteIDs = favoriteIDs
	}

	filter := query.CoinFilter{
		Text:          data.Query,
		FavoritesOnly: data.ShowFavorites,
	}

	if data.ShowFavorites {
		filter.FavoriteIDs = make([]string, 0, len(data.FavoriteIDs))

		for id := range data.FavoriteIDs {
			filter.FavoriteIDs = append(filter.FavoriteIDs, id)
		}
	}

	if err := query.LoadCoinPage(conn, &filter, data.Page, &data.CoinList); err != nil {
		util.RespondInternalServerError(writer, err)

		return
	}

	total, err := query.CountCoins(conn, &filter)

	if err != nil {
		util.RespondInternalServerError(writer, err)

		return
	}

	data.TotalPages = (total + query.PerPage - 1) / query.PerPage
	data.PrevPage = data.Page - 1

	if data.Page < data.TotalPages {
		data.NextPage = data.Page + 1
	}

	data.Messages = session.Flashes(writer, request)
	template.Render(template.Index, writer, data)
}

func HandleCoinDetail(conn *database.Conn, writer http.ResponseWriter, request *http.Request) {
	data := DetailPageData{}

	loggedIn, err := session.LoadUserFromSession(conn, request, &data.User)

	if err != nil {
		util.RespondInternalServerError(writer, err)

		return
	}

	data.LoggedIn = loggedIn
	coinID := mux.Vars(request)["id"]

	if err := query.LoadCoinByID(conn, &data.Coin, coinID); err != nil {
		if err == database.ErrNoRows {
			util.RespondNotFound(writer)
		} else {
			util.RespondInternalServerError(writer, err)
		}

		return
	}

	if loggedIn {
		favoriteIDs, favErr := query.LoadFavoriteIDs(conn, data.User.Username)

		if favErr != nil {
			util.RespondInternalServerError(writer, favErr)

			return
		}

		data.Favorited = favoriteIDs[coinID]
	}

	data.Messages = session.Flashes(writer, request)
	template.Render(template.Coin, writer, data)
}

func HandleToggleFavorite(conn *database.Conn, writer http.ResponseWriter, request *http.Request) {
	var user model.User

	loggedIn, err := session.LoadUserFromSession(conn, request, &user)

	if err != nil {
		util.RespondInternalServerError(writer, err)

		return
	}

	if !loggedIn {
		// Nothing is toggled for anonymous visitors.
		session.Flash(writer, request, "Log in to favorite coins.")
		http.Redirect(writer, request, "/login", http.StatusFound)

		return
	}

	coinID := mux.Vars(request)["id"]

	if err := query.ToggleFavorite(conn, user.Username, coinID); err != nil {
		util.RespondInternalServerError(writer, err)

		return
	}

	util.RedirectBack(writer, request, "/")
}

var exportHeader = []string{
	"ID",
	"Symbol",
	"Name",
	"Price",
	"Last Updated",
	"24h Change",
	"24h %",
	"7d %",
	"Description",
	"Homepage",
}

// HandleExport downloads the full coin cache as a CSV snapshot.
func HandleExport(conn *database.Conn, writer http.ResponseWriter, request *http.Request) {
	var coinList []model.Coin

	if err := query.LoadAllCoins(conn, &coinList); err != nil {
		util.RespondInternalServerError(writer, err)

		return
	}

	writer.Header().Set("Content-Type", "text/csv")
	writer.Header().Set(
		"Content-Disposition",
		`attachment; filename="crypto_prices.csv"`,
	)

	csvWriter := csv.NewWriter(writer)
	csvWriter.Write(exportHeader)

	for i := range coinList {
		coin := &coinList[i]
		csvWriter.Write([]string{
			coin.ID,
			coin.Symbol,
			coin.Name,
			coin.Price.String(),
			coin.LastUpdated,
			coin.PriceChange24h.String(),
			coin.PriceChangePercentage24h.String(),
			coin.PriceChangePercentage7d.String(),
			coin.Description,
			coin.Homepage,
		})
	}

	csvWriter.Flush()

	if err := csvWriter.Error(); err != nil {
		log.Printf("export error: %+v\n", err)
	}
}
