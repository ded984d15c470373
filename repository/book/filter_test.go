package bookrepo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestBuild_Empty(t *testing.T) {
	w := Filter{}.build(time.Now())
	require.Equal(t, "", w.sql())
	require.Empty(t, w.args)
}

func TestBuild_NumbersPlaceholdersInOrder(t *testing.T) {
	min := decimal.RequireFromString("5.00")
	max := decimal.RequireFromString("30.00")
	rating := 4.0
	f := Filter{
		Search:    "dune",
		Genres:    []string{"Sci-Fi", " ", "Fantasy"},
		Languages: []string{"English"},
		MinPrice:  &min,
		MaxPrice:  &max,
		MinRating: &rating,
		InStock:   true,
	}
	w := f.build(time.Now())

	require.Equal(t,
		"WHERE (b.title ILIKE $1 OR b.author ILIKE $2 OR b.isbn ILIKE $3 OR b.description ILIKE $4)"+
			" AND lower(b.genre) = ANY($5)"+
			" AND lower(b.language) = ANY($6)"+
			" AND b.price >= $7 AND b.price <= $8"+
			" AND COALESCE(r.avg_rating, 0) >= $9"+
			" AND b.stock_quantity > 0",
		w.sql())
	require.Len(t, w.args, 9)
	require.Equal(t, "%dune%", w.args[0])
	require.Equal(t, []string{"sci-fi", "fantasy"}, w.args[4])
	require.Equal(t, []string{"english"}, w.args[5])
}

func TestBuild_EscapesLikeWildcards(t *testing.T) {
	w := Filter{Search: "100%_off"}.build(time.Now())
	require.Equal(t, `%100\%\_off%`, w.args[0])
}

func TestBuild_Categories(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	w := Filter{Category: CategoryDeals}.build(now)
	require.Contains(t, w.sql(), "b.discount_percent > 0")
	require.Equal(t, []any{now, now}, w.args)

	w = Filter{Category: CategoryNewRelease}.build(now)
	require.Equal(t, []any{now.Add(-NewReleaseWindow), now}, w.args)

	w = Filter{Category: CategoryAward, InLibrary: true}.build(now)
	require.Equal(t, "WHERE b.is_available_in_library AND b.is_award_winner", w.sql())
}

func TestOrderBy(t *testing.T) {
	require.Equal(t, "b.price ASC, b.id ASC", Filter{Sort: SortPriceAsc}.orderBy())
	require.Equal(t, "COALESCE(s.sold, 0) DESC, b.id ASC", Filter{Sort: SortPopularity}.orderBy())
	require.Equal(t, "b.created_at DESC, b.id DESC", Filter{}.orderBy())
}
