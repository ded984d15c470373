package bookrepo

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryAward      Category = "award"
	CategoryBestseller Category = "bestseller"
	CategoryNewRelease Category = "new_release"
	CategoryDeals      Category = "deals"
)

type Sort string

const (
	SortNewest     Sort = ""
	SortTitle      Sort = "title"
	SortDate       Sort = "date"
	SortPriceAsc   Sort = "price_asc"
	SortPriceDesc  Sort = "price_desc"
	SortPopularity Sort = "popularity"
)

// NewReleaseWindow is how far back a publication date still counts as new.
const NewReleaseWindow = 90 * 24 * time.Hour

// Filter is the catalog query. Empty fields do not constrain the result.
type Filter struct {
	Search     string
	Genres     []string
	Authors    []string
	Languages  []string
	Formats    []string
	Publishers []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	MinRating  *float64
	MaxRating  *float64
	InStock    bool
	InLibrary  bool
	Category   Category
	Sort       Sort
	Page       int
	PageSize   int
}

// where accumulates AND-ed conditions written with '?' placeholders and
// renumbers them to $n.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, vals ...any) {
	var b strings.Builder
	vi := 0
	for _, r := range cond {
		if r == '?' && vi < len(vals) {
			w.args = append(w.args, vals[vi])
			vi++
			fmt.Fprintf(&b, "$%d", len(w.args))
			continue
		}
		b.WriteRune(r)
	}
	w.conds = append(w.conds, b.String())
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func lowered(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}

// build turns f into a WHERE clause and its arguments. now pins the
// time-dependent categories so a page and its count agree.
func (f Filter) build(now time.Time) *where {
	w := &where{}
	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + escapeLike(q) + "%"
		w.add(`(b.title ILIKE ? OR b.author ILIKE ? OR b.isbn ILIKE ? OR b.description ILIKE ?)`, like, like, like, like)
	}
	sets := []struct {
		col  string
		vals []string
	}{
		{"b.genre", f.Genres},
		{"b.author", f.Authors},
		{"b.language", f.Languages},
		{"b.format", f.Formats},
		{"b.publisher", f.Publishers},
	}
	for _, s := range sets {
		if l := lowered(s.vals); len(l) > 0 {
			w.add("lower("+s.col+") = ANY(?)", l)
		}
	}
	if f.MinPrice != nil {
		w.add(`b.price >= ?`, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		w.add(`b.price <= ?`, *f.MaxPrice)
	}
	if f.MinRating != nil {
		w.add(`COALESCE(r.avg_rating, 0) >= ?`, *f.MinRating)
	}
	if f.MaxRating != nil {
		w.add(`COALESCE(r.avg_rating, 0) <= ?`, *f.MaxRating)
	}
	if f.InStock {
		w.add(`b.stock_quantity > 0`)
	}
	if f.InLibrary {
		w.add(`b.is_available_in_library`)
	}
	switch f.Category {
	case CategoryAward:
		w.add(`b.is_award_winner`)
	case CategoryBestseller:
		w.add(`b.is_bestseller`)
	case CategoryNewRelease:
		w.add(`b.publication_date >= ? AND b.publication_date <= ?`, now.Add(-NewReleaseWindow), now)
	case CategoryDeals:
		w.add(`b.discount_percent > 0 AND (b.discount_start IS NULL OR b.discount_start <= ?) AND (b.discount_end IS NULL OR b.discount_end >= ?)`, now, now)
	}
	return w
}

func (f Filter) orderBy() string {
	switch f.Sort {
	case SortTitle:
		return `b.title ASC, b.id ASC`
	case SortDate:
		return `b.publication_date DESC NULLS LAST, b.id DESC`
	case SortPriceAsc:
		return `b.price ASC, b.id ASC`
	case SortPriceDesc:
		return `b.price DESC, b.id ASC`
	case SortPopularity:
		return `COALESCE(s.sold, 0) DESC, b.id ASC`
	}
	return `b.created_at DESC, b.id DESC`
}
