// Package query turns the unified collection and a view state into the page
// of products to display.
package query

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/aryannaik/sustainify/internal/catalog"
)

// AllCategories is the category filter that matches every item.
const AllCategories = "All"

// DefaultPerPage is the page size used when a view does not set one.
const DefaultPerPage = 6

type SortOrder string

const (
	ScoreDesc SortOrder = "score-desc"
	ScoreAsc  SortOrder = "score-asc"
	NameAsc   SortOrder = "name-asc"
	NameDesc  SortOrder = "name-desc"
)

// Valid reports whether o is one of the four sort keys.
func (o SortOrder) Valid() bool {
	switch o {
	case ScoreDesc, ScoreAsc, NameAsc, NameDesc:
		return true
	}
	return false
}

// ParseSortOrder accepts the four sort keys used by the UI.
func ParseSortOrder(s string) (SortOrder, error) {
	if o := SortOrder(s); o.Valid() {
		return o, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// ViewState is the search, filter, sort and page configuration of a session.
type ViewState struct {
	Query         string    `json:"query"`
	Category      string    `json:"category"`
	Sort          SortOrder `json:"sort"`
	OnlyBookmarks bool      `json:"onlyBookmarks"`
	Page          int       `json:"page"`
	PerPage       int       `json:"perPage"`
}

// DefaultView is the state a new session starts in.
func DefaultView(perPage int) ViewState {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return ViewState{
		Category: AllCategories,
		Sort:     ScoreDesc,
		Page:     1,
		PerPage:  perPage,
	}
}

// Membership answers whether an id is bookmarked.
type Membership interface {
	Has(id string) bool
}

// Result is one page of matches plus the number of items that matched.
type Result struct {
	Items []catalog.Product `json:"items"`
	Total int               `json:"total"`
}

// Pipeline evaluates views. It holds the collation language for name sorts.
type Pipeline struct {
	lang language.Tag
}

func NewPipeline(lang language.Tag) *Pipeline {
	return &Pipeline{lang: lang}
}

// Evaluate filters, sorts and paginates items. It does not modify items and
// does not clamp the page: a page past the end is simply empty.
func (p *Pipeline) Evaluate(items []catalog.Product, view ViewState, bookmarks Membership) Result {
	matched := p.Matches(items, view, bookmarks)
	return Result{
		Items: paginate(matched, view.Page, perPage(view)),
		Total: len(matched),
	}
}

// Matches returns every filtered item in sorted order, without pagination.
func (p *Pipeline) Matches(items []catalog.Product, view ViewState, bookmarks Membership) []catalog.Product {
	matched := filter(items, view, bookmarks)
	p.sort(matched, view.Sort)
	return matched
}

// Evaluate runs the pipeline with English collation.
func Evaluate(items []catalog.Product, view ViewState, bookmarks Membership) Result {
	return NewPipeline(language.English).Evaluate(items, view, bookmarks)
}

// TotalPages is ceil(total/perPage).
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

func filter(items []catalog.Product, view ViewState, bookmarks Membership) []catalog.Product {
	q := strings.ToLower(strings.TrimSpace(view.Query))
	out := make([]catalog.Product, 0, len(items))
	for _, it := range items {
		if q != "" && !strings.Contains(searchText(it), q) {
			continue
		}
		if view.Category != "" && view.Category != AllCategories && it.Category != view.Category {
			continue
		}
		if view.OnlyBookmarks && (bookmarks == nil || !bookmarks.Has(it.ID)) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func searchText(p catalog.Product) string {
	fields := make([]string, 0, 3+len(p.Tags))
	fields = append(fields, p.Name, p.Category, p.Replaces)
	fields = append(fields, p.Tags...)
	return strings.ToLower(strings.Join(fields, " "))
}

func (p *Pipeline) sort(items []catalog.Product, order SortOrder) {
	switch order {
	case ScoreAsc:
		slices.SortStableFunc(items, func(a, b catalog.Product) int { return a.Score - b.Score })
	case NameAsc, NameDesc:
		// Collators are not safe for concurrent use.
		c := collate.New(p.lang)
		sign := 1
		if order == NameDesc {
			sign = -1
		}
		slices.SortStableFunc(items, func(a, b catalog.Product) int {
			return sign * c.CompareString(a.Name, b.Name)
		})
	default:
		slices.SortStableFunc(items, func(a, b catalog.Product) int { return b.Score - a.Score })
	}
}

func perPage(view ViewState) int {
	if view.PerPage <= 0 {
		return DefaultPerPage
	}
	return view.PerPage
}

func paginate(items []catalog.Product, page, size int) []catalog.Product {
	start := (page - 1) * size
	if page < 1 || start >= len(items) {
		return []catalog.Product{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
