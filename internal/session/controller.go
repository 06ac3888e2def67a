// Package session owns the mutable state of a browsing session and the
// transitions the presentation layer triggers on it.
package session

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/aryannaik/sustainify/internal/catalog"
	"github.com/aryannaik/sustainify/internal/query"
	"github.com/aryannaik/sustainify/internal/store"
)

var (
	// ErrNotContribution is returned when deleting an id that is not a local contribution.
	ErrNotContribution = errors.New("not a contribution")
	ErrNotFound        = errors.New("product not found")
)

// Persister is the storage the controller flushes to after every mutation.
type Persister interface {
	LoadBookmarks() store.BookmarkSet
	SaveBookmarks(store.BookmarkSet) error
	LoadContributions() []catalog.Product
	SaveContributions([]catalog.Product) error
}

// Snapshot is the state after a transition together with the page it yields.
type Snapshot struct {
	View       query.ViewState `json:"view"`
	Result     query.Result    `json:"result"`
	TotalPages int             `json:"totalPages"`
}

type Options struct {
	PerPage  int
	Language language.Tag
	Now      func() time.Time
	Logger   *zap.Logger
}

// Controller serializes all transitions, so each one runs to completion
// before the next starts.
type Controller struct {
	mu sync.Mutex

	view          query.ViewState
	items         []catalog.Product
	contributions []catalog.Product
	unified       []catalog.Product
	bookmarks     store.BookmarkSet
	compare       []string

	persist  Persister
	pipeline *query.Pipeline
	now      func() time.Time
	logger   *zap.Logger
}

// New loads bookmarks and contributions and starts with no catalog.
// Call SetCatalog once the catalog is available.
func New(persist Persister, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Language == language.Und {
		opts.Language = language.English
	}

	c := &Controller{
		view:          query.DefaultView(opts.PerPage),
		contributions: persist.LoadContributions(),
		bookmarks:     persist.LoadBookmarks(),
		persist:       persist,
		pipeline:      query.NewPipeline(opts.Language),
		now:           opts.Now,
		logger:        opts.Logger,
	}
	c.remerge()
	return c
}

// SetCatalog installs the static catalog. A nil slice keeps the session on
// contributions only.
func (c *Controller) SetCatalog(items []catalog.Product) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make([]catalog.Product, 0, len(items))
	for _, p := range items {
		p.Kind = catalog.KindCatalog
		c.items = append(c.items, p.Normalize())
	}
	c.remerge()
	c.logger.Info("Catalog installed",
		zap.Int("catalog", len(c.items)),
		zap.Int("contributions", len(c.contributions)),
	)
	return c.snapshot()
}

func (c *Controller) Refresh() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) View() query.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Controller) SetQuery(text string) Snapshot {
	return c.reset(func(v *query.ViewState) { v.Query = text })
}

// SetCategory filters by category; an empty category means all.
func (c *Controller) SetCategory(cat string) Snapshot {
	if cat == "" {
		cat = query.AllCategories
	}
	return c.reset(func(v *query.ViewState) { v.Category = cat })
}

// SetSort changes the order. An unknown order is stored as score-desc, the
// order the pipeline falls back to, so the view always names what it shows.
func (c *Controller) SetSort(order query.SortOrder) Snapshot {
	if !order.Valid() {
		order = query.ScoreDesc
	}
	return c.reset(func(v *query.ViewState) { v.Sort = order })
}

func (c *Controller) ToggleBookmarkOnly() Snapshot {
	return c.reset(func(v *query.ViewState) { v.OnlyBookmarks = !v.OnlyBookmarks })
}

// SetPage moves to page n, kept within the pages the current view has.
func (c *Controller) SetPage(n int) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Page = n
	c.clampPage()
	return c.snapshot()
}

// ToggleBookmark flips the bookmark on id and persists the set. The id does
// not have to exist in the collection.
func (c *Controller) ToggleBookmark(id string) (bool, Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	on := c.bookmarks.Toggle(id)
	if err := c.persist.SaveBookmarks(c.bookmarks); err != nil {
		c.logger.Warn("Failed to save bookmarks", zap.String("id", id), zap.Error(err))
	}
	if c.view.OnlyBookmarks {
		c.clampPage()
	}
	return on, c.snapshot()
}

func (c *Controller) IsBookmarked(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bookmarks.Has(id)
}

func (c *Controller) Bookmarks() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bookmarks.IDs()
}

// AddContribution creates a contribution from f, puts it first and persists
// the list. It always succeeds.
func (c *Controller) AddContribution(f catalog.Fields) (catalog.Product, Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := catalog.NewContribution(c.nextID(), f)

	c.contributions = append([]catalog.Product{p}, c.contributions...)
	c.remerge()
	if err := c.persist.SaveContributions(c.contributions); err != nil {
		c.logger.Warn("Failed to save contributions", zap.String("id", p.ID), zap.Error(err))
	}
	c.view.Page = 1

	c.logger.Info("Contribution added", zap.String("id", p.ID), zap.Int("score", p.Score))
	return p, c.snapshot()
}

// DeleteContribution removes a contribution. Catalog ids and unknown ids are
// rejected with ErrNotContribution and leave everything untouched.
func (c *Controller) DeleteContribution(id string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, p := range c.contributions {
		if p.ID == id && p.IsContribution() {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.logger.Debug("Rejected delete", zap.String("id", id))
		return c.snapshot(), ErrNotContribution
	}

	next := make([]catalog.Product, 0, len(c.contributions)-1)
	next = append(next, c.contributions[:idx]...)
	next = append(next, c.contributions[idx+1:]...)
	c.contributions = next
	c.remerge()
	if err := c.persist.SaveContributions(c.contributions); err != nil {
		c.logger.Warn("Failed to save contributions", zap.String("id", id), zap.Error(err))
	}
	c.removeCompare(id)
	c.clampPage()

	c.logger.Info("Contribution deleted", zap.String("id", id))
	return c.snapshot(), nil
}

// Contributions returns the contribution list, newest first.
func (c *Controller) Contributions() []catalog.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]catalog.Product(nil), c.contributions...)
}

// Get returns the product behind a details view.
func (c *Controller) Get(id string) (catalog.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := catalog.Find(c.unified, id)
	if !ok {
		return catalog.Product{}, ErrNotFound
	}
	return p, nil
}

// Categories lists the categories present in the unified collection.
func (c *Controller) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return catalog.Categories(c.unified)
}

// Matches returns every item matching the current view, across all pages.
func (c *Controller) Matches() []catalog.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pipeline.Matches(c.unified, c.view, c.bookmarks)
}

func (c *Controller) reset(apply func(*query.ViewState)) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	apply(&c.view)
	c.view.Page = 1
	return c.snapshot()
}

func (c *Controller) remerge() {
	c.unified = catalog.Merge(c.items, c.contributions)
}

func (c *Controller) snapshot() Snapshot {
	res := c.pipeline.Evaluate(c.unified, c.view, c.bookmarks)
	return Snapshot{
		View:       c.view,
		Result:     res,
		TotalPages: query.TotalPages(res.Total, c.view.PerPage),
	}
}

func (c *Controller) clampPage() {
	total := c.pipeline.Evaluate(c.unified, c.view, c.bookmarks).Total
	last := query.TotalPages(total, c.view.PerPage)
	if c.view.Page > last {
		c.view.Page = last
	}
	if c.view.Page < 1 {
		c.view.Page = 1
	}
}

// nextID returns "p" followed by the current unix millis, advanced until it
// collides with nothing in the unified collection.
func (c *Controller) nextID() string {
	ms := c.now().UnixMilli()
	for {
		id := catalog.ContributionPrefix + strconv.FormatInt(ms, 10)
		if _, taken := catalog.Find(c.unified, id); !taken {
			return id
		}
		ms++
	}
}
