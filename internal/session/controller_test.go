package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryannaik/sustainify/internal/catalog"
	"github.com/aryannaik/sustainify/internal/query"
	"github.com/aryannaik/sustainify/internal/store"
)

func sevenItems() []catalog.Product {
	names := []string{"Bamboo Toothbrush", "Beeswax Wraps", "Steel Bottle", "Shampoo Bar", "Compost Bin", "Cotton Tote", "Loofah Sponge"}
	cats := []string{"Bathroom", "Kitchen", "On the go", "Bathroom", "Kitchen", "On the go", "Kitchen"}
	scores := []int{88, 91, 85, 87, 79, 72, 66}
	items := make([]catalog.Product, len(names))
	for i := range names {
		items[i] = catalog.Product{ID: fmt.Sprintf("c%d", i+1), Name: names[i], Category: cats[i], Score: scores[i]}
	}
	return items
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func newController(t *testing.T) (*Controller, *store.Store) {
	t.Helper()
	st := store.New(store.NewMemorySlots(), nil)
	c := New(st, Options{PerPage: 6, Now: fixedClock(1700000000000)})
	c.SetCatalog(sevenItems())
	return c, st
}

func resultIDs(s Snapshot) []string {
	out := make([]string, len(s.Result.Items))
	for i, p := range s.Result.Items {
		out[i] = p.ID
	}
	return out
}

func TestDefaultSnapshot(t *testing.T) {
	c, _ := newController(t)
	s := c.Refresh()

	assert.Equal(t, 7, s.Result.Total)
	assert.Len(t, s.Result.Items, 6)
	assert.Equal(t, 2, s.TotalPages)
	assert.Equal(t, "c2", s.Result.Items[0].ID)

	s = c.SetPage(2)
	assert.Equal(t, []string{"c7"}, resultIDs(s))
}

func TestEmptyBeforeCatalog(t *testing.T) {
	c := New(store.New(store.NewMemorySlots(), nil), Options{})
	s := c.Refresh()
	assert.Equal(t, 0, s.Result.Total)
	assert.Empty(t, s.Result.Items)
	assert.Equal(t, 1, s.View.Page)
	assert.Equal(t, query.DefaultPerPage, s.View.PerPage)
}

func TestFilterTransitionsResetPage(t *testing.T) {
	transitions := map[string]func(*Controller) Snapshot{
		"query":     func(c *Controller) Snapshot { return c.SetQuery("o") },
		"category":  func(c *Controller) Snapshot { return c.SetCategory("Kitchen") },
		"sort":      func(c *Controller) Snapshot { return c.SetSort(query.NameAsc) },
		"bookmarks": func(c *Controller) Snapshot { return c.ToggleBookmarkOnly() },
	}
	for name, apply := range transitions {
		t.Run(name, func(t *testing.T) {
			c, _ := newController(t)
			require.Equal(t, 2, c.SetPage(2).View.Page)
			assert.Equal(t, 1, apply(c).View.Page)
		})
	}
}

func TestSetPageClamps(t *testing.T) {
	c, _ := newController(t)
	assert.Equal(t, 2, c.SetPage(9).View.Page)
	assert.Equal(t, 1, c.SetPage(-3).View.Page)
}

func TestSetCategoryEmptyMeansAll(t *testing.T) {
	c, _ := newController(t)
	c.SetCategory("Kitchen")
	s := c.SetCategory("")
	assert.Equal(t, query.AllCategories, s.View.Category)
	assert.Equal(t, 7, s.Result.Total)
}

func TestAddContributionScenario(t *testing.T) {
	c, st := newController(t)
	c.SetPage(2)

	p, s := c.AddContribution(catalog.Fields{
		Name:           "Bar",
		Materials:      []string{"bamboo"},
		Certifications: []string{},
		Tags:           []string{"reuse", "bamboo"},
	})

	assert.Equal(t, 59, p.Score)
	assert.Equal(t, "p1700000000000", p.ID)
	assert.True(t, p.IsContribution())
	assert.Equal(t, 1, s.View.Page)
	assert.Equal(t, 8, s.Result.Total)

	// 59 is below every catalog score, so it sorts last under score-desc.
	s = c.SetPage(2)
	assert.Equal(t, []string{"c7", p.ID}, resultIDs(s))

	// ...and first when scores are ascending.
	s = c.SetSort(query.ScoreAsc)
	assert.Equal(t, p.ID, s.Result.Items[0].ID)

	stored := st.LoadContributions()
	require.Len(t, stored, 1)
	assert.Equal(t, p, stored[0])
}

func TestSetSortUnknownFallsBackToScoreDesc(t *testing.T) {
	c, _ := newController(t)
	c.SetSort(query.NameAsc)

	s := c.SetSort(query.SortOrder("price"))
	assert.Equal(t, query.ScoreDesc, s.View.Sort)
	assert.Equal(t, query.ScoreDesc, c.View().Sort)
	assert.Equal(t, "c2", s.Result.Items[0].ID)
}

func TestAddContributionPrependsAndSurfacesFirst(t *testing.T) {
	c, _ := newController(t)
	rich := catalog.Fields{Name: "Rich", Materials: make([]string, 5), Certifications: []string{"a", "b"}}
	for i := range rich.Materials {
		rich.Materials[i] = fmt.Sprintf("m%d", i)
	}

	p, s := c.AddContribution(rich)
	assert.Equal(t, 95, p.Score)
	assert.Equal(t, p.ID, s.Result.Items[0].ID)
}

func TestAddContributionIDsAreUnique(t *testing.T) {
	c, _ := newController(t)
	a, _ := c.AddContribution(catalog.Fields{Name: "A"})
	b, _ := c.AddContribution(catalog.Fields{Name: "B"})

	assert.Equal(t, "p1700000000000", a.ID)
	assert.Equal(t, "p1700000000001", b.ID)

	contribs := c.Contributions()
	require.Len(t, contribs, 2)
	assert.Equal(t, b.ID, contribs[0].ID, "newest first")
}

func TestAddContributionAvoidsCatalogCollision(t *testing.T) {
	st := store.New(store.NewMemorySlots(), nil)
	c := New(st, Options{Now: fixedClock(5)})
	c.SetCatalog([]catalog.Product{{ID: "p5", Name: "Catalog p5", Score: 80}})

	p, _ := c.AddContribution(catalog.Fields{Name: "Mine"})
	assert.Equal(t, "p6", p.ID)
}

func TestDeleteCatalogItemIsRejected(t *testing.T) {
	c, st := newController(t)
	c.AddContribution(catalog.Fields{Name: "Bar"})
	before := c.Refresh()
	contribsBefore := c.Contributions()

	_, err := c.DeleteContribution("c1")
	assert.True(t, errors.Is(err, ErrNotContribution))
	assert.Equal(t, before, c.Refresh())
	assert.Equal(t, contribsBefore, c.Contributions())
	assert.Len(t, st.LoadContributions(), 1)

	_, err = c.DeleteContribution("p-unknown")
	assert.ErrorIs(t, err, ErrNotContribution)
}

func TestDeleteCatalogItemWithContributionLikeID(t *testing.T) {
	st := store.New(store.NewMemorySlots(), nil)
	c := New(st, Options{})
	c.SetCatalog([]catalog.Product{{ID: "p1", Name: "Catalog", Score: 80}})

	_, err := c.DeleteContribution("p1")
	assert.ErrorIs(t, err, ErrNotContribution)
	assert.Equal(t, 1, c.Refresh().Result.Total)
}

func TestDeleteContribution(t *testing.T) {
	c, st := newController(t)
	p, _ := c.AddContribution(catalog.Fields{Name: "Bar"})
	c.ToggleBookmark(p.ID)

	s, err := c.DeleteContribution(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, s.Result.Total)
	assert.Empty(t, st.LoadContributions())
	assert.Empty(t, c.Contributions())

	// Bookmarks on deleted items are kept.
	assert.True(t, c.IsBookmarked(p.ID))
	assert.True(t, st.LoadBookmarks().Has(p.ID))

	_, err = c.Get(p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteReclampsPage(t *testing.T) {
	st := store.New(store.NewMemorySlots(), nil)
	c := New(st, Options{PerPage: 7})
	c.SetCatalog(sevenItems())
	p, _ := c.AddContribution(catalog.Fields{Name: "Bar"})
	require.Equal(t, 2, c.SetPage(2).View.Page)

	s, err := c.DeleteContribution(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, s.View.Page)
	assert.Len(t, s.Result.Items, 7)
}

func TestToggleBookmarkPersists(t *testing.T) {
	c, st := newController(t)

	on, s := c.ToggleBookmark("c3")
	assert.True(t, on)
	assert.Equal(t, 1, s.View.Page)
	assert.True(t, st.LoadBookmarks().Has("c3"))
	assert.Equal(t, []string{"c3"}, c.Bookmarks())

	on, _ = c.ToggleBookmark("c3")
	assert.False(t, on)
	assert.False(t, st.LoadBookmarks().Has("c3"))
}

func TestToggleBookmarkDoesNotResetPage(t *testing.T) {
	c, _ := newController(t)
	c.SetPage(2)
	_, s := c.ToggleBookmark("c1")
	assert.Equal(t, 2, s.View.Page)
}

func TestBookmarkOnlyScope(t *testing.T) {
	c, _ := newController(t)
	s := c.ToggleBookmarkOnly()
	assert.True(t, s.View.OnlyBookmarks)
	assert.Equal(t, 0, s.Result.Total)

	_, s = c.ToggleBookmark("c5")
	assert.Equal(t, []string{"c5"}, resultIDs(s))

	_, s = c.ToggleBookmark("c5")
	assert.Equal(t, 0, s.Result.Total)
	assert.Equal(t, 1, s.View.Page)
}

func TestStateSurvivesRestart(t *testing.T) {
	slots := store.NewMemorySlots()
	c := New(store.New(slots, nil), Options{Now: fixedClock(42)})
	c.SetCatalog(sevenItems())
	p, _ := c.AddContribution(catalog.Fields{Name: "Bar", Tags: []string{"x"}})
	c.ToggleBookmark("c1")

	again := New(store.New(slots, nil), Options{})
	s := again.Refresh()
	assert.Equal(t, 1, s.Result.Total, "only contributions before the catalog arrives")
	assert.Equal(t, p.ID, s.Result.Items[0].ID)
	assert.True(t, again.IsBookmarked("c1"))

	s = again.SetCatalog(sevenItems())
	assert.Equal(t, 8, s.Result.Total)
}

func TestSetCatalogMarksKind(t *testing.T) {
	c := New(store.New(store.NewMemorySlots(), nil), Options{})
	c.SetCatalog([]catalog.Product{{ID: "x", Name: "X", Kind: catalog.KindContribution}})
	p, err := c.Get("x")
	require.NoError(t, err)
	assert.False(t, p.IsContribution())
	assert.NotNil(t, p.Tags)
}

func TestCategories(t *testing.T) {
	c, _ := newController(t)
	c.AddContribution(catalog.Fields{Name: "Bar", Category: "Garden"})
	assert.Equal(t, []string{"Bathroom", "Garden", "Kitchen", "On the go"}, c.Categories())
}

func TestCompare(t *testing.T) {
	c, _ := newController(t)
	assert.True(t, c.ToggleCompare("c2"))
	assert.True(t, c.ToggleCompare("c1"))
	assert.True(t, c.ToggleCompare("missing"))

	got := c.Compared()
	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].ID)
	assert.Equal(t, "c1", got[1].ID)

	assert.False(t, c.ToggleCompare("c2"))
	assert.Len(t, c.Compared(), 1)
}

func TestMatchesSpansPages(t *testing.T) {
	c, _ := newController(t)
	assert.Len(t, c.Matches(), 7)
}

type brokenPersister struct{}

func (brokenPersister) LoadBookmarks() store.BookmarkSet          { return store.NewBookmarkSet() }
func (brokenPersister) SaveBookmarks(store.BookmarkSet) error     { return errors.New("quota exceeded") }
func (brokenPersister) LoadContributions() []catalog.Product      { return nil }
func (brokenPersister) SaveContributions([]catalog.Product) error { return errors.New("quota exceeded") }

func TestWriteFailuresDoNotBreakSession(t *testing.T) {
	c := New(brokenPersister{}, Options{})
	c.SetCatalog(sevenItems())

	p, s := c.AddContribution(catalog.Fields{Name: "Bar"})
	assert.Equal(t, 8, s.Result.Total)

	on, _ := c.ToggleBookmark(p.ID)
	assert.True(t, on)

	_, err := c.DeleteContribution(p.ID)
	assert.NoError(t, err)
}
