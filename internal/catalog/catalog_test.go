package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		p    Product
		want int
	}{
		{"empty", Product{}, 50},
		{"bar", Product{Materials: []string{"bamboo"}, Tags: []string{"reuse", "bamboo"}}, 59},
		{"certified", Product{Certifications: []string{"FSC", "B Corp"}}, 70},
		{"clamped", Product{Materials: make([]string, 20)}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.p))
		})
	}
}

func TestScoreMonotone(t *testing.T) {
	p := Product{}
	prev := Score(p)
	for i := 0; i < 30; i++ {
		switch i % 3 {
		case 0:
			p.Materials = append(p.Materials, "m")
		case 1:
			p.Certifications = append(p.Certifications, "c")
		default:
			p.Tags = append(p.Tags, "t")
		}
		s := Score(p)
		assert.GreaterOrEqual(t, s, prev)
		assert.LessOrEqual(t, s, 100)
		assert.GreaterOrEqual(t, s, 0)
		prev = s
	}
}

func TestMergeOrder(t *testing.T) {
	items := []Product{{ID: "c1"}, {ID: "c2"}}
	contribs := []Product{{ID: "p2", Kind: KindContribution}, {ID: "p1", Kind: KindContribution}}

	got := Merge(items, contribs)

	ids := make([]string, len(got))
	for i, p := range got {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"p2", "p1", "c1", "c2"}, ids)
}

func TestMergeWithoutCatalog(t *testing.T) {
	contribs := []Product{{ID: "p1", Kind: KindContribution}}
	assert.Len(t, Merge(nil, contribs), 1)
	assert.Empty(t, Merge(nil, nil))
}

func TestMergeKeepsDuplicates(t *testing.T) {
	got := Merge([]Product{{ID: "p1"}}, []Product{{ID: "p1", Kind: KindContribution}})
	require.Len(t, got, 2)
	assert.True(t, got[0].IsContribution())
	assert.False(t, got[1].IsContribution())
}

func TestCategories(t *testing.T) {
	items := []Product{{Category: "Kitchen"}, {Category: "Bath"}, {Category: ""}, {Category: "Kitchen"}}
	assert.Equal(t, []string{"Bath", "Kitchen"}, Categories(items))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitList(" a, b ,,c,"))
	assert.Empty(t, SplitList("   "))
}

func TestNewContribution(t *testing.T) {
	p := NewContribution("p1700000000000", Fields{
		Name:      " Bar ",
		Materials: []string{"bamboo"},
		Tags:      []string{"reuse", "bamboo", " "},
		Image:     "not a url",
	})

	assert.Equal(t, "Bar", p.Name)
	assert.Equal(t, KindContribution, p.Kind)
	assert.Equal(t, 59, p.Score)
	assert.Empty(t, p.Image)
	assert.Equal(t, Impact{}, p.Impact)
	assert.NotNil(t, p.Links)
	assert.Empty(t, p.Certifications)
}

func TestNewContributionKeepsValidImage(t *testing.T) {
	p := NewContribution("p1", Fields{Name: "Cup", Image: "https://example.com/cup.png"})
	assert.Equal(t, "https://example.com/cup.png", p.Image)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(Product{ID: "a", Name: "A", Score: 80}))
	assert.Error(t, Validate(Product{Name: "A"}))
	assert.Error(t, Validate(Product{ID: "a", Name: "A", Score: 120}))
}
