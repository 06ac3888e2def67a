package catalog

// Kind tells catalog items apart from locally owned contributions.
type Kind string

const (
	KindCatalog      Kind = "catalog"
	KindContribution Kind = "contribution"
)

// ContributionPrefix starts every synthesized contribution id.
const ContributionPrefix = "p"

// Product is a catalog entry or a user contribution.
type Product struct {
	ID             string   `json:"id" validate:"required"`
	Kind           Kind     `json:"kind,omitempty"`
	Name           string   `json:"name" validate:"required"`
	Category       string   `json:"category"`
	Replaces       string   `json:"replaces"`
	Description    string   `json:"description"`
	Tags           []string `json:"tags"`
	Materials      []string `json:"materials"`
	Certifications []string `json:"certifications"`
	Impact         Impact   `json:"impact"`
	Score          int      `json:"score" validate:"min=0,max=100"`
	Image          string   `json:"image,omitempty"`
	Links          []Link   `json:"links"`
}

// Impact is the estimated savings of switching to a product.
type Impact struct {
	CO2   float64 `json:"co2"`
	Water float64 `json:"water"`
	Waste float64 `json:"waste"`
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// IsContribution reports whether p was authored locally and may be deleted.
func (p Product) IsContribution() bool {
	return p.Kind == KindContribution
}

// Normalize replaces nil slices with empty ones so the JSON shape stays stable.
func (p Product) Normalize() Product {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Materials == nil {
		p.Materials = []string{}
	}
	if p.Certifications == nil {
		p.Certifications = []string{}
	}
	if p.Links == nil {
		p.Links = []Link{}
	}
	return p
}

// Fields is the user input behind a new contribution.
type Fields struct {
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Replaces       string   `json:"replaces"`
	Description    string   `json:"description"`
	Tags           []string `json:"tags"`
	Materials      []string `json:"materials"`
	Certifications []string `json:"certifications"`
	Image          string   `json:"image"`
}
