package catalog

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a catalog entry before it enters the unified collection.
func Validate(p Product) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid product %q: %w", p.ID, err)
	}
	return nil
}

// ValidImage reports whether s is an absolute URL worth rendering.
func ValidImage(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return validate.Var(s, "url") == nil
}

// NewContribution turns user input into a contribution with the given id.
// It never fails: blank fields stay blank and an unusable image is dropped.
func NewContribution(id string, f Fields) Product {
	p := Product{
		ID:             id,
		Kind:           KindContribution,
		Name:           strings.TrimSpace(f.Name),
		Category:       strings.TrimSpace(f.Category),
		Replaces:       strings.TrimSpace(f.Replaces),
		Description:    strings.TrimSpace(f.Description),
		Tags:           trimAll(f.Tags),
		Materials:      trimAll(f.Materials),
		Certifications: trimAll(f.Certifications),
		Links:          []Link{},
	}
	if ValidImage(f.Image) {
		p.Image = strings.TrimSpace(f.Image)
	}
	p.Score = Score(p)
	return p
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
