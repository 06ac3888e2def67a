package session

import "github.com/aryannaik/sustainify/internal/catalog"

// MinCompare is how many items must be selected before a comparison is shown.
const MinCompare = 2

// ToggleCompare adds or removes id from the comparison selection. The
// selection lives only as long as the session.
func (c *Controller) ToggleCompare(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removeCompare(id) {
		return false
	}
	c.compare = append(c.compare, id)
	return true
}

// Compared returns the selected products in selection order, skipping ids
// that no longer exist.
func (c *Controller) Compared() []catalog.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]catalog.Product, 0, len(c.compare))
	for _, id := range c.compare {
		if p, ok := catalog.Find(c.unified, id); ok {
			out = append(out, p)
		}
	}
	return out
}

func (c *Controller) removeCompare(id string) bool {
	for i, cur := range c.compare {
		if cur == id {
			c.compare = append(c.compare[:i], c.compare[i+1:]...)
			return true
		}
	}
	return false
}
