package catalog

const (
	baseScore          = 50
	materialPoints     = 5
	certificationPoint = 10
	tagPoints          = 2
	maxScore           = 100
)

// Score rates a contribution by how richly it is described.
// Catalog items carry their own score and are never rescored.
func Score(p Product) int {
	s := baseScore +
		materialPoints*len(p.Materials) +
		certificationPoint*len(p.Certifications) +
		tagPoints*len(p.Tags)
	if s > maxScore {
		return maxScore
	}
	return s
}
