package collision

// BroadPhase proposes the skin pairs whose swept bounds overlap. Pairs come in
// a stable order, sorted by the position of A then B in skins, with A always
// before B.
type BroadPhase interface {
	UpdateAllCollisions(skins []*Skin, out []Pair) []Pair
}

// Brute tests every pair of skins.
type Brute struct{}

func (Brute) UpdateAllCollisions(skins []*Skin, out []Pair) []Pair {
	for i := 0; i < len(skins); i++ {
		a := skins[i]
		if a.NumPrimitives() == 0 {
			continue
		}
		for j := i + 1; j < len(skins); j++ {
			b := skins[j]
			if b.NumPrimitives() > 0 && a.bounds.Overlaps(b.bounds) {
				out = append(out, Pair{A: a, B: b})
			}
		}
	}
	return out
}
