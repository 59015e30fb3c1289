// Package material resolves the restitution and friction of a contact from
// the material ids of the two surfaces.
package material

import (
	"math"

	"github.com/akmonengine/gravel/internal/assert"
)

// ID identifies a material. Ids are small non-negative integers chosen by the
// application.
type ID int

// Default is the material of skins and primitives that do not set one.
const Default ID = 0

// Properties describe one material.
type Properties struct {
	Elasticity       float64
	StaticRoughness  float64
	DynamicRoughness float64
}

// PairProperties are the coefficients used by a contact between two materials.
type PairProperties struct {
	Restitution     float64
	StaticFriction  float64
	DynamicFriction float64
}

// Combine derives the pair coefficients from the two materials: restitution is
// the product of the elasticities, frictions are the geometric mean of the
// roughnesses.
func Combine(a, b Properties) PairProperties {
	return PairProperties{
		Restitution:     a.Elasticity * b.Elasticity,
		StaticFriction:  math.Sqrt(a.StaticRoughness * b.StaticRoughness),
		DynamicFriction: math.Sqrt(a.DynamicRoughness * b.DynamicRoughness),
	}
}

type pairKey struct {
	lo, hi ID
}

func makePairKey(a, b ID) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

type pairEntry struct {
	properties PairProperties
	override   bool
}

// Table stores materials and resolved pairs. A Table is not safe for
// concurrent mutation.
type Table struct {
	materials map[ID]Properties
	pairs     map[pairKey]pairEntry
}

// NewTable returns an empty table in which every id is inelastic and frictionless.
func NewTable() *Table {
	return &Table{
		materials: make(map[ID]Properties),
		pairs:     make(map[pairKey]pairEntry),
	}
}

// SetMaterialProperties stores the properties of id and recomputes every known
// pair involving it that was not set explicitly.
func (t *Table) SetMaterialProperties(id ID, p Properties) {
	assert.That(id >= 0, "negative material id %d", id)
	t.materials[id] = p

	for other := range t.materials {
		key := makePairKey(id, other)
		if entry, ok := t.pairs[key]; ok && entry.override {
			continue
		}
		t.pairs[key] = pairEntry{properties: Combine(p, t.materials[other])}
	}
}

// SetMaterialPairProperties overrides the coefficients of the pair (a, b).
// Later calls to SetMaterialProperties leave it untouched.
func (t *Table) SetMaterialPairProperties(a, b ID, p PairProperties) {
	assert.That(a >= 0 && b >= 0, "negative material id in pair (%d, %d)", a, b)
	t.pairs[makePairKey(a, b)] = pairEntry{properties: p, override: true}
}

// GetPairProperties returns the coefficients of the pair (a, b). The lookup is
// symmetric and never fails: unknown ids behave as Properties{}.
func (t *Table) GetPairProperties(a, b ID) PairProperties {
	assert.That(a >= 0 && b >= 0, "negative material id in pair (%d, %d)", a, b)
	if entry, ok := t.pairs[makePairKey(a, b)]; ok {
		return entry.properties
	}
	return Combine(t.materials[a], t.materials[b])
}

// MaterialProperties returns the properties of id and whether it was set.
func (t *Table) MaterialProperties(id ID) (Properties, bool) {
	p, ok := t.materials[id]
	return p, ok
}

// IsOverridden reports whether the pair (a, b) was set explicitly.
func (t *Table) IsOverridden(a, b ID) bool {
	return t.pairs[makePairKey(a, b)].override
}
