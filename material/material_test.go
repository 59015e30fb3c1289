package material

import (
	"math"
	"math/rand"
	"testing"
)

func pairEqual(a, b PairProperties) bool {
	const eps = 1e-12
	return math.Abs(a.Restitution-b.Restitution) < eps &&
		math.Abs(a.StaticFriction-b.StaticFriction) < eps &&
		math.Abs(a.DynamicFriction-b.DynamicFriction) < eps
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Properties
		expected PairProperties
	}{
		{
			name:     "both zero",
			expected: PairProperties{},
		},
		{
			name:     "one elastic, one inelastic",
			a:        Properties{Elasticity: 1},
			b:        Properties{Elasticity: 0},
			expected: PairProperties{},
		},
		{
			name:     "both perfectly elastic",
			a:        Properties{Elasticity: 1},
			b:        Properties{Elasticity: 1},
			expected: PairProperties{Restitution: 1},
		},
		{
			name:     "geometric mean of roughness",
			a:        Properties{Elasticity: 0.5, StaticRoughness: 0.2, DynamicRoughness: 0.1},
			b:        Properties{Elasticity: 0.6, StaticRoughness: 0.8, DynamicRoughness: 0.4},
			expected: PairProperties{Restitution: 0.3, StaticFriction: 0.4, DynamicFriction: 0.2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Combine(tt.a, tt.b); !pairEqual(got, tt.expected) {
				t.Errorf("Combine() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestGetPairProperties(t *testing.T) {
	t.Run("unknown ids are inelastic and frictionless", func(t *testing.T) {
		table := NewTable()
		if got := table.GetPairProperties(3, 7); got != (PairProperties{}) {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("set material recomputes existing pairs", func(t *testing.T) {
		table := NewTable()
		table.SetMaterialProperties(1, Properties{Elasticity: 0.5, StaticRoughness: 1, DynamicRoughness: 1})
		table.SetMaterialProperties(2, Properties{Elasticity: 0.5, StaticRoughness: 1, DynamicRoughness: 1})
		before := table.GetPairProperties(1, 2)

		table.SetMaterialProperties(2, Properties{Elasticity: 1, StaticRoughness: 0.25, DynamicRoughness: 0.25})
		after := table.GetPairProperties(1, 2)

		if before.Restitution != 0.25 || after.Restitution != 0.5 {
			t.Errorf("restitution before %v, after %v", before.Restitution, after.Restitution)
		}
		if !pairEqual(after, PairProperties{Restitution: 0.5, StaticFriction: 0.5, DynamicFriction: 0.5}) {
			t.Errorf("got %+v", after)
		}
	})

	t.Run("explicit pair survives material updates", func(t *testing.T) {
		table := NewTable()
		override := PairProperties{Restitution: 0.9, StaticFriction: 0.1, DynamicFriction: 0.05}
		table.SetMaterialPairProperties(4, 5, override)
		table.SetMaterialProperties(4, Properties{Elasticity: 0.1})
		table.SetMaterialProperties(5, Properties{Elasticity: 0.1})

		if got := table.GetPairProperties(5, 4); got != override {
			t.Errorf("got %+v, want %+v", got, override)
		}
		if !table.IsOverridden(4, 5) || table.IsOverridden(4, 4) {
			t.Error("unexpected override flags")
		}
	})

	t.Run("same material", func(t *testing.T) {
		table := NewTable()
		table.SetMaterialProperties(Default, Properties{Elasticity: 0.2, StaticRoughness: 0.6, DynamicRoughness: 0.3})
		got := table.GetPairProperties(Default, Default)
		if !pairEqual(got, PairProperties{Restitution: 0.04, StaticFriction: 0.6, DynamicFriction: 0.3}) {
			t.Errorf("got %+v", got)
		}
	})
}

func TestGetPairProperties_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	table := NewTable()

	for i := 0; i < 50; i++ {
		id := ID(rng.Intn(10))
		switch rng.Intn(3) {
		case 0, 1:
			table.SetMaterialProperties(id, Properties{
				Elasticity:       rng.Float64(),
				StaticRoughness:  rng.Float64(),
				DynamicRoughness: rng.Float64(),
			})
		case 2:
			table.SetMaterialPairProperties(id, ID(rng.Intn(10)), PairProperties{
				Restitution:    rng.Float64(),
				StaticFriction: rng.Float64(),
			})
		}
	}

	for i := ID(0); i < 12; i++ {
		for j := ID(0); j < 12; j++ {
			if table.GetPairProperties(i, j) != table.GetPairProperties(j, i) {
				t.Fatalf("pair (%d, %d) is not symmetric", i, j)
			}
		}
	}
}
