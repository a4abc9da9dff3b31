package biome

import (
	"testing"

	"github.com/sablefrost/terra/server/noise"
)

func TestStandardAllowsRivers(t *testing.T) {
	if !(Standard{}).AllowsRivers() {
		t.Fatal("Standard should allow rivers")
	}
}

func TestDesertForbidsRivers(t *testing.T) {
	if (Desert{}).AllowsRivers() {
		t.Fatal("Desert should not allow rivers")
	}
}

func TestHeightIsDeterministic(t *testing.T) {
	hill := noise.New(1)
	mountain := noise.New(2)

	strategies := []Strategy{Standard{}, Desert{}}
	for _, s := range strategies {
		a := s.Height(120, -45, 0.5, 0.3, hill, mountain)
		b := s.Height(120, -45, 0.5, 0.3, hill, mountain)
		if a != b {
			t.Fatalf("%T.Height not deterministic: %v != %v", s, a, b)
		}
	}
}

func TestMountainMaskGatesMountainContribution(t *testing.T) {
	hill := noise.New(3)
	mountain := noise.New(4)

	for _, s := range []Strategy{Standard{}, Desert{}} {
		gated := s.Height(200, 200, 0.5, 0, hill, mountain)
		ungated := s.Height(200, 200, 0.5, 1, hill, mountain)
		if gated == ungated {
			t.Fatalf("%T: expected mountain mask to change output height", s)
		}
	}
}
