package domain

import (
	"errors"
	"math"
	"testing"
)

func TestPairIDOrderIndependent(t *testing.T) {
	cases := [][2]string{
		{"a", "b"},
		{"wh-1", "sp-9"},
		{"64f0", "64f1"},
	}

	for _, c := range cases {
		if PairID(c[0], c[1]) != PairID(c[1], c[0]) {
			t.Errorf("PairID(%q,%q) != PairID(%q,%q)", c[0], c[1], c[1], c[0])
		}
	}

	if got := PairID("b", "a"); got != "a_b" {
		t.Errorf("PairID(b,a) = %q, want a_b", got)
	}
}

func TestNewDistancePairRejectsSelfPair(t *testing.T) {
	_, err := NewDistancePair("X", "X", 1.0)
	if !errors.Is(err, ErrSelfPair) {
		t.Fatalf("expected ErrSelfPair, got %v", err)
	}
}

func TestNewDistancePairRejectsInvalidDistance(t *testing.T) {
	for _, km := range []float64{-0.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := NewDistancePair("A", "B", km); !errors.Is(err, ErrInvalidDistance) {
			t.Errorf("distance %v: expected ErrInvalidDistance, got %v", km, err)
		}
	}
}

func TestNewDistancePairNormalizes(t *testing.T) {
	p, err := NewDistancePair("zeta", "alpha", 3.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PairID != "alpha_zeta" {
		t.Errorf("PairID = %q, want alpha_zeta", p.PairID)
	}
}

func TestPartnerRelationsExhaustive(t *testing.T) {
	rels := PartnerRelations(KindWarehouse)
	if len(rels) != 2 {
		t.Fatalf("warehouse relations = %d, want 2", len(rels))
	}
	if rels[0].Type != PairWarehouseSalePoint || rels[0].Partner != KindSalePoint {
		t.Errorf("unexpected first warehouse relation: %+v", rels[0])
	}
	if rels[1].Type != PairWarehouseSupplier || rels[1].Partner != KindSupplier {
		t.Errorf("unexpected second warehouse relation: %+v", rels[1])
	}

	if got := PartnerRelations(KindSupplier); len(got) != 1 || got[0].Type != PairWarehouseSupplier {
		t.Errorf("unexpected supplier relations: %+v", got)
	}

	sp := PartnerRelations(KindSalePoint)
	if len(sp) != 2 || sp[1].Type != PairSalePointSalePoint {
		t.Errorf("unexpected sale point relations: %+v", sp)
	}
}

func TestCoordinatesValid(t *testing.T) {
	cases := []struct {
		pos  Coordinates
		want bool
	}{
		{Coordinates{Lon: 10, Lat: 36}, true},
		{Coordinates{Lon: 0, Lat: 0}, false}, // sentinel
		{Coordinates{Lon: 181, Lat: 0}, false},
		{Coordinates{Lon: 0, Lat: -91}, false},
		{Coordinates{Lon: 0, Lat: 36}, true},
	}

	for _, c := range cases {
		if got := c.pos.Valid(); got != c.want {
			t.Errorf("Valid(%v) = %v, want %v", c.pos, got, c.want)
		}
	}
}
