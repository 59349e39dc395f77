package domain

import (
	"math"
	"testing"
)

func TestHaversineSymmetry(t *testing.T) {
	pairs := [][2]Coordinates{
		{{Lon: 10.0, Lat: 36.0}, {Lon: 10.5, Lat: 36.0}},
		{{Lon: -73.99, Lat: 40.73}, {Lon: 2.35, Lat: 48.86}},
		{{Lon: 179.9, Lat: 0}, {Lon: -179.9, Lat: 0}},
	}

	for _, p := range pairs {
		ab := Haversine(p[0], p[1])
		ba := Haversine(p[1], p[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("Haversine(%v,%v)=%v but reversed=%v", p[0], p[1], ab, ba)
		}
	}
}

func TestHaversineZeroIdentityAndNonNegativity(t *testing.T) {
	points := []Coordinates{
		{Lon: 10.0, Lat: 36.0},
		{Lon: 0, Lat: 90},
		{Lon: -180, Lat: -90},
	}

	for _, p := range points {
		if d := Haversine(p, p); d != 0 {
			t.Errorf("Haversine(%v,%v) = %v, want 0", p, p, d)
		}
	}

	for _, p := range points {
		for _, q := range points {
			if d := Haversine(p, q); d < 0 {
				t.Errorf("Haversine(%v,%v) = %v, want >= 0", p, q, d)
			}
		}
	}
}

func TestHaversineKnownDistances(t *testing.T) {
	// One degree of longitude at latitude 36 is about 90 km.
	w := Coordinates{Lon: 10.0, Lat: 36.0}
	a := Coordinates{Lon: 10.1, Lat: 36.0}
	b := Coordinates{Lon: 10.5, Lat: 36.0}

	da := Haversine(w, a)
	if da < 8.5 || da > 9.3 {
		t.Errorf("Haversine(w,a) = %v, want ~8.9", da)
	}

	db := Haversine(w, b)
	if db < 44 || db > 46 {
		t.Errorf("Haversine(w,b) = %v, want ~45", db)
	}

	// Tunis to Sousse is roughly 115-125 km great-circle.
	tunis := Coordinates{Lon: 10.1815, Lat: 36.8065}
	sousse := Coordinates{Lon: 10.6412, Lat: 35.8256}
	d := Haversine(tunis, sousse)
	if d < 110 || d > 125 {
		t.Errorf("Haversine(tunis,sousse) = %v, want 110..125", d)
	}
}

func TestRoundKm(t *testing.T) {
	cases := map[float64]float64{
		8.8937:  8.89,
		8.896:   8.9,
		0:       0,
		44.4999: 44.5,
	}
	for in, want := range cases {
		if got := RoundKm(in); got != want {
			t.Errorf("RoundKm(%v) = %v, want %v", in, got, want)
		}
	}
}
