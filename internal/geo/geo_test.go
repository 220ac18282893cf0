package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/wright-research/jlawson-maps/pkg/core"
)

func TestParseLonLat_Valid(t *testing.T) {
	p, err := ParseLonLat("-84.39, 33.75")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Lon != -84.39 {
		t.Errorf("expected Lon=-84.39, got %f", p.Lon)
	}
	if p.Lat != 33.75 {
		t.Errorf("expected Lat=33.75, got %f", p.Lat)
	}
}

func TestParseLonLat_Invalid(t *testing.T) {
	cases := []string{"", "abc", "1", "1,2,3", "x,2", "1,y", "300,0", "0,91"}
	for _, c := range cases {
		_, err := ParseLonLat(c)
		if !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("ParseLonLat(%q): expected ErrInvalidCoordinates, got %v", c, err)
		}
	}
}

func TestTo3857_Origin(t *testing.T) {
	x, y := To3857(core.LonLat{Lon: 0, Lat: 0})
	if math.Abs(x) > 1e-6 || math.Abs(y) > 1e-6 {
		t.Errorf("expected origin to project to (0,0), got (%f,%f)", x, y)
	}
}

func TestMetersBetween(t *testing.T) {
	a := core.LonLat{Lon: -84.0, Lat: 33.0}
	b := core.LonLat{Lon: -84.0, Lat: 33.0}
	if d := MetersBetween(a, b); d != 0 {
		t.Errorf("expected zero distance, got %f", d)
	}

	// One degree of longitude at the equator is ~111km in Web Mercator.
	c := core.LonLat{Lon: 1, Lat: 0}
	o := core.LonLat{Lon: 0, Lat: 0}
	d := MetersBetween(o, c)
	if d < 110000 || d > 112500 {
		t.Errorf("expected ~111km, got %f", d)
	}
}
