package geo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/wright-research/jlawson-maps/pkg/core"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// ErrInvalidCoordinates is returned when a coordinate cannot be parsed or
// lies outside the WGS84 domain.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ParseLonLat parses a "lon,lat" string into a coordinate.
func ParseLonLat(s string) (core.LonLat, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return core.LonLat{}, ErrInvalidCoordinates
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return core.LonLat{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return core.LonLat{}, ErrInvalidCoordinates
	}
	p := core.LonLat{Lon: lon, Lat: lat}
	if err := Validate(p); err != nil {
		return core.LonLat{}, err
	}
	return p, nil
}

// Validate checks that the coordinate lies within the WGS84 domain.
func Validate(p core.LonLat) error {
	if p.Lon < -180 || p.Lon > 180 || p.Lat < -90 || p.Lat > 90 {
		return ErrInvalidCoordinates
	}
	return nil
}

// To3857 projects a WGS84 coordinate to Web Mercator meters.
func To3857(p core.LonLat) (x, y float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(p.Lon, p.Lat, 0)
	return x, y
}

// MetersBetween returns the planar distance between two coordinates in Web
// Mercator meters. Good enough for marker hit-testing at city scale.
func MetersBetween(a, b core.LonLat) float64 {
	ax, ay := To3857(a)
	bx, by := To3857(b)
	pa := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: ax, Y: ay}})
	pb := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: bx, Y: by}})
	d, ok := geom.Distance(pa.AsGeometry(), pb.AsGeometry())
	if !ok {
		return 0
	}
	return d
}
