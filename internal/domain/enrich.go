package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/taxi-fare-prep/internal/dataset"
)

// Derived column names added by Enrich.
const (
	ColDistanceKm = "distance_km"
	ColHour       = "hour"
	ColAmPm       = "am_pm"
)

// pickupLayouts are the timestamp formats seen in NYC taxi exports, tried in order.
var pickupLayouts = []string{
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// FeatureColumns names the input columns Enrich reads.
type FeatureColumns struct {
	PickupDatetime string
	PickupLat      string
	PickupLon      string
	DropoffLat     string
	DropoffLon     string
}

// DefaultFeatureColumns returns the column names of the NYC taxi fare dataset.
func DefaultFeatureColumns() FeatureColumns {
	return FeatureColumns{
		PickupDatetime: "pickup_datetime",
		PickupLat:      "pickup_latitude",
		PickupLon:      "pickup_longitude",
		DropoffLat:     "dropoff_latitude",
		DropoffLon:     "dropoff_longitude",
	}
}

// EnrichStats counts rows whose derived values came out missing.
type EnrichStats struct {
	Rows               int
	NonFiniteDistances int
	InvalidHours       int
}

// Enrich returns a copy of ds with distance_km, hour and am_pm appended.
// distance_km is the haversine distance between pickup and dropoff. hour is
// the pickup hour normalized by ModifyHour under policy, and am_pm its AmOrPm
// label stored as a category. Missing or unparseable inputs leave the derived
// cells missing and are counted in the returned stats. ds is not modified.
//
// A bare-hour pickup column should be loaded with [dataset.WithStringColumns]:
// read as an integer, "010" has already become 10.
func Enrich(ds *dataset.Dataset, cols FeatureColumns, policy ZeroPolicy) (*dataset.Dataset, EnrichStats, error) {
	var stats EnrichStats
	if _, _, err := dataset.GetShape(ds); err != nil {
		return nil, stats, fmt.Errorf("enrich: %w", err)
	}

	distances, nonFinite, err := distanceColumn(ds, cols)
	if err != nil {
		return nil, stats, err
	}
	stats.NonFiniteDistances = nonFinite
	stats.Rows = len(distances)

	hours, labels, invalid, err := hourColumns(ds, cols.PickupDatetime, policy)
	if err != nil {
		return nil, stats, err
	}
	stats.InvalidHours = invalid

	out := ds
	for _, s := range []series.Series{
		series.New(distances, series.Float, ColDistanceKm),
		series.New(hours, series.Int, ColHour),
		series.New(labels, series.String, ColAmPm),
	} {
		if out, err = out.WithColumn(s); err != nil {
			return nil, stats, fmt.Errorf("enrich: %w", err)
		}
	}
	if err := dataset.ConvertToCategoryType([]string{ColAmPm}, out); err != nil {
		return nil, stats, fmt.Errorf("enrich: %w", err)
	}
	return out, stats, nil
}

// distanceColumn returns distances as text, with "NaN" marking missing cells
// for gota.
func distanceColumn(ds *dataset.Dataset, cols FeatureColumns) ([]string, int, error) {
	var inputs [4][]float64
	for i, name := range []string{cols.PickupLat, cols.PickupLon, cols.DropoffLat, cols.DropoffLon} {
		values, err := ds.Floats(name)
		if err != nil {
			return nil, 0, fmt.Errorf("enrich distance: %w", err)
		}
		inputs[i] = values
	}

	out := make([]string, len(inputs[0]))
	nonFinite := 0
	for i := range out {
		d := HaversineDistance(inputs[0][i], inputs[1][i], inputs[2][i], inputs[3][i])
		if math.IsNaN(d) || math.IsInf(d, 0) {
			out[i] = "NaN"
			nonFinite++
			continue
		}
		out[i] = strconv.FormatFloat(d, 'f', -1, 64)
	}
	return out, nonFinite, nil
}

// hourColumns returns the hour and AM/PM columns as text, with "NaN" marking
// missing cells for gota.
func hourColumns(ds *dataset.Dataset, name string, policy ZeroPolicy) ([]string, []string, int, error) {
	raw, missing, err := ds.Strings(name)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("enrich hour: %w", err)
	}

	hours := make([]string, len(raw))
	labels := make([]string, len(raw))
	invalid := 0
	for i, v := range raw {
		hours[i], labels[i] = "NaN", "NaN"
		if missing[i] {
			invalid++
			continue
		}
		h, err := PickupHour(v, policy)
		if err != nil {
			invalid++
			continue
		}
		hours[i] = strconv.Itoa(h)
		labels[i] = AmOrPm(h)
	}
	return hours, labels, invalid, nil
}

// PickupHour returns the normalized hour of a pickup value, which may be a
// full timestamp or a bare hour string.
func PickupHour(v string, policy ZeroPolicy) (int, error) {
	return ModifyHour(hourField(v), policy)
}

// hourField extracts the two-digit hour from a pickup timestamp. Values that
// are not timestamps are returned trimmed, so a bare "07" column works too.
func hourField(v string) string {
	v = strings.TrimSpace(v)
	for _, layout := range pickupLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("15")
		}
	}
	return v
}
