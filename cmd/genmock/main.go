// Command genmock writes a deterministic mock NYC taxi fare table for tests
// and local runs. The same -seed always yields the same file.
//
// Usage:
//
//	go run ./cmd/genmock -rows 40 -seed 20240426 -out data/mock/taxi_trips_generated.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/taxi-fare-prep/internal/domain"
)

var baseDate = time.Date(2013, time.January, 1, 0, 0, 0, 0, time.UTC)

var header = []string{
	"pickup_datetime", "fare_amount", "fare_class",
	"pickup_longitude", "pickup_latitude", "dropoff_longitude", "dropoff_latitude",
	"passenger_count", "payment",
}

// Manhattan-and-boroughs bounding box for pickups.
const (
	minLat, maxLat = 40.63, 40.85
	minLon, maxLon = -74.02, -73.78
	// maxOffset bounds how far a dropoff lands from its pickup, in degrees.
	maxOffset = 0.05
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rows := flag.Int("rows", 1000, "number of trips to generate")
	seed := flag.Uint64("seed", 20240426, "random seed")
	out := flag.String("out", "", "output CSV path")
	missingEvery := flag.Int("missing-every", 25, "blank one input cell every N rows (0 disables)")
	flag.Parse()

	if *out == "" || *rows <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out and a positive -rows")
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	for i := range *rows {
		row := mockTrip(rng)
		if *missingEvery > 0 && i%*missingEvery == *missingEvery-1 {
			row[1+rng.IntN(len(row)-1)] = ""
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	log.Printf("wrote %d trips to %s", *rows, *out)
	return nil
}

// mockTrip draws one trip. The fare follows the trip's haversine distance so
// the generated table has a learnable signal.
func mockTrip(rng *rand.Rand) []string {
	var plat, plon, dlat, dlon float64
	for {
		plat = minLat + rng.Float64()*(maxLat-minLat)
		plon = minLon + rng.Float64()*(maxLon-minLon)
		dlat = plat + (rng.Float64()*2-1)*maxOffset
		dlon = plon + (rng.Float64()*2-1)*maxOffset
		if domain.ValidCoordinate(dlat, dlon) {
			break
		}
	}

	pickup := baseDate.Add(time.Duration(rng.Int64N(int64(365 * 24 * time.Hour)))).Truncate(time.Second)
	km := domain.HaversineDistance(plat, plon, dlat, dlon)
	fare := 2.5 + 1.56*km + rng.Float64()*3
	fareClass := "0"
	if fare >= 10 {
		fareClass = "1"
	}
	payment := "CRD"
	if rng.IntN(3) == 0 {
		payment = "CSH"
	}

	return []string{
		pickup.Format("2006-01-02 15:04:05 MST"),
		strconv.FormatFloat(fare, 'f', 2, 64),
		fareClass,
		strconv.FormatFloat(plon, 'f', 6, 64),
		strconv.FormatFloat(plat, 'f', 6, 64),
		strconv.FormatFloat(dlon, 'f', 6, 64),
		strconv.FormatFloat(dlat, 'f', 6, 64),
		strconv.Itoa(1 + rng.IntN(6)),
		payment,
	}
}
