// Command simulate runs a wave offline over a GeoJSON area and prints one
// GeoJSON FeatureCollection per sampled tick, newline-delimited, to stdout.
// Useful for eyeballing the front shape and for generating rendering
// fixtures without a running service.
//
// Usage:
//
//	go run ./cmd/simulate \
//	  -area area.geojson \
//	  -speed 300 \
//	  -direction east \
//	  -interval 1s \
//	  -mode add
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/worldwidewaves/wave-engine/internal/area"
	"github.com/worldwidewaves/wave-engine/internal/geo"
	"github.com/worldwidewaves/wave-engine/internal/wave"
)

func main() {
	areaFile := flag.String("area", "", "GeoJSON file with the event area polygons")
	speed := flag.Float64("speed", 10, "wave ground speed in meters per second")
	direction := flag.String("direction", "east", "sweep direction: east or west")
	interval := flag.Duration("interval", time.Second, "sampling interval")
	refresh := flag.Duration("refresh", 250*time.Millisecond, "band refresh interval")
	modeName := flag.String("mode", "add", "accumulation mode: add or recompose")
	flag.Parse()

	if *areaFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	a, err := area.Load(*areaFile)
	if err != nil {
		log.Fatalf("load area: %v", err)
	}
	dir, err := wave.ParseDirection(*direction)
	if err != nil {
		log.Fatal(err)
	}
	mode, err := wave.ParseMode(*modeName)
	if err != nil {
		log.Fatal(err)
	}

	start := time.Unix(0, 0).UTC()
	w, err := wave.New(*speed, dir, a.BoundingBox(), *refresh, start)
	if err != nil {
		log.Fatalf("build wave: %v", err)
	}

	duration := w.Duration()
	frames := int(duration / *interval)
	fmt.Fprintf(os.Stderr, "wave duration %s, %d frames at %s\n",
		duration.Round(time.Millisecond), frames+1, *interval)

	var last *wave.Polygons
	for now := start.Add(*interval); ; now = now.Add(*interval) {
		snap, err := wave.Accumulate(w, a.Polygons(), last, mode, now)
		if err != nil {
			log.Fatalf("accumulate at %s: %v", now.Sub(start), err)
		}
		last = snap

		doc, err := geo.MarshalFeatureCollection(snap.Traversed, map[string]any{
			"elapsed_seconds":     now.Sub(start).Seconds(),
			"reference_longitude": snap.ReferenceLongitude,
		})
		if err != nil {
			log.Fatalf("marshal frame: %v", err)
		}
		fmt.Println(string(doc))

		if now.Sub(start) >= duration {
			break
		}
	}
}
