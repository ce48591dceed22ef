// Package places provides the catalog of points of interest used for
// proximity alerts.
package places

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"pinledger/internal/core"
)

// Defaults returns the built-in points of interest.
func Defaults() []core.PointOfInterest {
	return []core.PointOfInterest{
		{ID: 1, Name: "Restaurant A", Coordinates: core.Coordinates{Latitude: 37.7749, Longitude: -122.4194}},
		{ID: 2, Name: "Cafe B", Coordinates: core.Coordinates{Latitude: 37.7750, Longitude: -122.4184}},
	}
}

type placeFile struct {
	Places []placeEntry `koanf:"places"`
}

type placeEntry struct {
	ID        int     `koanf:"id"`
	Name      string  `koanf:"name"`
	Latitude  float64 `koanf:"latitude"`
	Longitude float64 `koanf:"longitude"`
}

// Load reads places from a YAML file of the form
//
//	places:
//	  - id: 1
//	    name: Restaurant A
//	    latitude: 37.7749
//	    longitude: -122.4194
//
// An empty path or a missing file yields Defaults.
func Load(path string) ([]core.PointOfInterest, error) {
	if path == "" {
		return Defaults(), nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("Places file not found, using built-in places", "path", path)
			return Defaults(), nil
		}
		return nil, fmt.Errorf("load places file: %w", err)
	}

	var pf placeFile
	if err := k.Unmarshal("", &pf); err != nil {
		return nil, fmt.Errorf("decode places file: %w", err)
	}
	if len(pf.Places) == 0 {
		return nil, fmt.Errorf("places file %s defines no places", path)
	}

	seen := make(map[int]struct{}, len(pf.Places))
	out := make([]core.PointOfInterest, 0, len(pf.Places))
	for i, p := range pf.Places {
		if p.Name == "" {
			return nil, fmt.Errorf("place %d: empty name", i)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("place %d: duplicate id %d", i, p.ID)
		}
		seen[p.ID] = struct{}{}
		out = append(out, core.PointOfInterest{
			ID:          p.ID,
			Name:        p.Name,
			Coordinates: core.Coordinates{Latitude: p.Latitude, Longitude: p.Longitude},
		})
	}

	slog.Info("Loaded places", "path", path, "count", len(out))
	return out, nil
}
