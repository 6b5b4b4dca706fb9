package game

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"lifelens-island/internal/domain/island"
)

type MapJSON struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Start  island.Coord `json:"start"`
	Rows   []string     `json:"rows"`
}

func ReadWorldMap(path string) (island.WorldMap, error) {
	if path == "" {
		return island.WorldMap{}, fmt.Errorf("empty world map path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return island.WorldMap{}, fmt.Errorf("read world map: %w", err)
	}
	var data MapJSON
	if err := json.Unmarshal(b, &data); err != nil {
		return island.WorldMap{}, fmt.Errorf("parse world map json: %w", err)
	}
	if data.Width <= 0 || data.Height <= 0 {
		return island.WorldMap{}, fmt.Errorf("invalid map dimensions")
	}
	if len(data.Rows) != data.Height {
		return island.WorldMap{}, fmt.Errorf("rows count must equal height")
	}
	for y, row := range data.Rows {
		if len([]rune(row)) != data.Width {
			return island.WorldMap{}, fmt.Errorf("row %d width mismatch", y)
		}
	}
	return island.NewWorldMap(data.Rows, data.Start)
}

// LoadWorldMap reads the map file, falling back to the built-in island.
func LoadWorldMap(logger zerolog.Logger, path string) island.WorldMap {
	m, err := ReadWorldMap(path)
	if err != nil {
		logger.Warn().Err(err).Str("map_file", path).Msg("failed to load world map file, using fallback")
		return island.DefaultWorldMap()
	}
	return m
}
