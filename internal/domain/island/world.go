package island

import "fmt"

type Terrain string

const (
	TerrainSea       Terrain = "sea"
	TerrainDeadlySea Terrain = "deadly_sea"
	TerrainPlain     Terrain = "land_plain"
	TerrainForest    Terrain = "land_forest"
	TerrainSwamp     Terrain = "land_swamp"
	TerrainMountain  Terrain = "land_mountain"
	TerrainLandmark  Terrain = "landmark"
)

type LandmarkKind string

const (
	LandmarkBuriedBay  LandmarkKind = "buried_bay"
	LandmarkShipwreck  LandmarkKind = "shipwreck"
	LandmarkCave       LandmarkKind = "smugglers_cave"
	LandmarkLighthouse LandmarkKind = "lighthouse"
	LandmarkVolcano    LandmarkKind = "volcano"
	LandmarkSkullRock  LandmarkKind = "skull_rock"
	LandmarkNone       LandmarkKind = ""
)

// Legend maps every map rune to its terrain category.
var Legend = map[rune]Terrain{
	'~': TerrainSea,
	'x': TerrainDeadlySea,
	'.': TerrainPlain,
	'T': TerrainForest,
	'%': TerrainSwamp,
	'^': TerrainMountain,
	'B': TerrainLandmark,
	'S': TerrainLandmark,
	'C': TerrainLandmark,
	'L': TerrainLandmark,
	'V': TerrainLandmark,
	'K': TerrainLandmark,
}

var landmarkKinds = map[rune]LandmarkKind{
	'B': LandmarkBuriedBay,
	'S': LandmarkShipwreck,
	'C': LandmarkCave,
	'L': LandmarkLighthouse,
	'V': LandmarkVolcano,
	'K': LandmarkSkullRock,
}

type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// Neighbors4 returns the N, S, E, W neighbours without bounds checks.
func (c Coord) Neighbors4() [4]Coord {
	return [4]Coord{
		{X: c.X, Y: c.Y - 1},
		{X: c.X, Y: c.Y + 1},
		{X: c.X + 1, Y: c.Y},
		{X: c.X - 1, Y: c.Y},
	}
}

// WorldMap is immutable once built; callers only get copies of its symbols.
type WorldMap struct {
	width   int
	height  int
	start   Coord
	symbols []rune
}

func NewWorldMap(rows []string, start Coord) (WorldMap, error) {
	if len(rows) == 0 {
		return WorldMap{}, fmt.Errorf("map has no rows")
	}
	width := len([]rune(rows[0]))
	if width == 0 {
		return WorldMap{}, fmt.Errorf("map has zero width")
	}
	symbols := make([]rune, 0, width*len(rows))
	for y, row := range rows {
		runes := []rune(row)
		if len(runes) != width {
			return WorldMap{}, fmt.Errorf("row %d width mismatch", y)
		}
		for x, r := range runes {
			if _, ok := Legend[r]; !ok {
				return WorldMap{}, fmt.Errorf("unknown tile rune %q at %d,%d", string(r), x, y)
			}
		}
		symbols = append(symbols, runes...)
	}
	m := WorldMap{width: width, height: len(rows), start: start, symbols: symbols}
	if !m.IsLand(start) {
		return WorldMap{}, fmt.Errorf("start %s is not a land tile", start)
	}
	return m, nil
}

func (m WorldMap) Width() int { return m.width }
func (m WorldMap) Height() int { return m.height }
func (m WorldMap) Start() Coord { return m.start }

func (m WorldMap) InBounds(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < m.width && c.Y < m.height
}

func (m WorldMap) Index(c Coord) int {
	return c.Y*m.width + c.X
}

func (m WorldMap) Symbol(c Coord) (rune, bool) {
	if !m.InBounds(c) {
		return 0, false
	}
	return m.symbols[m.Index(c)], true
}

func (m WorldMap) Terrain(c Coord) Terrain {
	r, ok := m.Symbol(c)
	if !ok {
		return TerrainSea
	}
	return Legend[r]
}

// IsLand reports whether c is placeable/revealable: any land category or a landmark.
func (m WorldMap) IsLand(c Coord) bool {
	switch m.Terrain(c) {
	case TerrainPlain, TerrainForest, TerrainSwamp, TerrainMountain, TerrainLandmark:
		return true
	}
	return false
}

func (m WorldMap) Landmark(c Coord) LandmarkKind {
	r, ok := m.Symbol(c)
	if !ok {
		return LandmarkNone
	}
	return landmarkKinds[r]
}

// Rows renders the map back into legend rows.
func (m WorldMap) Rows() []string {
	rows := make([]string, m.height)
	for y := 0; y < m.height; y++ {
		rows[y] = string(m.symbols[y*m.width : (y+1)*m.width])
	}
	return rows
}

// StartCluster returns the land cells within Manhattan distance 1 of the start.
func (m WorldMap) StartCluster() []Coord {
	cells := []Coord{m.start}
	for _, n := range m.start.Neighbors4() {
		if m.IsLand(n) {
			cells = append(cells, n)
		}
	}
	return cells
}

// DefaultWorldMap is the built-in island used when no map file is configured.
func DefaultWorldMap() WorldMap {
	m, err := NewWorldMap(defaultRows, Coord{X: 10, Y: 8})
	if err != nil {
		panic(err)
	}
	return m
}

var defaultRows = []string{
	"~~~~~~~~~~~~~~~~~~~~~~~~",
	"~~~~~~xx~~~~~~~~~~~~~~~~",
	"~~~~~~~~~~....TT~~~~~~~~",
	"~~~~~~~....TTTTT.L~~~~~~",
	"~~~~~~..%%.TT^^T..~~~~~~",
	"~~~~~.S.%%...^V^..~~~~~~",
	"~~~~~.....T..^^^...~~xx~",
	"~~~~..TT...........~~~~~",
	"~~~~.TTT...B....%%..~~~~",
	"~~~~..TT.......%%%..~~~~",
	"~~~~~.....^^.....C.~~~~~",
	"~~~~~~..T.^K^...TT.~~~~~",
	"~~~~~~~..........~~~~~~~",
	"~~xx~~~~~..~~...~~~~~~~~",
	"~~~~~~~~~~~~~~~~~~~~~~~~",
	"~~~~~~~~~~~~~~~~~~~~~~~~",
}
