package island

type Piece struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Cost  int    `json:"cost"`
	Glyph string `json:"glyph"`
}

// Pieces is the shop catalog, ordered cheapest first.
var Pieces = []Piece{
	{ID: "tiki_torch", Name: "Tiki Torch", Cost: 40, Glyph: "t"},
	{ID: "palm_tree", Name: "Palm Tree", Cost: 50, Glyph: "p"},
	{ID: "hut", Name: "Bamboo Hut", Cost: 150, Glyph: "h"},
	{ID: "treasure_chest", Name: "Treasure Chest", Cost: 200, Glyph: "$"},
	{ID: "cannon", Name: "Cannon", Cost: 250, Glyph: "c"},
	{ID: "dock", Name: "Dock", Cost: 300, Glyph: "d"},
	{ID: "lighthouse", Name: "Lighthouse", Cost: 800, Glyph: "l"},
	{ID: "galleon", Name: "Galleon", Cost: 1200, Glyph: "g"},
}

func PieceByID(id string) (Piece, bool) {
	for _, p := range Pieces {
		if p.ID == id {
			return p, true
		}
	}
	return Piece{}, false
}
