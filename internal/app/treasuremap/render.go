// Package treasuremap renders the player's island as a printable parchment
// map: revealed terrain, fog over the unexplored land, landmarks and pieces.
package treasuremap

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"lifelens-island/internal/app/game"
	"lifelens-island/internal/domain/island"
)

const (
	pageW     = 842
	pageH     = 595
	margin    = 36
	header    = 48
	legendH   = 40
	titleSize = 18
	fontSize  = 8
)

type rgb struct{ r, g, b int }

var terrainColors = map[island.Terrain]rgb{
	island.TerrainSea:       {120, 170, 200},
	island.TerrainDeadlySea: {40, 70, 110},
	island.TerrainPlain:     {220, 200, 140},
	island.TerrainForest:    {90, 140, 70},
	island.TerrainSwamp:     {120, 130, 80},
	island.TerrainMountain:  {150, 130, 110},
	island.TerrainLandmark:  {230, 180, 90},
}

var fog = rgb{200, 195, 185}

// Render returns PDF bytes for the island in st.
func Render(m island.WorldMap, st game.State, title string) ([]byte, error) {
	if m.Width() == 0 || m.Height() == 0 {
		return nil, fmt.Errorf("empty world map")
	}
	revealed := make(map[island.Coord]bool, len(st.Revealed))
	for _, c := range st.Revealed {
		revealed[c] = true
	}
	pieces := make(map[island.Coord]string, len(st.Placed))
	for _, p := range st.Placed {
		if piece, ok := island.PieceByID(p.PieceID); ok {
			pieces[p.At] = piece.Glyph
		}
	}

	cell := math.Min(
		float64(pageW-2*margin)/float64(m.Width()),
		float64(pageH-2*margin-header-legendH)/float64(m.Height()),
	)
	gridW := cell * float64(m.Width())
	x0 := (pageW - gridW) / 2
	y0 := float64(margin + header)

	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFillColor(245, 235, 210)
	pdf.Rect(0, 0, pageW, pageH, "F")

	pdf.SetTextColor(80, 50, 30)
	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(margin, margin)
	if title == "" {
		title = "Treasure Map"
	}
	pdf.CellFormat(pageW-2*margin, 20, title, "", 0, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", fontSize)
	pdf.SetXY(margin, margin+22)
	pdf.CellFormat(pageW-2*margin, 12, fmt.Sprintf("%d of %d land cells explored", len(st.Revealed), landCells(m)), "", 0, "C", false, 0, "")

	pdf.SetDrawColor(80, 50, 30)
	pdf.SetLineWidth(0.3)
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			c := island.Coord{X: x, Y: y}
			t := m.Terrain(c)
			col, ok := terrainColors[t]
			if !ok {
				col = fog
			}
			land := m.IsLand(c)
			if land && !revealed[c] {
				col = fog
			}
			px := x0 + float64(x)*cell
			py := y0 + float64(y)*cell
			pdf.SetFillColor(col.r, col.g, col.b)
			style := "F"
			if land {
				style = "FD"
			}
			pdf.Rect(px, py, cell, cell, style)
			if !land || !revealed[c] {
				continue
			}
			label := ""
			if kind := m.Landmark(c); kind != island.LandmarkNone {
				sym, _ := m.Symbol(c)
				label = string(sym)
			}
			if g, ok := pieces[c]; ok {
				label = g
			}
			if label != "" {
				pdf.SetFont("Helvetica", "B", math.Max(6, cell*0.5))
				pdf.SetTextColor(40, 25, 15)
				pdf.SetXY(px, py)
				pdf.CellFormat(cell, cell, label, "", 0, "CM", false, 0, "")
			}
		}
	}

	drawLegend(pdf, y0+cell*float64(m.Height())+10)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write treasure map: %w", err)
	}
	return buf.Bytes(), nil
}

func drawLegend(pdf *gofpdf.Fpdf, y float64) {
	entries := []struct {
		label string
		col   rgb
	}{
		{"Sea", terrainColors[island.TerrainSea]},
		{"Deadly sea", terrainColors[island.TerrainDeadlySea]},
		{"Plain", terrainColors[island.TerrainPlain]},
		{"Forest", terrainColors[island.TerrainForest]},
		{"Swamp", terrainColors[island.TerrainSwamp]},
		{"Mountain", terrainColors[island.TerrainMountain]},
		{"Landmark", terrainColors[island.TerrainLandmark]},
		{"Unexplored", fog},
	}
	x := float64(margin)
	pdf.SetFont("Helvetica", "", fontSize)
	pdf.SetTextColor(80, 50, 30)
	for _, e := range entries {
		pdf.SetFillColor(e.col.r, e.col.g, e.col.b)
		pdf.Rect(x, y, 10, 10, "FD")
		pdf.SetXY(x+12, y)
		pdf.CellFormat(60, 10, e.label, "", 0, "L", false, 0, "")
		x += 80
	}
	glyphs := make([]string, 0, len(island.Pieces))
	for _, p := range island.Pieces {
		glyphs = append(glyphs, p.Glyph+" "+p.Name)
	}
	pdf.SetXY(margin, y+14)
	pdf.CellFormat(pageW-2*margin, 10, strings.Join(glyphs, "   "), "", 0, "L", false, 0, "")
}

func landCells(m island.WorldMap) int {
	n := 0
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.IsLand(island.Coord{X: x, Y: y}) {
				n++
			}
		}
	}
	return n
}
