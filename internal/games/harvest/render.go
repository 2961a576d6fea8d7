package harvest

import (
	"math"

	"github.com/vovakirdan/harvest/internal/core"
)

// Surface is the one-way drawing sink the simulation renders into.
// Coordinates are world units; the surface maps them to its own resolution.
type Surface interface {
	Size() (w, h int)
	Clear()
	Fill(r core.RectF, glyph rune, c core.Color)
	Text(x, y float64, text string, c core.Color)
}

// Draw draws the farmer.
func (f *Farmer) Draw(s Surface) {
	c := core.ColorBrightGreen
	if f.Boosted {
		c = core.ColorBrightYellow
	}
	s.Fill(f.Bounds(), '█', c)
	s.Text(f.X, f.Y, string(facingGlyph(f.Facing)), core.ColorWhite)
}

// Draw draws the competitor.
func (c *Competitor) Draw(s Surface) {
	s.Fill(c.Bounds(), '▓', core.ColorBrightBlue)
	s.Text(c.X, c.Y, string(facingGlyph(c.Facing)), core.ColorRed)
}

// Draw draws the crop, alternating glyphs with its sway phase.
func (c *Crop) Draw(s Surface) {
	style, ok := cropStyles[c.Kind]
	if !ok {
		style = cropStyle{glyphs: [2]rune{'*', '*'}, color: core.ColorGreen}
	}
	glyph := style.glyphs[0]
	if math.Sin(c.Sway) < 0 {
		glyph = style.glyphs[1]
	}
	s.Fill(c.Bounds(), glyph, style.color)
}

// Draw draws the power-up.
func (p *PowerUp) Draw(s Surface) {
	s.Fill(p.Bounds(), '»', core.ColorCyan)
}

// Draw draws the scarecrow.
func (o *Obstacle) Draw(s Surface) {
	s.Fill(o.Bounds(), '#', core.ColorBrown)
}

type cropStyle struct {
	glyphs [2]rune
	color  core.Color
}

var cropStyles = map[string]cropStyle{
	"wheat":        {glyphs: [2]rune{'/', '\\'}, color: core.ColorYellow},
	"pumpkin":      {glyphs: [2]rune{'o', 'O'}, color: core.ColorOrange},
	"golden_apple": {glyphs: [2]rune{'@', '@'}, color: core.ColorGold},
}

func facingGlyph(d Direction) rune {
	switch d {
	case DirUp:
		return '^'
	case DirLeft:
		return '<'
	case DirRight:
		return '>'
	default:
		return 'v'
	}
}

// Draw renders the whole field: obstacles, crops, power-ups, then both farmers.
func (s *Session) Draw(surface Surface) {
	for i := range s.obstacles {
		s.obstacles[i].Draw(surface)
	}
	s.crops.each(func(_ CropHandle, c *Crop) {
		c.Draw(surface)
	})
	for i := range s.powerUps {
		s.powerUps[i].Draw(surface)
	}
	s.competitor.Draw(surface)
	s.player.Draw(surface)
}

// ScreenSurface draws onto a region of a core.Screen, scaling world units to cells.
type ScreenSurface struct {
	screen *core.Screen
	area   core.Rect
}

// NewScreenSurface creates a surface covering area of screen.
func NewScreenSurface(screen *core.Screen, area core.Rect) *ScreenSurface {
	return &ScreenSurface{screen: screen, area: area}
}

// SetArea moves or resizes the drawing region, e.g. after a terminal resize.
func (s *ScreenSurface) SetArea(area core.Rect) {
	s.area = area
}

// Size returns the region size in cells.
func (s *ScreenSurface) Size() (int, int) {
	return s.area.W, s.area.H
}

// Clear blanks the region.
func (s *ScreenSurface) Clear() {
	s.screen.DrawRect(s.area, ' ', core.ColorDefault)
}

// Fill fills the cells covered by a world rectangle. Anything inside the region
// covers at least one cell.
func (s *ScreenSurface) Fill(r core.RectF, glyph rune, c core.Color) {
	cell := s.toCells(r)
	s.screen.DrawRect(cell, glyph, c)
}

// Text writes text starting at a world position, clipped to the region.
func (s *ScreenSurface) Text(x, y float64, text string, c core.Color) {
	cx, cy := s.toCell(x, y)
	col := 0
	for _, ch := range text {
		if cx+col >= s.area.Right() {
			break
		}
		s.screen.SetWithColor(cx+col, cy, ch, c)
		col++
	}
}

func (s *ScreenSurface) toCell(x, y float64) (int, int) {
	if s.area.W <= 0 || s.area.H <= 0 {
		return s.area.X, s.area.Y
	}
	cx := int(x * float64(s.area.W) / FieldW)
	cy := int(y * float64(s.area.H) / FieldH)
	cx = core.Clamp(cx, 0, s.area.W-1)
	cy = core.Clamp(cy, 0, s.area.H-1)
	return s.area.X + cx, s.area.Y + cy
}

func (s *ScreenSurface) toCells(r core.RectF) core.Rect {
	x0, y0 := s.toCell(r.X, r.Y)
	x1 := s.area.X + core.Clamp(int(math.Ceil(r.Right()*float64(s.area.W)/FieldW)), 0, s.area.W)
	y1 := s.area.Y + core.Clamp(int(math.Ceil(r.Bottom()*float64(s.area.H)/FieldH)), 0, s.area.H)
	w := max(x1-x0, 1)
	h := max(y1-y0, 1)
	return core.NewRect(x0, y0, w, h)
}
