package harvest

import "github.com/vovakirdan/harvest/internal/config"

// Scarecrow positions. Every level has the base pair; a level's
// extra_scarecrows count enables the extras in order.
var (
	baseScarecrows = [][2]float64{
		{200, 220},
		{650, 160},
	}
	extraScarecrows = [config.MaxExtraScarecrows][2]float64{
		{420, 380},
		{110, 400},
		{760, 400},
	}
)

// obstacleLayout returns the scarecrows for a level with the given extra count.
// Counts outside 0..MaxExtraScarecrows are clamped.
func obstacleLayout(extra int) []Obstacle {
	extra = max(0, min(extra, len(extraScarecrows)))

	obstacles := make([]Obstacle, 0, len(baseScarecrows)+extra)
	for _, p := range baseScarecrows {
		obstacles = append(obstacles, newObstacle(p[0], p[1]))
	}
	for _, p := range extraScarecrows[:extra] {
		obstacles = append(obstacles, newObstacle(p[0], p[1]))
	}
	return obstacles
}
