package analyzer

import "testing"

// buildMask converts rows of '#' characters into an edge mask.
func buildMask(rows []string) ([]bool, int, int) {
	height := len(rows)
	width := len(rows[0])
	mask := make([]bool, width*height)
	for y, row := range rows {
		for x, ch := range row {
			if ch == '#' {
				mask[y*width+x] = true
			}
		}
	}
	return mask, width, height
}

func TestCountContours_Empty(t *testing.T) {
	mask, w, h := buildMask([]string{
		"....",
		"....",
	})
	if got := countContours(mask, w, h, 1); got != 0 {
		t.Errorf("Expected 0 contours, got %d", got)
	}
}

func TestCountContours_SeparateRegions(t *testing.T) {
	mask, w, h := buildMask([]string{
		"##....##",
		"##....##",
		"........",
		"...##...",
	})
	if got := countContours(mask, w, h, 1); got != 3 {
		t.Errorf("Expected 3 contours, got %d", got)
	}
}

func TestCountContours_DiagonalConnectivity(t *testing.T) {
	// Diagonally touching pixels belong to one 8-connected component.
	mask, w, h := buildMask([]string{
		"#...",
		".#..",
		"..#.",
		"...#",
	})
	if got := countContours(mask, w, h, 1); got != 1 {
		t.Errorf("Expected 1 contour for diagonal chain, got %d", got)
	}
}

func TestCountContours_MinAreaFilter(t *testing.T) {
	// One 3x3 block and one isolated pixel; the pixel is below minArea.
	mask, w, h := buildMask([]string{
		"###....",
		"###....",
		"###..#.",
	})
	if got := countContours(mask, w, h, 4); got != 1 {
		t.Errorf("Expected 1 contour above min area, got %d", got)
	}
	if got := countContours(mask, w, h, 1); got != 2 {
		t.Errorf("Expected 2 contours without area filter, got %d", got)
	}
}

func TestCountContours_ZeroDimensions(t *testing.T) {
	if got := countContours(nil, 0, 0, 1); got != 0 {
		t.Errorf("Expected 0 contours for empty mask, got %d", got)
	}
}
