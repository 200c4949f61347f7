package analyzer

// countContours counts connected edge regions whose bounding box covers at
// least minArea pixels. Regions are 8-connected components of the edge mask;
// the bounding-box area filter mirrors the defect detector's noise cutoff.
func countContours(mask []bool, width, height, minArea int) int {
	if width == 0 || height == 0 {
		return 0
	}
	if minArea < 1 {
		minArea = 1
	}

	visited := make([]bool, len(mask))
	var queue []int
	count := 0

	for i := range mask {
		if !mask[i] || visited[i] {
			continue
		}

		// Flood fill the component, tracking its bounding box.
		minX, minY := width, height
		maxX, maxY := 0, 0
		queue = append(queue[:0], i)
		visited[i] = true

		for len(queue) > 0 {
			idx := queue[len(queue)-1]
			queue = queue[:len(queue)-1]

			x, y := idx%width, idx/width
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					nIdx := ny*width + nx
					if mask[nIdx] && !visited[nIdx] {
						visited[nIdx] = true
						queue = append(queue, nIdx)
					}
				}
			}
		}

		boxArea := (maxX - minX + 1) * (maxY - minY + 1)
		if boxArea >= minArea {
			count++
		}
	}

	return count
}
