package analyzer

import (
	"image"
	"image/draw"
	"math"
	"runtime"
	"sync"

	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/stat"

	apperrors "go-solar-inspector/internal/errors"
	"go-solar-inspector/pkg/models"
)

// FeatureExtractor computes the numeric summary of a site image used for
// stage classification.
type FeatureExtractor interface {
	Extract(img image.Image) (models.FeatureVector, error)
}

// featureExtractor implements FeatureExtractor with parallel row-strip
// processing and pooled scratch buffers.
type featureExtractor struct {
	opts      Options
	slicePool sync.Pool
}

// NewFeatureExtractor creates an extractor with default options.
func NewFeatureExtractor() FeatureExtractor {
	return NewFeatureExtractorWithOptions(DefaultOptions())
}

// NewFeatureExtractorWithOptions creates an extractor with custom options.
func NewFeatureExtractorWithOptions(opts Options) FeatureExtractor {
	return &featureExtractor{
		opts: opts,
		slicePool: sync.Pool{
			New: func() interface{} {
				return make([]float64, 0, 1024)
			},
		},
	}
}

// Extract computes the feature vector for a decoded image. It fails with an
// invalid_image error when the input is nil or has a zero dimension. The
// returned vector is a value: immutable once computed.
func (fe *featureExtractor) Extract(img image.Image) (models.FeatureVector, error) {
	if img == nil {
		return models.FeatureVector{}, apperrors.NewInvalidImageError("image is nil", nil)
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return models.FeatureVector{}, apperrors.NewInvalidImageError("image has zero dimension", nil)
	}

	// Downscale large inputs so density thresholds stay comparable
	// across resolutions.
	if fe.opts.MaxSide > 0 && (bounds.Dx() > fe.opts.MaxSide || bounds.Dy() > fe.opts.MaxSide) {
		img = resize.Thumbnail(uint(fe.opts.MaxSide), uint(fe.opts.MaxSide), img, resize.Lanczos3)
		bounds = img.Bounds()
	}

	width, height := bounds.Dx(), bounds.Dy()

	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)

	blueRatio := fe.calculateBlueRatio(img)
	brightness, contrast := fe.calculateBrightnessContrast(gray)

	edges, edgeCount := fe.detectEdges(gray)
	edgeDensity := float64(edgeCount) / float64(width*height)

	minArea := int(fe.opts.MinContourAreaRatio * float64(width*height))
	contours := countContours(edges, width, height, minArea)

	sharpness := fe.calculateLaplacianVariance(gray)

	return models.FeatureVector{
		EdgeDensity:  edgeDensity,
		BlueRatio:    blueRatio,
		ContourCount: contours,
		Brightness:   brightness,
		Contrast:     contrast,
		Sharpness:    sharpness,
		Width:        width,
		Height:       height,
	}, nil
}

func (fe *featureExtractor) numWorkers(height int) int {
	workers := fe.opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if height < workers {
		workers = height
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// calculateBlueRatio computes the fraction of pixels in the panel-blue hue
// band, processing the image in horizontal strips.
func (fe *featureExtractor) calculateBlueRatio(img image.Image) float64 {
	bounds := img.Bounds()
	height := bounds.Dy()

	numWorkers := fe.numWorkers(height)
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	results := make(chan int, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		startY := bounds.Min.Y + i*rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > bounds.Max.Y {
			endY = bounds.Max.Y
		}
		go func(startY, endY int) {
			defer wg.Done()

			count := 0
			for y := startY; y < endY; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					rVal, gVal, bVal, _ := img.At(x, y).RGBA()
					rf := float64(rVal) / 65535.0
					gf := float64(gVal) / 65535.0
					bf := float64(bVal) / 65535.0

					h, s, v := rgbToHSV(rf, gf, bf)
					if h >= fe.opts.BlueHueMin && h <= fe.opts.BlueHueMax &&
						s >= fe.opts.MinSaturation && v >= fe.opts.MinValue {
						count++
					}
				}
			}
			results <- count
		}(startY, endY)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	total := 0
	for count := range results {
		total += count
	}

	return float64(total) / float64(bounds.Dx()*bounds.Dy())
}

// calculateBrightnessContrast computes the mean and standard deviation of
// the grayscale image on the 0..255 scale.
func (fe *featureExtractor) calculateBrightnessContrast(gray *image.Gray) (float64, float64) {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	totalPixels := float64(width * height)

	var sum, sumSq float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := float64(gray.GrayAt(x, y).Y)
			sum += v
			sumSq += v * v
		}
	}

	mean := sum / totalPixels
	variance := sumSq/totalPixels - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// detectEdges builds a binary edge mask using the Sobel operator and
// returns it together with the number of edge pixels. The one-pixel border
// is left unset.
func (fe *featureExtractor) detectEdges(gray *image.Gray) ([]bool, int) {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	mask := make([]bool, width*height)
	if width < 3 || height < 3 {
		return mask, 0
	}

	numWorkers := fe.numWorkers(height - 2)
	rowsPerWorker := (height - 2 + numWorkers - 1) / numWorkers

	counts := make(chan int, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		startY := 1 + i*rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > height-1 {
			endY = height - 1
		}
		go func(startY, endY int) {
			defer wg.Done()

			count := 0
			for y := startY; y < endY; y++ {
				for x := 1; x < width-1; x++ {
					gx := sobelX(gray, bounds.Min.X+x, bounds.Min.Y+y)
					gy := sobelY(gray, bounds.Min.X+x, bounds.Min.Y+y)
					magnitude := math.Sqrt(float64(gx*gx + gy*gy))
					if magnitude > fe.opts.EdgeThreshold {
						mask[y*width+x] = true
						count++
					}
				}
			}
			counts <- count
		}(startY, endY)
	}

	go func() {
		wg.Wait()
		close(counts)
	}()

	total := 0
	for c := range counts {
		total += c
	}
	return mask, total
}

// calculateLaplacianVariance measures sharpness as the variance of the
// Laplacian response over the grayscale image.
func (fe *featureExtractor) calculateLaplacianVariance(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	data := fe.slicePool.Get().([]float64)
	defer fe.slicePool.Put(data[:0]) //nolint:staticcheck

	if cap(data) < (width-2)*(height-2) {
		data = make([]float64, 0, (width-2)*(height-2))
	}
	data = data[:0]

	// Laplacian kernel: [0, 1, 0; 1, -4, 1; 0, 1, 0]
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			center := float64(gray.GrayAt(x, y).Y)
			top := float64(gray.GrayAt(x, y-1).Y)
			bottom := float64(gray.GrayAt(x, y+1).Y)
			left := float64(gray.GrayAt(x-1, y).Y)
			right := float64(gray.GrayAt(x+1, y).Y)

			data = append(data, -4*center+top+bottom+left+right)
		}
	}

	if len(data) == 0 {
		return 0
	}
	return stat.Variance(data, nil)
}

func sobelX(gray *image.Gray, x, y int) int {
	return -1*int(gray.GrayAt(x-1, y-1).Y) + 1*int(gray.GrayAt(x+1, y-1).Y) +
		-2*int(gray.GrayAt(x-1, y).Y) + 2*int(gray.GrayAt(x+1, y).Y) +
		-1*int(gray.GrayAt(x-1, y+1).Y) + 1*int(gray.GrayAt(x+1, y+1).Y)
}

func sobelY(gray *image.Gray, x, y int) int {
	return -1*int(gray.GrayAt(x-1, y-1).Y) - 2*int(gray.GrayAt(x, y-1).Y) - 1*int(gray.GrayAt(x+1, y-1).Y) +
		1*int(gray.GrayAt(x-1, y+1).Y) + 2*int(gray.GrayAt(x, y+1).Y) + 1*int(gray.GrayAt(x+1, y+1).Y)
}

// rgbToHSV converts normalized RGB to HSV with hue in degrees.
func rgbToHSV(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	v = max

	if max == 0 {
		s = 0
	} else {
		s = delta / max
	}

	if delta == 0 {
		h = 0
	} else if max == r {
		h = 60 * (((g - b) / delta) + 0)
	} else if max == g {
		h = 60 * (((b - r) / delta) + 2)
	} else {
		h = 60 * (((r - g) / delta) + 4)
	}

	if h < 0 {
		h += 360
	}

	return h, s, v
}
