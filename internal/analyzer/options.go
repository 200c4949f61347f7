package analyzer

// Options configures feature extraction.
type Options struct {
	// EdgeThreshold is the Sobel gradient magnitude above which a pixel
	// counts as an edge, on the 0..255 grayscale.
	EdgeThreshold float64

	// Panel-blue hue band in degrees, with minimum saturation and value
	// so near-gray pixels are not counted as panel surface.
	BlueHueMin    float64
	BlueHueMax    float64
	MinSaturation float64
	MinValue      float64

	// MinContourAreaRatio is the minimum bounding-box area of an edge
	// region, as a fraction of the image area, for it to count as a
	// structure. Smaller regions are treated as noise.
	MinContourAreaRatio float64

	// MaxSide downscales larger inputs before analysis so thresholds
	// stay stable across resolutions. Zero disables downscaling.
	MaxSide int

	// MaxWorkers bounds the parallel row strips. Zero means NumCPU.
	MaxWorkers int
}

// DefaultOptions returns extraction defaults tuned for construction-site
// photos. The blue band matches the panel surface detection of the
// monitoring pipeline (hue 200-260 degrees).
func DefaultOptions() Options {
	return Options{
		EdgeThreshold:       128.0,
		BlueHueMin:          200.0,
		BlueHueMax:          260.0,
		MinSaturation:       0.2,
		MinValue:            0.2,
		MinContourAreaRatio: 0.001,
		MaxSide:             1024,
		MaxWorkers:          0,
	}
}
