// Package imagecmp is the pixel-level regression check for rendered views.
//
// The candidate is converted to the reference's color mode and resized to
// the reference's dimensions; the reference is authoritative for both. The
// metric is sumSq/sqrt(sumSq) over every pixel and channel, which is
// sqrt(sumSq): it is not normalized by pixel count or channel depth, so its
// scale depends on the image resolution. Existing reference images were
// accepted under this metric and the formula is kept as is.
package imagecmp

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"math"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder

	ferrors "github.com/AndreyAkinshin/fieldcheck/internal/errors"
	"github.com/AndreyAkinshin/fieldcheck/internal/geometry"
	"github.com/AndreyAkinshin/fieldcheck/internal/tolerance"
)

// Picture is a decoded image with the color mode its file was stored in.
type Picture struct {
	Path  string
	Image image.Image
	Mode  Mode
}

// Load decodes the image at path and detects its color mode.
func Load(path string) (*Picture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ferrors.Wrap(err, fmt.Sprintf("decode %s: %v", path, err))
	}
	return &Picture{Path: path, Image: img, Mode: DetectMode(data, img)}, nil
}

// Result is the outcome of one image comparison.
type Result struct {
	Reference string  `json:"reference" yaml:"reference"`
	Candidate string  `json:"candidate" yaml:"candidate"`
	Mode      Mode    `json:"mode" yaml:"mode"`
	Width     int     `json:"width" yaml:"width"`
	Height    int     `json:"height" yaml:"height"`
	Resized   bool    `json:"resized" yaml:"resized"`
	SumSqDiff float64 `json:"sum_sq_diff" yaml:"sum_sq_diff"`
	Metric    float64 `json:"metric" yaml:"metric"`
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
	Passed    bool    `json:"passed" yaml:"passed"`
}

// Err returns an assertion error when the comparison failed.
func (r *Result) Err() error {
	if r.Passed {
		return nil
	}
	return ferrors.Assertionf("%s: %v > %v", filepath.Base(r.Reference), r.Metric, r.Tolerance)
}

// CompareFiles loads both images and compares them with the image tolerance
// of the geometry family.
func CompareFiles(refPath, candPath string, geom geometry.Family) (*Result, error) {
	tol, err := tolerance.Get(tolerance.Image, geom)
	if err != nil {
		return nil, err
	}
	ref, err := Load(refPath)
	if err != nil {
		return nil, err
	}
	cand, err := Load(candPath)
	if err != nil {
		return nil, err
	}
	return CompareWithTolerance(ref, cand, tol), nil
}

// Compare compares two loaded pictures with the image tolerance of the
// geometry family.
func Compare(ref, cand *Picture, geom geometry.Family) (*Result, error) {
	tol, err := tolerance.Get(tolerance.Image, geom)
	if err != nil {
		return nil, err
	}
	return CompareWithTolerance(ref, cand, tol), nil
}

// CompareWithTolerance compares two pictures against an explicit threshold.
// Identical images always pass.
func CompareWithTolerance(ref, cand *Picture, tol float64) *Result {
	size := ref.Image.Bounds().Size()
	refPix := toMode(ref.Image, ref.Mode)
	candPix := toMode(cand.Image, ref.Mode)

	resized := cand.Image.Bounds().Size() != size
	if resized {
		candPix = resize(candPix, size)
	}

	sum := SumSqDiff(refPix, candPix, ref.Mode)
	res := &Result{
		Reference: ref.Path,
		Candidate: cand.Path,
		Mode:      ref.Mode,
		Width:     size.X,
		Height:    size.Y,
		Resized:   resized,
		SumSqDiff: sum,
		Tolerance: tol,
	}
	if sum == 0 {
		res.Passed = true
		return res
	}
	res.Metric = Metric(sum)
	res.Passed = res.Metric < tol
	return res
}

// Metric is sumSq/sqrt(sumSq) for a non-zero sum of squared differences.
func Metric(sumSq float64) float64 {
	if sumSq == 0 {
		return 0
	}
	return sumSq / math.Sqrt(sumSq)
}

// SumSqDiff sums the squared per-channel differences of two images of the
// same size, both already in mode.
func SumSqDiff(a, b image.Image, mode Mode) float64 {
	ab := a.Bounds()
	bb := b.Bounds()
	var sum float64
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			ca := channels(a.At(ab.Min.X+x, ab.Min.Y+y), mode)
			cb := channels(b.At(bb.Min.X+x, bb.Min.Y+y), mode)
			for i := 0; i < mode.Channels(); i++ {
				d := float64(ca[i]) - float64(cb[i])
				sum += d * d
			}
		}
	}
	return sum
}

// luminance is the gray level of c's color channels. Alpha is dropped
// without premultiplying, so translucent pixels keep their brightness.
func luminance(c color.Color) uint8 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 0xff
	return color.GrayModel.Convert(n).(color.Gray).Y
}

// channels returns the 8-bit channel values of c in mode.
func channels(c color.Color, mode Mode) [4]uint8 {
	switch mode {
	case ModeL:
		return [4]uint8{luminance(c)}
	case ModeLA:
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		return [4]uint8{luminance(n), n.A}
	case ModeRGB:
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		return [4]uint8{n.R, n.G, n.B}
	default:
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		return [4]uint8{n.R, n.G, n.B, n.A}
	}
}
