package imagecmp

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Mode is the channel layout an image is compared in.
type Mode int

const (
	ModeL Mode = iota + 1
	ModeLA
	ModeRGB
	ModeRGBA
)

var modeNames = map[Mode]string{
	ModeL:    "L",
	ModeLA:   "LA",
	ModeRGB:  "RGB",
	ModeRGBA: "RGBA",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "RGBA"
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	for mode, name := range modeNames {
		if name == string(text) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("unknown image mode %q", text)
}

// Channels is the number of 8-bit channels per pixel.
func (m Mode) Channels() int {
	switch m {
	case ModeL:
		return 1
	case ModeLA:
		return 2
	case ModeRGB:
		return 3
	default:
		return 4
	}
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// PNG IHDR color types.
const (
	pngGray      = 0
	pngTrueColor = 2
	pngPaletted  = 3
	pngGrayAlpha = 4
	pngRGBA      = 6
)

// DetectMode returns the mode the image was stored in. For PNG the header
// is authoritative, because the decoder returns opaque RGB files as RGBA.
// Other formats fall back to the decoded color model.
func DetectMode(data []byte, img image.Image) Mode {
	if len(data) >= 26 && bytes.HasPrefix(data, pngSignature) && string(data[12:16]) == "IHDR" {
		switch data[25] {
		case pngGray:
			return ModeL
		case pngTrueColor:
			return ModeRGB
		case pngGrayAlpha:
			return ModeLA
		case pngRGBA:
			return ModeRGBA
		case pngPaletted:
			return paletteMode(img)
		}
	}
	return modelMode(img)
}

func modelMode(img image.Image) Mode {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return ModeL
	case color.YCbCrModel, color.CMYKModel:
		return ModeRGB
	}
	if _, ok := img.(*image.Paletted); ok {
		return paletteMode(img)
	}
	return ModeRGBA
}

func paletteMode(img image.Image) Mode {
	p, ok := img.(*image.Paletted)
	if !ok {
		return ModeRGBA
	}
	for _, c := range p.Palette {
		if _, _, _, a := c.RGBA(); a != 0xffff {
			return ModeRGBA
		}
	}
	return ModeRGB
}

// toMode converts img to an image holding exactly the channels of mode:
// *image.Gray for L, *image.NRGBA otherwise (gray replicated for LA, alpha
// forced opaque for RGB).
func toMode(img image.Image, mode Mode) image.Image {
	b := img.Bounds()
	if mode == ModeL {
		dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				dst.SetGray(x, y, color.Gray{Y: luminance(img.At(b.Min.X+x, b.Min.Y+y))})
			}
		}
		return dst
	}

	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			n := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			switch mode {
			case ModeLA:
				l := luminance(n)
				n.R, n.G, n.B = l, l, l
			case ModeRGB:
				n.A = 0xff
			}
			dst.SetNRGBA(x, y, n)
		}
	}
	return dst
}

// resize scales img to size with a Catmull-Rom kernel, keeping its type.
func resize(img image.Image, size image.Point) image.Image {
	r := image.Rect(0, 0, size.X, size.Y)
	var dst draw.Image
	if _, ok := img.(*image.Gray); ok {
		dst = image.NewGray(r)
	} else {
		dst = image.NewNRGBA(r)
	}
	draw.CatmullRom.Scale(dst, r, img, img.Bounds(), draw.Src, nil)
	return dst
}
