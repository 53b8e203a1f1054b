package imageprocessor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

type ImageSize struct {
	Name   string
	Width  int
	Height int
}

var (
	SizeThumbnail = ImageSize{Name: "thumbnail", Width: 300, Height: 300}
	SizeMedium    = ImageSize{Name: "medium", Width: 1024, Height: 1024}
)

// ListingVariants are produced for every listing photo.
var ListingVariants = []ImageSize{SizeThumbnail, SizeMedium}

// Variant is one encoded rendition of an uploaded image.
type Variant struct {
	Size        ImageSize
	Data        []byte
	Ext         string
	ContentType string
}

type Processor struct {
	quality int // JPEG quality (1-100)
}

func NewProcessor(quality int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Processor{quality: quality}
}

// ProcessImage decodes, resizes to fit size and encodes. Images already smaller
// than size are re-encoded without upscaling.
func (p *Processor) ProcessImage(reader io.Reader, size ImageSize) (*Variant, error) {
	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return p.encode(p.resize(img, size.Width, size.Height), format, size)
}

// Variants decodes once and renders every requested size.
func (p *Processor) Variants(data []byte, sizes ...ImageSize) ([]Variant, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	variants := make([]Variant, 0, len(sizes))
	for _, size := range sizes {
		v, err := p.encode(p.resize(img, size.Width, size.Height), format, size)
		if err != nil {
			return nil, err
		}
		variants = append(variants, *v)
	}
	return variants, nil
}

// encode keeps PNG (transparency), everything else becomes JPEG.
func (p *Processor) encode(img image.Image, srcFormat string, size ImageSize) (*Variant, error) {
	var buf bytes.Buffer
	if srcFormat == "png" {
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
		return &Variant{Size: size, Data: buf.Bytes(), Ext: ".png", ContentType: "image/png"}, nil
	}

	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return &Variant{Size: size, Data: buf.Bytes(), Ext: ".jpg", ContentType: "image/jpeg"}, nil
}

// resize fits the image into maxWidth x maxHeight keeping the aspect ratio.
func (p *Processor) resize(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxWidth && height <= maxHeight {
		return img
	}

	ratio := float64(width) / float64(height)
	newWidth := maxWidth
	newHeight := maxHeight

	if float64(maxWidth)/float64(maxHeight) > ratio {
		newWidth = int(float64(maxHeight) * ratio)
	} else {
		newHeight = int(float64(maxWidth) / ratio)
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func GetImageDimensions(reader io.Reader) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(reader)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// FormatExtensions maps decoder format names to stored file extensions.
var FormatExtensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

// DetectExtension returns the extension of the decoded image format.
func DetectExtension(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	ext, ok := FormatExtensions[format]
	if !ok {
		return "", fmt.Errorf("unsupported image format %q", format)
	}
	return ext, nil
}

func IsValidImage(data []byte) bool {
	_, _, err := image.DecodeConfig(bytes.NewReader(data))
	return err == nil
}

// Placeholder renders a flat JPEG, used when a fixture photo cannot be fetched.
func Placeholder(width, height int, c color.Color) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
