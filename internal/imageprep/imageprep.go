// Package imageprep converts images to the content type declared for the upload and
// optionally shrinks them.
package imageprep

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"decalup/internal/models"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 90

// Options controls preparation. The zero value leaves images untouched.
type Options struct {
	ContentType  string
	Convert      bool
	MaxDimension int
}

// Enabled reports whether Prepare would do anything.
func (o Options) Enabled() bool {
	return o.Convert || o.MaxDimension > 0
}

// Prepare returns data unchanged when it already matches the options. Otherwise the image is
// decoded, scaled so neither side exceeds MaxDimension, and encoded as ContentType.
func Prepare(data []byte, opts Options) ([]byte, error) {
	if !opts.Enabled() {
		return data, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := fitDimensions(bounds.Dx(), bounds.Dy(), opts.MaxDimension)
	resize := width != bounds.Dx() || height != bounds.Dy()
	convert := opts.Convert && formatContentType(format) != opts.ContentType

	if !resize && !convert {
		return data, nil
	}

	if resize {
		resized := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
	}

	target := opts.ContentType
	if !opts.Convert {
		target = formatContentType(format)
	}

	var buf bytes.Buffer
	switch target {
	case models.ContentTypeJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	log.Debug().
		Str("format", format).
		Str("target", target).
		Int("orig_width", bounds.Dx()).
		Int("orig_height", bounds.Dy()).
		Int("new_width", width).
		Int("new_height", height).
		Int("output_size", buf.Len()).
		Msg("Image prepared")

	return buf.Bytes(), nil
}

func formatContentType(format string) string {
	switch format {
	case "jpeg":
		return models.ContentTypeJPEG
	case "png":
		return models.ContentTypePNG
	default:
		return "image/" + format
	}
}

// fitDimensions keeps the aspect ratio; images already within bounds are left alone.
func fitDimensions(width, height, maxDimension int) (int, int) {
	if maxDimension <= 0 || (width <= maxDimension && height <= maxDimension) {
		return width, height
	}
	if width >= height {
		h := height * maxDimension / width
		if h < 1 {
			h = 1
		}
		return maxDimension, h
	}
	w := width * maxDimension / height
	if w < 1 {
		w = 1
	}
	return w, maxDimension
}
