// Package imagecodec decodes texture images and encodes them as PNG.
package imagecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// Formats the codec reads.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpg"
	FormatGIF  = "gif"
	FormatBMP  = "bmp"
	FormatWebP = "webp"
	FormatTGA  = "tga"
)

// ErrUnknownFormat is returned for bytes that match no supported format.
var ErrUnknownFormat = errors.New("unknown image format")

// Sniff returns the format of data. TGA has no signature and is reported
// only when the header parses.
func Sniff(data []byte) (string, error) {
	kind, _ := filetype.Match(data)
	switch kind.Extension {
	case FormatPNG, FormatJPEG, FormatGIF, FormatBMP, FormatWebP:
		return kind.Extension, nil
	}
	if _, err := parseTGAHeader(data); err == nil {
		return FormatTGA, nil
	}
	if kind != filetype.Unknown {
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, kind.MIME.Value)
	}
	return "", ErrUnknownFormat
}

// Decode decodes any supported format.
func Decode(data []byte) (image.Image, error) {
	format, err := Sniff(data)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(data)
	switch format {
	case FormatPNG:
		return png.Decode(r)
	case FormatJPEG:
		return jpeg.Decode(r)
	case FormatGIF:
		return gif.Decode(r)
	case FormatBMP:
		return bmp.Decode(r)
	case FormatWebP:
		return webp.Decode(r)
	default:
		return DecodeTGA(data)
	}
}

// Encode writes img as PNG.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// ToPNG converts data of any supported format to PNG. PNG input is returned
// unchanged.
func ToPNG(data []byte) ([]byte, error) {
	format, err := Sniff(data)
	if err != nil {
		return nil, err
	}
	if format == FormatPNG {
		return data, nil
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}
	return Encode(img)
}

// Size returns the pixel dimensions of data without keeping the pixels.
func Size(data []byte) (int, int, error) {
	format, err := Sniff(data)
	if err != nil {
		return 0, 0, err
	}
	r := bytes.NewReader(data)
	var cfg image.Config
	switch format {
	case FormatPNG:
		cfg, err = png.DecodeConfig(r)
	case FormatJPEG:
		cfg, err = jpeg.DecodeConfig(r)
	case FormatGIF:
		cfg, err = gif.DecodeConfig(r)
	case FormatBMP:
		cfg, err = bmp.DecodeConfig(r)
	case FormatWebP:
		cfg, err = webp.DecodeConfig(r)
	default:
		var h tgaHeader
		h, err = parseTGAHeader(data)
		cfg.Width, cfg.Height = h.width, h.height
	}
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// DataURL returns data as a base64 PNG data URL.
func DataURL(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

// Codec is the codec.ImageCodec backed by this package.
type Codec struct{}

// Decode implements codec.ImageCodec.
func (Codec) Decode(data []byte) (image.Image, error) { return Decode(data) }

// Encode implements codec.ImageCodec.
func (Codec) Encode(img image.Image) ([]byte, error) { return Encode(img) }
