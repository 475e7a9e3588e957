package imagecodec

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	tgaTypeUncompressed = 2  // Uncompressed true-color
	tgaTypeRLE          = 10 // RLE compressed true-color
)

type tgaHeader struct {
	width, height int
	bytesPerPixel int
	imageType     byte
	topToBottom   bool
	offset        int
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	var h tgaHeader
	if len(data) < 18 {
		return h, errors.New("TGA data too short")
	}
	if data[1] != 0 {
		return h, errors.New("color-mapped TGA not supported")
	}
	h.imageType = data[2]
	if h.imageType != tgaTypeUncompressed && h.imageType != tgaTypeRLE {
		return h, fmt.Errorf("unsupported TGA type %d", h.imageType)
	}
	h.width = int(data[12]) | int(data[13])<<8
	h.height = int(data[14]) | int(data[15])<<8
	if h.width == 0 || h.height == 0 {
		return h, errors.New("TGA has no pixels")
	}
	bpp := int(data[16])
	if bpp != 24 && bpp != 32 {
		return h, fmt.Errorf("unsupported TGA bit depth %d", bpp)
	}
	h.bytesPerPixel = bpp / 8
	h.topToBottom = data[17]&0x20 != 0
	h.offset = 18 + int(data[0])
	if h.offset > len(data) {
		return h, errors.New("TGA data truncated")
	}
	return h, nil
}

// DecodeTGA decodes uncompressed (type 2) and RLE (type 10) true-color TGA
// images, the variants texture editors export.
func DecodeTGA(data []byte) (image.Image, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}
	pixels := data[h.offset:]
	img := image.NewNRGBA(image.Rect(0, 0, h.width, h.height))
	total := h.width * h.height

	set := func(n int, c color.NRGBA) {
		y := n / h.width
		if !h.topToBottom {
			y = h.height - 1 - y
		}
		img.SetNRGBA(n%h.width, y, c)
	}
	pixel := func(i int) color.NRGBA {
		c := color.NRGBA{B: pixels[i], G: pixels[i+1], R: pixels[i+2], A: 255}
		if h.bytesPerPixel == 4 {
			c.A = pixels[i+3]
		}
		return c
	}

	if h.imageType == tgaTypeUncompressed {
		if len(pixels) < total*h.bytesPerPixel {
			return nil, errors.New("TGA pixel data truncated")
		}
		for n := 0; n < total; n++ {
			set(n, pixel(n*h.bytesPerPixel))
		}
		return img, nil
	}

	n, i := 0, 0
	for n < total && i < len(pixels) {
		packet := pixels[i]
		i++
		count := int(packet&0x7F) + 1
		if packet&0x80 != 0 {
			if i+h.bytesPerPixel > len(pixels) {
				break
			}
			c := pixel(i)
			i += h.bytesPerPixel
			for ; count > 0 && n < total; count-- {
				set(n, c)
				n++
			}
			continue
		}
		for ; count > 0 && n < total; count-- {
			if i+h.bytesPerPixel > len(pixels) {
				break
			}
			set(n, pixel(i))
			i += h.bytesPerPixel
			n++
		}
	}
	return img, nil
}
