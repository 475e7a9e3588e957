package imagecodec

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// tgaBytes builds an uncompressed 32-bit bottom-up TGA.
func tgaBytes(img *image.NRGBA) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]byte, 18, 18+w*h*4)
	data[2] = tgaTypeUncompressed
	data[12], data[13] = byte(w), byte(w>>8)
	data[14], data[15] = byte(h), byte(h>>8)
	data[16] = 32
	for y := h - 1; y >= 0; y-- {
		for x := 0; x < w; x++ {
			c := img.NRGBAAt(x, y)
			data = append(data, c.B, c.G, c.R, c.A)
		}
	}
	return data
}

func TestSniff(t *testing.T) {
	img := testImage(4, 2)
	var bmpBuf bytes.Buffer
	if err := bmp.Encode(&bmpBuf, img); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr bool
	}{
		{"png", pngBytes(t, img), FormatPNG, false},
		{"bmp", bmpBuf.Bytes(), FormatBMP, false},
		{"tga", tgaBytes(img), FormatTGA, false},
		{"garbage", []byte("hello world, not an image"), "", true},
		{"empty", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sniff(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Sniff() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Sniff() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeTGA(t *testing.T) {
	src := testImage(3, 2)
	img, err := DecodeTGA(tgaBytes(src))
	if err != nil {
		t.Fatalf("DecodeTGA() failed: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("bounds = %v, want 3x2", img.Bounds())
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			got := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if want := src.NRGBAAt(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestDecodeTGARLE(t *testing.T) {
	// 2x1 image, top-to-bottom, one RLE packet of two red pixels.
	data := []byte{
		0, 0, tgaTypeRLE, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		2, 0, 1, 0, 24, 0x20,
		0x81, 0, 0, 255,
	}
	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA() failed: %v", err)
	}
	for x := 0; x < 2; x++ {
		r, g, b, a := img.At(x, 0).RGBA()
		if r>>8 != 255 || g != 0 || b != 0 || a>>8 != 255 {
			t.Errorf("pixel %d = %d,%d,%d,%d, want opaque red", x, r>>8, g>>8, b>>8, a>>8)
		}
	}
}

func TestToPNG(t *testing.T) {
	img := testImage(2, 2)
	p := pngBytes(t, img)
	out, err := ToPNG(p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, p) {
		t.Error("PNG input should be returned unchanged")
	}

	out, err = ToPNG(tgaBytes(img))
	if err != nil {
		t.Fatalf("ToPNG(tga) failed: %v", err)
	}
	if f, _ := Sniff(out); f != FormatPNG {
		t.Errorf("ToPNG(tga) produced %q", f)
	}
	w, h, err := Size(out)
	if err != nil || w != 2 || h != 2 {
		t.Errorf("Size() = %d, %d, %v; want 2, 2", w, h, err)
	}
}

func TestDataURL(t *testing.T) {
	p := pngBytes(t, testImage(1, 1))
	url := DataURL(p)
	header, payload, ok := strings.Cut(url, ",")
	if !ok || header != "data:image/png;base64" {
		t.Fatalf("DataURL() header = %q", header)
	}
	got, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	if !bytes.Equal(got, p) {
		t.Error("data url did not round-trip")
	}
}
