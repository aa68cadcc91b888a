package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
)

func tgaHeader(imageType byte, w, h int, bpp byte, descriptor byte) []byte {
	hdr := make([]byte, 18)
	hdr[2] = imageType
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = bpp
	hdr[17] = descriptor
	return hdr
}

func TestDecodeTGAUncompressed(t *testing.T) {
	// 2x1, bottom-up, BGR
	data := append(tgaHeader(TGATypeUncompressed, 2, 1, 24, 0),
		0, 0, 255, // red
		255, 0, 0, // blue
	)
	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("pixel 0 = %v", got)
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("pixel 1 = %v", got)
	}
}

func TestDecodeTGABottomUp(t *testing.T) {
	data := append(tgaHeader(TGATypeUncompressed, 1, 2, 32, 0),
		0, 255, 0, 128, // first row in file is the bottom row
		0, 0, 0, 255,
	)
	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(0, 1); got != (color.RGBA{0, 255, 0, 128}) {
		t.Errorf("bottom pixel = %v", got)
	}

	data[17] = 0x20
	img, err = DecodeTGA(data)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0, 255, 0, 128}) {
		t.Errorf("top-to-bottom first pixel = %v", got)
	}
}

func TestDecodeTGARLE(t *testing.T) {
	data := append(tgaHeader(TGATypeRLE, 4, 1, 24, 0x20),
		0x82, 10, 20, 30, // run of 3
		0x00, 1, 2, 3, // one raw pixel
	)
	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 3; x++ {
		if got := img.RGBAAt(x, 0); got != (color.RGBA{30, 20, 10, 255}) {
			t.Errorf("run pixel %d = %v", x, got)
		}
	}
	if got := img.RGBAAt(3, 0); got != (color.RGBA{3, 2, 1, 255}) {
		t.Errorf("raw pixel = %v", got)
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", []byte{0, 0, 2}, errTGATruncated},
		{"truncated pixels", append(tgaHeader(TGATypeUncompressed, 2, 2, 24, 0), 1, 2, 3), errTGATruncated},
		{"truncated rle", append(tgaHeader(TGATypeRLE, 2, 1, 24, 0), 0x81), errTGATruncated},
		{"color mapped", func() []byte { h := tgaHeader(1, 1, 1, 8, 0); h[1] = 1; return h }(), ErrUnsupported},
		{"16 bit", tgaHeader(TGATypeUncompressed, 1, 1, 16, 0), ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTGA(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func sample() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.Set(1, 1, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	return img
}

func TestDecodeSniffed(t *testing.T) {
	var pngBuf, bmpBuf bytes.Buffer
	if err := png.Encode(&pngBuf, sample()); err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(&bmpBuf, sample()); err != nil {
		t.Fatal(err)
	}

	for name, data := range map[string][]byte{"png": pngBuf.Bytes(), "bmp": bmpBuf.Bytes()} {
		img, err := Decode(data, "", "")
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got := img.RGBAAt(1, 1); got != (color.RGBA{200, 100, 50, 255}) {
			t.Errorf("%s pixel = %v", name, got)
		}
	}
}

func TestDecodeTGAByName(t *testing.T) {
	data := append(tgaHeader(TGATypeUncompressed, 1, 1, 24, 0), 1, 2, 3)
	for _, tc := range []struct{ mime, name string }{{"image/x-tga", ""}, {"", "skin.TGA"}} {
		if _, err := Decode(data, tc.mime, tc.name); err != nil {
			t.Errorf("Decode(%q, %q): %v", tc.mime, tc.name, err)
		}
	}
}

func TestDecodeUnknown(t *testing.T) {
	_, err := Decode([]byte("not an image"), "image/ktx2", "")
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestToRGBAOffset(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 7))
	src.SetRGBA(5, 5, color.RGBA{1, 2, 3, 4})
	out := ToRGBA(src)
	if out.Rect.Min != (image.Point{}) || out.RGBAAt(0, 0) != (color.RGBA{1, 2, 3, 4}) {
		t.Errorf("ToRGBA = %v at %v", out.RGBAAt(0, 0), out.Rect)
	}
	origin := image.NewRGBA(image.Rect(0, 0, 1, 1))
	if ToRGBA(origin) != origin {
		t.Error("RGBA at origin should be returned as is")
	}
}
