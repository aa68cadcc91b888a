package texture

import (
	"errors"
	"fmt"
	"image"
)

// TGA image types.
const (
	TGATypeUncompressed = 2
	TGATypeRLE          = 10
)

var errTGATruncated = errors.New("tga: data truncated")

// DecodeTGA decodes an uncompressed or RLE true-color TGA image with 24 or 32
// bits per pixel.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < 18 {
		return nil, errTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := int(data[2])
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped tga", ErrUnsupported)
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("%w: tga type %d", ErrUnsupported, imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("%w: tga depth %d", ErrUnsupported, bpp)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}

	d := &tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		src:         data[offset:],
		bytesPP:     bpp / 8,
		topToBottom: topToBottom,
	}
	if imageType == TGATypeUncompressed {
		if len(d.src) < width*height*d.bytesPP {
			return nil, errTGATruncated
		}
		for i := 0; i < width*height; i++ {
			d.put(i, d.pixel())
		}
		return d.img, nil
	}

	if err := d.rle(); err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img         *image.RGBA
	src         []byte
	pos         int
	bytesPP     int
	topToBottom bool
}

// pixel reads one BGR(A) pixel and returns it as RGBA.
func (d *tgaDecoder) pixel() [4]byte {
	p := d.src[d.pos:]
	px := [4]byte{p[2], p[1], p[0], 255}
	if d.bytesPP == 4 {
		px[3] = p[3]
	}
	d.pos += d.bytesPP
	return px
}

// put stores px at linear index i in file order.
func (d *tgaDecoder) put(i int, px [4]byte) {
	w, h := d.img.Rect.Dx(), d.img.Rect.Dy()
	x, y := i%w, i/w
	if !d.topToBottom {
		y = h - 1 - y
	}
	o := d.img.PixOffset(x, y)
	copy(d.img.Pix[o:o+4], px[:])
}

func (d *tgaDecoder) rle() error {
	total := d.img.Rect.Dx() * d.img.Rect.Dy()
	for i := 0; i < total; {
		if d.pos >= len(d.src) {
			return errTGATruncated
		}
		header := d.src[d.pos]
		d.pos++
		count := int(header&0x7f) + 1

		if header&0x80 != 0 {
			if d.pos+d.bytesPP > len(d.src) {
				return errTGATruncated
			}
			px := d.pixel()
			for ; count > 0 && i < total; count-- {
				d.put(i, px)
				i++
			}
			continue
		}

		for ; count > 0 && i < total; count-- {
			if d.pos+d.bytesPP > len(d.src) {
				return errTGATruncated
			}
			d.put(i, d.pixel())
			i++
		}
	}
	return nil
}
