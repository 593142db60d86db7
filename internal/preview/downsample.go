package preview

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample shrinks img to width pixels wide, keeping the aspect ratio.
// Filtering runs on premultiplied alpha so transparent edges do not pick
// up dark halos.
func Downsample(img *image.NRGBA, width int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= width {
		return img
	}
	height := max(1, b.Dy()*width/b.Dx())

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premultiplied(img), b, draw.Src, nil)
	return straight(dst)
}

// premultiplied copies img with each colour channel scaled by its alpha.
func premultiplied(img *image.NRGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		src := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X-1, y)+4]
		dst := out.Pix[out.PixOffset(b.Min.X, y):out.PixOffset(b.Max.X-1, y)+4]
		for i := 0; i < len(src); i += 4 {
			a := uint32(src[i+3])
			dst[i] = uint8((uint32(src[i])*a + 127) / 255)
			dst[i+1] = uint8((uint32(src[i+1])*a + 127) / 255)
			dst[i+2] = uint8((uint32(src[i+2])*a + 127) / 255)
			dst[i+3] = src[i+3]
		}
	}
	return out
}

// straight undoes premultiplied. Pixels with alpha at or below one stay black.
func straight(img *image.RGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	for i := 0; i < len(img.Pix); i += 4 {
		a := uint32(img.Pix[i+3])
		out.Pix[i+3] = img.Pix[i+3]
		if a <= 1 {
			continue
		}
		for c := 0; c < 3; c++ {
			out.Pix[i+c] = uint8(min(255, (uint32(img.Pix[i+c])*255+a/2)/a))
		}
	}
	return out
}
