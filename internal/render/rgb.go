// SPDX-License-Identifier: MIT

package render

import "image"

// RGB24 packs an image into the tight row-major RGB byte plane that ffmpeg's
// rawvideo demuxer expects (pixel format rgb24). The alpha channel is
// dropped.
func RGB24(img image.Image) []byte {
	b := img.Bounds()
	out := make([]byte, b.Dx()*b.Dy()*3)
	i := 0

	if rgba, ok := img.(*image.RGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, y):]
			for x := 0; x < b.Dx(); x++ {
				out[i] = row[x*4]
				out[i+1] = row[x*4+1]
				out[i+2] = row[x*4+2]
				i += 3
			}
		}
		return out
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out[i] = uint8(r >> 8)
			out[i+1] = uint8(g >> 8)
			out[i+2] = uint8(bl >> 8)
			i += 3
		}
	}
	return out
}
