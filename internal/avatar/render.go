package avatar

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
)

// Size is the edge length of a rendered profile picture.
const Size = 50

var palette = []color.RGBA{
	{0xE1, 0x70, 0x76, 0xFF},
	{0x7B, 0xC8, 0x62, 0xFF},
	{0x65, 0xAA, 0xDD, 0xFF},
	{0xA6, 0x95, 0xE7, 0xFF},
	{0xEE, 0x7A, 0xAE, 0xFF},
	{0x6E, 0xC9, 0xCB, 0xFF},
	{0xFA, 0xA7, 0x74, 0xFF},
}

// ColorFor returns the background colour used for a letter.
func ColorFor(letter string) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(letter))
	return palette[h.Sum32()%uint32(len(palette))]
}

// Render draws the default profile picture for a display name initial: a
// filled circle on a transparent background, encoded as PNG.
func Render(letter string) ([]byte, error) {
	fill := ColorFor(letter)
	img := image.NewNRGBA(image.Rect(0, 0, Size, Size))

	const r = Size / 2
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			dx, dy := x-r, y-r
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, fill)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
