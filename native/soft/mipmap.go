package soft

import "github.com/oliverbestmann/glarray/native"

// downsample computes the given level from the level above it. Single
// byte formats use a 2x2 box filter, all other formats pick the top left
// texel. Must be called with t.mu held.
func (t *Texture) downsample(level int) []byte {
	srcWidth, srcHeight := t.levelSize(level - 1)
	dstWidth, dstHeight := t.levelSize(level)

	src := t.levels[level-1]
	srcLayout := t.levelLayout(level-1, 1)
	dstLayout := t.levelLayout(level, 1)

	dst := make([]byte, dstLayout.Size())

	box := t.pixelSize == t.components
	signed := t.dtype == native.DtypeI1

	for layer := range t.layers {
		for y := range dstHeight {
			y0, y1 := 2*y, min(2*y+1, srcHeight-1)

			for x := range dstWidth {
				x0, x1 := 2*x, min(2*x+1, srcWidth-1)

				dstOffset := dstLayout.Offset(y, layer) + x*t.pixelSize

				if !box {
					srcOffset := srcLayout.Offset(y0, layer) + x0*t.pixelSize
					copy(dst[dstOffset:dstOffset+t.pixelSize], src[srcOffset:srcOffset+t.pixelSize])
					continue
				}

				texels := [4]int{
					srcLayout.Offset(y0, layer) + x0*t.pixelSize,
					srcLayout.Offset(y0, layer) + x1*t.pixelSize,
					srcLayout.Offset(y1, layer) + x0*t.pixelSize,
					srcLayout.Offset(y1, layer) + x1*t.pixelSize,
				}

				for c := range t.components {
					var sum int
					for _, offset := range texels {
						if signed {
							sum += int(int8(src[offset+c]))
						} else {
							sum += int(src[offset+c])
						}
					}

					dst[dstOffset+c] = byte(sum / 4)
				}
			}
		}
	}

	return dst
}
