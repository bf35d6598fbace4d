package gl

import (
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/oliverbestmann/glarray/native"
)

type pixelFormat struct {
	internal int32
	format   uint32
	typ      uint32
}

type formatRow struct {
	internal [4]int32
	integer  bool
	typ      uint32
}

var formatTable = map[string]formatRow{
	native.DtypeF1: {[4]int32{gl.R8, gl.RG8, gl.RGB8, gl.RGBA8}, false, gl.UNSIGNED_BYTE},
	native.DtypeF2: {[4]int32{gl.R16F, gl.RG16F, gl.RGB16F, gl.RGBA16F}, false, gl.HALF_FLOAT},
	native.DtypeF4: {[4]int32{gl.R32F, gl.RG32F, gl.RGB32F, gl.RGBA32F}, false, gl.FLOAT},
	native.DtypeU1: {[4]int32{gl.R8UI, gl.RG8UI, gl.RGB8UI, gl.RGBA8UI}, true, gl.UNSIGNED_BYTE},
	native.DtypeU2: {[4]int32{gl.R16UI, gl.RG16UI, gl.RGB16UI, gl.RGBA16UI}, true, gl.UNSIGNED_SHORT},
	native.DtypeU4: {[4]int32{gl.R32UI, gl.RG32UI, gl.RGB32UI, gl.RGBA32UI}, true, gl.UNSIGNED_INT},
	native.DtypeI1: {[4]int32{gl.R8I, gl.RG8I, gl.RGB8I, gl.RGBA8I}, true, gl.BYTE},
	native.DtypeI2: {[4]int32{gl.R16I, gl.RG16I, gl.RGB16I, gl.RGBA16I}, true, gl.SHORT},
	native.DtypeI4: {[4]int32{gl.R32I, gl.RG32I, gl.RGB32I, gl.RGBA32I}, true, gl.INT},
}

var baseFormats = [4]uint32{gl.RED, gl.RG, gl.RGB, gl.RGBA}
var integerFormats = [4]uint32{gl.RED_INTEGER, gl.RG_INTEGER, gl.RGB_INTEGER, gl.RGBA_INTEGER}

func lookupFormat(dtype string, components int) (pixelFormat, error) {
	if err := native.CheckComponents(components); err != nil {
		return pixelFormat{}, err
	}

	row, ok := formatTable[dtype]
	if !ok {
		return pixelFormat{}, fmt.Errorf("invalid dtype %q", dtype)
	}

	format := baseFormats[components-1]
	if row.integer {
		format = integerFormats[components-1]
	}

	return pixelFormat{
		internal: row.internal[components-1],
		format:   format,
		typ:      row.typ,
	}, nil
}

var swizzleEnums = map[rune]int32{
	'R': gl.RED,
	'G': gl.GREEN,
	'B': gl.BLUE,
	'A': gl.ALPHA,
	'0': gl.ZERO,
	'1': gl.ONE,
}
