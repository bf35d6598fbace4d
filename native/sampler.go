package native

import (
	"fmt"
	"strings"
)

// DefaultSwizzle is the identity swizzle of a fresh texture.
const DefaultSwizzle = "RGBA"

// NormalizeSwizzle validates a swizzle string and returns it in upper
// case. A swizzle has one to four characters out of R, G, B, A, 0 and 1.
func NormalizeSwizzle(value string) (string, error) {
	if len(value) < 1 || len(value) > 4 {
		return "", fmt.Errorf("the swizzle must be 1 to 4 characters long, got %q", value)
	}

	value = strings.ToUpper(value)

	for _, ch := range value {
		if !strings.ContainsRune("RGBA01", ch) {
			return "", fmt.Errorf("the swizzle contains an invalid character %q", ch)
		}
	}

	return value, nil
}

// ClampAnisotropy limits value to the range supported by a device.
func ClampAnisotropy(value, maxAnisotropy float32) float32 {
	return min(max(value, 1), maxAnisotropy)
}

// CheckMipmapRange validates the level range of a mipmap build.
func CheckMipmapRange(base, maxLevel int) error {
	if base < 0 {
		return fmt.Errorf("invalid base level %d", base)
	}

	if base > maxLevel {
		return fmt.Errorf("invalid base level %d, must not be greater than max level %d", base, maxLevel)
	}

	return nil
}

// CheckImageAccess validates the access flags of an image binding.
func CheckImageAccess(read, write bool) error {
	if !read && !write {
		return fmt.Errorf("illegal access mode, read or write needs to be enabled")
	}

	return nil
}
