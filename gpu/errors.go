package gpu

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned by handles that were not created through a Context.
var ErrUnsupported = fmt.Errorf("%w: handle must be created through a Context", errors.ErrUnsupported)
