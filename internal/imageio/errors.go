package imageio

import (
	"errors"
	"fmt"
)

// ErrImageLoad is the category of every image fetch or decode failure.
var ErrImageLoad = errors.New("image load failed")

// ImageLoadError reports why an image source could not be turned into pixels.
type ImageLoadError struct {
	Source string
	Err    error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("cannot load image %s: %v", e.Source, e.Err)
}

func (e *ImageLoadError) Unwrap() error {
	return e.Err
}

// Is matches ErrImageLoad.
func (e *ImageLoadError) Is(target error) bool {
	return target == ErrImageLoad
}
