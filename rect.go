package govnc

import "fmt"

// Rect is a screen rectangle, used both for framebuffer geometry and as the
// header of every encoded rectangle in a FramebufferUpdate.
type Rect struct {
	X, Y          uint16
	Width, Height uint16
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Area reports the number of pixels covered by r.
func (r Rect) Area() int {
	return int(r.Width) * int(r.Height)
}
