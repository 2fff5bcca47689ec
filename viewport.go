package fog

import (
	"github.com/gogpu/fog/camera"
	"github.com/gogpu/fog/raster"
	"github.com/gogpu/fog/volume"
)

// Viewport is the host's per-frame view of one camera.
type Viewport struct {
	// Width and Height are the render size in pixels.
	Width  int
	Height int

	// Primary marks the main camera. The feature only runs for it.
	Primary bool

	// Output is the primary render output the fog is blended onto.
	Output raster.Output

	// Camera reconstructs per-pixel view rays.
	Camera camera.View

	// Light is the main light. The zero value uses volume.DefaultLight.
	Light volume.Light

	// Time animates the fog noise, in seconds.
	Time float32
}
