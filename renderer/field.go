package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/emergent/camera"
)

// FieldRenderer draws the pheromone grid as a bilinear-filtered texture
// stretched over the world rectangle.
type FieldRenderer struct {
	tex        rl.Texture2D
	texW, texH int
	pixels     []color.RGBA

	tint        color.RGBA
	initialized bool
}

// NewFieldRenderer creates a field renderer that shades trails with tint.
func NewFieldRenderer(tint color.RGBA) *FieldRenderer {
	return &FieldRenderer{tint: tint}
}

// Init allocates the GPU texture (must be called after the raylib window is created).
func (r *FieldRenderer) Init(cols, rows int) {
	if r.initialized {
		r.Unload()
	}

	r.texW = cols
	r.texH = rows
	r.pixels = make([]color.RGBA, cols*rows)

	img := rl.GenImageColor(cols, rows, rl.Blank)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterBilinear)
	rl.SetTextureWrap(r.tex, rl.WrapClamp)
	rl.UnloadImage(img)

	r.initialized = true
}

// Update uploads the field values. A size change reallocates the texture.
func (r *FieldRenderer) Update(values []float64, cols, rows int) {
	if len(values) != cols*rows {
		return
	}
	if !r.initialized || cols != r.texW || rows != r.texH {
		r.Init(cols, rows)
	}

	for i, v := range values {
		v = min(max(v, 0), 1)
		r.pixels[i] = color.RGBA{R: r.tint.R, G: r.tint.G, B: r.tint.B, A: uint8(v * float64(r.tint.A))}
	}
	rl.UpdateTexture(r.tex, r.pixels)
}

// Draw renders the field over the world rectangle of size worldW x worldH.
func (r *FieldRenderer) Draw(cam *camera.Camera, worldW, worldH, cellSize float32) {
	if !r.initialized {
		return
	}

	x0, y0 := cam.WorldToScreen(0, 0)
	x1, y1 := cam.WorldToScreen(worldW, worldH)

	// Cells past the world edge are partial; crop the texture to match
	src := rl.Rectangle{Width: worldW / cellSize, Height: worldH / cellSize}
	dst := rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}

	rl.DrawTexturePro(r.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (r *FieldRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}
