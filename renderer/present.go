package renderer

import (
	"fmt"
	"os"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/afterglow/raster"
	"github.com/pthm-cable/afterglow/systems"
)

// ScreenPresenter shows composited frames in the raylib window.
type ScreenPresenter struct {
	canvas *TextureCanvas

	// ShowHUD draws the frame counter and Status in the top-left corner.
	ShowHUD bool
	Status  func() string

	// SaveDir and SaveEvery control PNG frame capture (0 = never).
	SaveDir   string
	SaveEvery int32
}

// NewScreenPresenter creates a presenter for surfaces from canvas.
func NewScreenPresenter(canvas *TextureCanvas) *ScreenPresenter {
	return &ScreenPresenter{canvas: canvas}
}

// Present draws s to the window and optionally saves it.
func (p *ScreenPresenter) Present(frame int32, s systems.Surface) error {
	ts, ok := s.(*Surface)
	if !ok {
		return fmt.Errorf("presenting frame %d: surface %T is not a render texture", frame, s)
	}
	p.canvas.Flush()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	drawFlipped(ts.Texture(), 0, 0)

	if p.ShowHUD {
		rl.DrawText(fmt.Sprintf("Frame: %d  FPS: %d", frame, rl.GetFPS()), 10, 10, 20, rl.White)
		if p.Status != nil {
			rl.DrawText(p.Status(), 10, 35, 20, rl.White)
		}
	}
	rl.EndDrawing()

	if p.SaveEvery > 0 && frame%p.SaveEvery == 0 {
		return SaveSurfacePNG(filepath.Join(p.SaveDir, raster.FrameName(frame)), ts)
	}
	return nil
}

// SaveSurfacePNG reads s back from the GPU and writes it as a PNG.
func SaveSurfacePNG(path string, s *Surface) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating frames directory: %w", err)
	}
	img := rl.LoadImageFromTexture(s.Texture())
	defer rl.UnloadImage(img)

	rl.ImageFlipVertical(img)
	if !rl.ExportImage(*img, path) {
		return fmt.Errorf("exporting %s failed", path)
	}
	return nil
}
