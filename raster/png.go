package raster

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pthm-cable/afterglow/systems"
)

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

// FrameName returns the file name used for a saved frame.
func FrameName(frame int32) string {
	return fmt.Sprintf("frame-%09d.png", frame)
}

// PNGPresenter saves every Every-th composited frame into Dir.
// A zero Every disables saving.
type PNGPresenter struct {
	Dir   string
	Every int32

	saved int
}

// NewPNGPresenter creates the output directory and returns a presenter for it.
func NewPNGPresenter(dir string, every int32) (*PNGPresenter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating frames directory: %w", err)
	}
	return &PNGPresenter{Dir: dir, Every: every}, nil
}

// Present saves s when frame falls on the save interval.
func (p *PNGPresenter) Present(frame int32, s systems.Surface) error {
	if p.Every <= 0 || frame%p.Every != 0 {
		return nil
	}
	rs, ok := s.(*Surface)
	if !ok {
		return fmt.Errorf("saving frame %d: surface %T is not a raster surface", frame, s)
	}
	if err := SavePNG(filepath.Join(p.Dir, FrameName(frame)), rs.Image()); err != nil {
		return err
	}
	p.saved++
	return nil
}

// Saved returns how many frames have been written.
func (p *PNGPresenter) Saved() int {
	return p.saved
}
