package ebitensurf

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/pthm-cable/afterglow/game"
	"github.com/pthm-cable/afterglow/systems"
)

// View runs a simulation inside the ebiten game loop. Each Update ticks once
// and copies the composite into a screen buffer that Draw shows.
type View struct {
	sim     *game.Simulation
	screen  *ebiten.Image
	showHUD bool
}

// NewView wraps sim, which must draw through a Canvas from this package.
func NewView(sim *game.Simulation, showHUD bool) *View {
	w, h := sim.Canvas().Size()
	return &View{
		sim:     sim,
		screen:  ebiten.NewImage(w, h),
		showHUD: showHUD,
	}
}

// Present implements game.Presenter.
func (v *View) Present(frame int32, s systems.Surface) error {
	es, ok := s.(*Surface)
	if !ok {
		return fmt.Errorf("presenting frame %d: surface %T is not an ebiten surface", frame, s)
	}
	v.screen.Clear()
	v.screen.DrawImage(es.img, nil)
	return nil
}

// Update implements ebiten.Game.
func (v *View) Update() error {
	if v.sim.Done() {
		return ebiten.Termination
	}
	return v.sim.Tick(v)
}

// Draw implements ebiten.Game.
func (v *View) Draw(screen *ebiten.Image) {
	screen.DrawImage(v.screen, nil)
	if v.showHUD {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("Frame: %d  TPS: %.0f  Surfaces: %d",
			v.sim.Frame(), ebiten.ActualTPS(), v.sim.Canvas().Live()))
	}
}

// Layout implements ebiten.Game with a fixed logical size.
func (v *View) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.sim.Canvas().Size()
}

// Run opens the window and blocks until it closes or the tick limit is hit.
func (v *View) Run(title string, tps int) error {
	w, h := v.sim.Canvas().Size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(title)
	ebiten.SetTPS(tps)

	err := ebiten.RunGame(v)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
