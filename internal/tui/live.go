package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/impel-engine/impel/internal/mathf"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is a frame-rate-limited side-view renderer for headless runs.
// It tracks one focus position per frame and keeps a short trail.
type LiveRenderer struct {
	title     string
	frameRate int
	lastFrame time.Time
	canvas    [][]rune
	trail     []struct{ x, y int }
}

func NewLiveRenderer(title string, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{
		title:     title,
		frameRate: frameRate,
		canvas:    canvas,
		trail:     make([]struct{ x, y int }, 0, 50),
	}
}

// OnFrame draws the focus position, skipping frames above the target rate.
func (r *LiveRenderer) OnFrame(focus mathf.Vec3, velocity mathf.Vec3, t float64) {
	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	r.clear()

	gy := height - 3
	for x := 2; x < width-2; x++ {
		r.set(x, gy+1, '=')
	}

	scale := 2.0
	bx := width/2 + int(float64(focus.X)*scale)
	by := gy - int(float64(focus.Y)*scale)

	r.trail = append(r.trail, struct{ x, y int }{bx, by})
	if len(r.trail) > 40 {
		r.trail = r.trail[1:]
	}
	for i, pt := range r.trail {
		if i < len(r.trail)/2 {
			r.set(pt.x, pt.y, '.')
		} else {
			r.set(pt.x, pt.y, 'o')
		}
	}
	r.set(bx, by, 'O')

	r.render(focus, velocity, t)
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) render(focus, velocity mathf.Vec3, t float64) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs\n", r.title, t))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	b.WriteString(fmt.Sprintf("  x=%.2f y=%.2f z=%.2f  |v|=%.2f\n",
		focus.X, focus.Y, focus.Z, velocity.Length()))

	fmt.Print(b.String())
}

func (r *LiveRenderer) Start() { fmt.Print(hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Print(showCursor) }
