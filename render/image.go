// Package render rasterizes ray-marched scenes into images. Camera ray
// generation stays with the caller: the renderer asks for one ray per
// sample through a [RayFunc] and shades whatever the marcher returns.
package render

import (
	"errors"
	"image"
	"image/color"
	"runtime"
	"sync"

	"golang.org/x/image/draw"

	"github.com/sdfray/sdfray"
	"github.com/sdfray/sdfray/march"
)

type setImage = interface {
	image.Image
	Set(x, y int, c color.Color)
}

// RayFunc produces the camera ray for a sample at normalized image
// coordinates u, v in [0, 1), with v growing downwards. It must be safe
// for concurrent calls.
type RayFunc func(u, v float32) march.Ray

// Renderer marches a distance field tree over a pixel grid. The zero
// value renders with marching defaults, normal-map shading and a black
// background.
type Renderer struct {
	// Marcher configures per-ray marching.
	Marcher march.Marcher
	// Shade converts a hit to a pixel color. Nil shades the surface
	// normal as RGB, the classic field-debugging view.
	Shade func(march.HitInfo) color.Color
	// Background fills missed samples. Nil means opaque black.
	Background color.Color
	// Supersample renders at NxN samples per pixel and downscales.
	// Values below 2 render one sample per pixel.
	Supersample int
}

// Render marches f over every pixel of img using rays from rayAt.
// Rows are rendered in parallel across GOMAXPROCS goroutines; this is
// sound because marching never mutates the tree.
func (rn *Renderer) Render(f *sdfray.Field, img setImage, rayAt RayFunc) error {
	if f == nil {
		return errors.New("nil distance field")
	} else if img == nil {
		return errors.New("nil target image")
	} else if rayAt == nil {
		return errors.New("nil ray function")
	}
	if rn.Supersample > 1 {
		b := img.Bounds()
		big := image.NewRGBA(image.Rect(0, 0, b.Dx()*rn.Supersample, b.Dy()*rn.Supersample))
		rn.renderDirect(f, big, rayAt)
		draw.ApproxBiLinear.Scale(img, b, big, big.Bounds(), draw.Src, nil)
		return nil
	}
	rn.renderDirect(f, img, rayAt)
	return nil
}

func (rn *Renderer) renderDirect(f *sdfray.Field, img setImage, rayAt RayFunc) {
	shade := rn.Shade
	if shade == nil {
		shade = shadeNormal
	}
	bg := rn.Background
	if bg == nil {
		bg = color.Black
	}
	b := img.Bounds()
	dx, dy := b.Dx(), b.Dy()

	workers := runtime.GOMAXPROCS(0)
	if workers > dy {
		workers = dy
	}
	rows := make(chan int, dy)
	for y := 0; y < dy; y++ {
		rows <- y
	}
	close(rows)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for y := range rows {
				v := (float32(y) + 0.5) / float32(dy)
				for x := 0; x < dx; x++ {
					u := (float32(x) + 0.5) / float32(dx)
					hit, outcome := rn.Marcher.March(f, rayAt(u, v))
					if outcome == march.Hit {
						img.Set(b.Min.X+x, b.Min.Y+y, shade(hit))
					} else {
						img.Set(b.Min.X+x, b.Min.Y+y, bg)
					}
				}
			}
		}()
	}
	wg.Wait()
}

// shadeNormal maps the unit normal's components from [-1, 1] to RGB.
func shadeNormal(h march.HitInfo) color.Color {
	return color.RGBA{
		R: uint8((h.Normal.X*0.5 + 0.5) * 255),
		G: uint8((h.Normal.Y*0.5 + 0.5) * 255),
		B: uint8((h.Normal.Z*0.5 + 0.5) * 255),
		A: 255,
	}
}
