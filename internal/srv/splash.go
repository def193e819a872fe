package srv

import (
	"github.com/jypelle/piratedisplay/internal/srv/compositor"
	"github.com/jypelle/piratedisplay/internal/version"
	xdraw "golang.org/x/image/draw"
	"image"
	"image/draw"
)

const splashScale = 2

// splashImage shows the version and the command channel address until the first draw_image.
func (s *ServerApp) splashImage() image.Image {
	if !s.Splash {
		return nil
	}
	geometry := compositor.PirateAudio

	width, height := geometry.Width/splashScale, geometry.Height/splashScale
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)

	AddCenteredLabel(img, 50, "Pirate Display")
	AddCenteredLabel(img, 66, "v"+version.AppVersion.String())
	AddCenteredLabel(img, 90, s.ClientAddress())

	splash := image.NewRGBA(image.Rect(0, 0, width*splashScale, height*splashScale))
	xdraw.NearestNeighbor.Scale(splash, splash.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return splash
}
