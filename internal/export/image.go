package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrPageOutOfRange is returned by RenderPage for a page the document lacks.
var ErrPageOutOfRange = errors.New("page out of range")

// Page image geometry: A4 at 4 px/mm.
const (
	pageWidthPx  = 840
	pageHeightPx = 1188
	marginPx     = 40
)

type faces struct {
	title, subtitle, heading, body font.Face
}

var loadFaces = sync.OnceValues(func() (faces, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return faces{}, fmt.Errorf("parsing regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return faces{}, fmt.Errorf("parsing bold font: %w", err)
	}
	face := func(f *truetype.Font, size float64) font.Face {
		return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	}
	return faces{
		title:    face(bold, 28),
		subtitle: face(regular, 16),
		heading:  face(bold, 18),
		body:     face(regular, 13),
	}, nil
})

// RenderPage draws page n (0-based) of doc as a PNG image.
func RenderPage(w io.Writer, doc Document, n int) error {
	if n < 0 || n >= len(doc.Pages) {
		return fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n, len(doc.Pages))
	}
	fs, err := loadFaces()
	if err != nil {
		return err
	}

	dc := gg.NewContext(pageWidthPx, pageHeightPx)
	dc.SetColor(color.White)
	dc.Clear()

	lineHeight := float64(pageHeightPx-2*marginPx) / float64(doc.Layout.Height)
	colWidth := float64(pageWidthPx-2*marginPx) / float64(doc.Layout.Width)

	y := float64(marginPx)
	for _, l := range doc.Pages[n].Lines {
		y += lineHeight
		x := float64(marginPx) + float64(l.Indent)*colWidth

		switch l.Style {
		case StyleBlank:
			continue
		case StyleRule:
			dc.SetColor(color.NRGBA{R: 0x94, G: 0xA3, B: 0xB8, A: 0xFF})
			dc.SetLineWidth(1)
			dc.DrawLine(marginPx, y-lineHeight/2, pageWidthPx-marginPx, y-lineHeight/2)
			dc.Stroke()
			continue
		case StyleTitle:
			dc.SetFontFace(fs.title)
			dc.SetColor(color.NRGBA{R: 0x1E, G: 0x29, B: 0x3B, A: 0xFF})
		case StyleSubtitle:
			dc.SetFontFace(fs.subtitle)
			dc.SetColor(color.NRGBA{R: 0x47, G: 0x55, B: 0x69, A: 0xFF})
		case StyleHeading:
			dc.SetFontFace(fs.heading)
			dc.SetColor(color.NRGBA{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF})
		default:
			dc.SetFontFace(fs.body)
			dc.SetColor(color.Black)
		}
		dc.DrawString(l.Text, x, y)
	}

	dc.SetFontFace(fs.body)
	dc.SetColor(color.NRGBA{R: 0x94, G: 0xA3, B: 0xB8, A: 0xFF})
	dc.DrawStringAnchored(fmt.Sprintf("%d / %d", n+1, len(doc.Pages)), pageWidthPx/2, pageHeightPx-marginPx/2, 0.5, 0.5)

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encoding page %d: %w", n, err)
	}
	return nil
}
