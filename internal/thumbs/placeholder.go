package thumbs

import (
	"fmt"
	"hash/fnv"
	"image/color"
	"os"
	"strings"
	"unicode"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/prateektimer/course-library/internal/model"
	"go-micro.dev/v4/logger"
	"golang.org/x/image/font"
)

const placeholderWidth = 320
const placeholderHeight = 180

var placeholderPalette = []color.NRGBA{
	{R: 0x3f, G: 0x51, B: 0xb5, A: 0xff},
	{R: 0x00, G: 0x96, B: 0x88, A: 0xff},
	{R: 0x79, G: 0x55, B: 0x48, A: 0xff},
	{R: 0xe9, G: 0x1e, B: 0x63, A: 0xff},
	{R: 0x60, G: 0x7d, B: 0x8b, A: 0xff},
	{R: 0xff, G: 0x57, B: 0x22, A: 0xff},
	{R: 0x67, G: 0x3a, B: 0xb7, A: 0xff},
	{R: 0x2e, G: 0x7d, B: 0x32, A: 0xff},
}

// PlaceholderRenderer draws deterministic stand-in images for owners without
// a thumbnail: a palette color picked by owner id and, when a font is
// configured, the first letter of the name.
type PlaceholderRenderer struct {
	paths Paths
	face  font.Face
}

func NewPlaceholderRenderer(paths Paths, fontPath string) *PlaceholderRenderer {
	r := &PlaceholderRenderer{paths: paths}

	if fontPath != "" {
		face, err := loadFontFace(fontPath, 96)
		if err != nil {
			// letterless placeholders are fine
			logger.Warnf("Load placeholder font failed: %s", err)
		} else {
			r.face = face
		}
	}

	return r
}

// Render produces the placeholder image of an owner, reusing an already
// rendered file. The result depends only on owner id and name.
func (r *PlaceholderRenderer) Render(ownerID model.ID, name string) (string, error) {
	path := r.paths.PlaceholderPath(ownerID)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	dc := gg.NewContext(placeholderWidth, placeholderHeight)
	bg := placeholderPalette[colorIndex(ownerID)]
	dc.SetColor(bg)
	dc.Clear()

	if r.face != nil {
		if letter := initialOf(name); letter != "" {
			dc.SetFontFace(r.face)
			dc.SetRGB(1, 1, 1)
			dc.DrawStringAnchored(letter, placeholderWidth/2, placeholderHeight/2, 0.5, 0.5)
		}
	}

	if err := dc.SavePNG(path); err != nil {
		return "", fmt.Errorf("save placeholder failed: %w", err)
	}
	return path, nil
}

func colorIndex(ownerID model.ID) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(ownerID))
	return int(h.Sum32() % uint32(len(placeholderPalette)))
}

func initialOf(name string) string {
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return strings.ToUpper(string(r))
		}
	}
	return ""
}

func loadFontFace(path string, points float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: points}), nil
}
