package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"strconv"
	"strings"

	"github.com/disintegration/gift"
)

// whiteThreshold separates the subject from a light studio backdrop. Pixels
// at or above it count as background.
const whiteThreshold = 240

var namedColors = map[string]color.NRGBA{
	"white": {255, 255, 255, 255},
	"black": {0, 0, 0, 255},
	"gray":  {128, 128, 128, 255},
	"grey":  {128, 128, 128, 255},
	"red":   {220, 20, 60, 255},
	"green": {34, 139, 34, 255},
	"blue":  {70, 130, 180, 255},
	"beige": {245, 245, 220, 255},
	"cream": {255, 253, 240, 255},
	"gold":  {212, 175, 55, 255},
	"pink":  {255, 192, 203, 255},
}

// ParseColor resolves a background color name or #rrggbb hex string.
// Unknown values fall back to white.
func ParseColor(s string) color.NRGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c
	}
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		if v, err := strconv.ParseUint(s[1:], 16, 32); err == nil {
			return color.NRGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
		}
	}
	return namedColors["white"]
}

// ReplaceBackground extracts the dominant foreground subject from an ornament
// photo and composites it onto a solid background color. This is the
// deterministic local path used when remote generation is unavailable; it
// assumes product shots on a light backdrop.
func ReplaceBackground(data []byte, bgColor string) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imageproc: decode: %w", err)
	}

	bounds := src.Bounds()
	gray := image.NewGray(bounds)
	g := gift.New(
		gift.Grayscale(),
		gift.GaussianBlur(2),
	)
	g.Draw(gray, src)

	mask := foregroundMask(gray)
	keep := largestComponent(mask, bounds.Dx(), bounds.Dy())
	if keep == nil {
		return nil, fmt.Errorf("imageproc: no foreground subject found")
	}

	out := image.NewNRGBA(bounds)
	draw.Draw(out, bounds, image.NewUniform(ParseColor(bgColor)), image.Point{}, draw.Src)
	w := bounds.Dx()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if keep[(y-bounds.Min.Y)*w+(x-bounds.Min.X)] {
				out.Set(x, y, src.At(x, y))
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("imageproc: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func foregroundMask(gray *image.Gray) []bool {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mask[y*w+x] = gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y < whiteThreshold
		}
	}
	return mask
}

// largestComponent keeps only the biggest 4-connected foreground region,
// discarding specks and shadow noise. Returns nil when the mask is empty.
func largestComponent(mask []bool, w, h int) []bool {
	visited := make([]bool, len(mask))
	var best []int

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}
		var region []int
		queue := []int{start}
		visited[start] = true
		for len(queue) > 0 {
			idx := queue[0]
			queue = queue[1:]
			region = append(region, idx)
			x, y := idx%w, idx/w
			for _, n := range [][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
				nx, ny := n[0], n[1]
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				ni := ny*w + nx
				if mask[ni] && !visited[ni] {
					visited[ni] = true
					queue = append(queue, ni)
				}
			}
		}
		if len(region) > len(best) {
			best = region
		}
	}

	if best == nil {
		return nil
	}
	keep := make([]bool, len(mask))
	for _, idx := range best {
		keep[idx] = true
	}
	return keep
}
