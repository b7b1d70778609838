// Package qrcode builds QR payloads and renders them to PNG images.
package qrcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"
)

// FormatPNG is the only image format the renderer produces.
const FormatPNG = "png"

const (
	maxScale  = 40
	maxBorder = 20
)

// ErrorLevel is the QR error correction level.
type ErrorLevel string

const (
	LevelL ErrorLevel = "L"
	LevelM ErrorLevel = "M"
	LevelQ ErrorLevel = "Q"
	LevelH ErrorLevel = "H"
)

// Options control how a QR symbol is drawn. Scale is pixels per module and
// Border the quiet zone width in modules.
type Options struct {
	Scale      int
	Border     int
	ErrorLevel ErrorLevel
	Dark       string
	Light      string
}

// DefaultOptions mirror the API defaults.
func DefaultOptions() Options {
	return Options{
		Scale:      1,
		Border:     1,
		ErrorLevel: LevelM,
		Dark:       "#000000",
		Light:      "#ffffff",
	}
}

// Render encodes data and returns the PNG bytes.
func Render(data string, opts Options) ([]byte, error) {
	if data == "" {
		return nil, errors.New("qr data is required")
	}
	if opts.Scale < 1 || opts.Scale > maxScale {
		return nil, fmt.Errorf("scale must be between 1 and %d", maxScale)
	}
	if opts.Border < 0 || opts.Border > maxBorder {
		return nil, fmt.Errorf("border must be between 0 and %d", maxBorder)
	}
	level, err := recoveryLevel(opts.ErrorLevel)
	if err != nil {
		return nil, err
	}
	dark, err := ParseHexColor(opts.Dark)
	if err != nil {
		return nil, fmt.Errorf("dark color: %w", err)
	}
	light, err := ParseHexColor(opts.Light)
	if err != nil {
		return nil, fmt.Errorf("light color: %w", err)
	}

	code, err := goqrcode.New(data, level)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	code.ForegroundColor = dark
	code.BackgroundColor = light
	// the library's own quiet zone is fixed at four modules
	code.DisableBorder = true

	// a negative size makes every module -size pixels wide
	symbol := code.Image(-opts.Scale)

	pad := opts.Border * opts.Scale
	size := symbol.Bounds().Dx() + 2*pad
	canvas := image.NewPaletted(image.Rect(0, 0, size, size), color.Palette{light, dark})
	draw.Draw(canvas, symbol.Bounds().Add(image.Pt(pad, pad)), symbol, symbol.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.BestCompression}
	if err := encoder.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	return buf.Bytes(), nil
}

func recoveryLevel(level ErrorLevel) (goqrcode.RecoveryLevel, error) {
	switch ErrorLevel(strings.ToUpper(string(level))) {
	case LevelL:
		return goqrcode.Low, nil
	case "", LevelM:
		return goqrcode.Medium, nil
	case LevelQ:
		return goqrcode.High, nil
	case LevelH:
		return goqrcode.Highest, nil
	default:
		return 0, fmt.Errorf("unsupported error level %q", level)
	}
}

// ParseHexColor accepts #rgb or #rrggbb, with or without the leading '#'.
// An empty string is rejected.
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
