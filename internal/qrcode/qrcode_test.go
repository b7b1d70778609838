package qrcode

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoURI(t *testing.T) {
	uri, err := GeoURI(38.8976763, -77.0365298)
	require.NoError(t, err)
	assert.Equal(t, "geo:38.8976763,-77.0365298", uri)

	_, err = GeoURI(91, 0)
	assert.Error(t, err)
	_, err = GeoURI(0, -181)
	assert.Error(t, err)
}

func TestWiFi(t *testing.T) {
	data, err := WiFi("home;net", `p"a:ss`, "wpa")
	require.NoError(t, err)
	assert.Equal(t, `WIFI:T:WPA;S:home\;net;P:p\"a\:ss;;`, data)

	open, err := WiFi("cafe", "ignored", "")
	require.NoError(t, err)
	assert.Equal(t, "WIFI:T:nopass;S:cafe;;", open)

	_, err = WiFi("", "x", "WPA")
	assert.Error(t, err)
	_, err = WiFi("x", "x", "WPA9")
	assert.Error(t, err)
}

func TestVCard(t *testing.T) {
	data, err := VCard("Doe;John", "John Doe", []string{"john@example.com"}, []string{"https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCARD\r\nVERSION:3.0\r\nN:Doe;John\r\nFN:John Doe\r\nEMAIL:john@example.com\r\nURL:https://example.com\r\nEND:VCARD", data)

	_, err = VCard("", "x", nil, nil)
	assert.Error(t, err)
}

func TestVCardRejectsLineBreaksInName(t *testing.T) {
	for _, name := range []string{"Doe;Jane\r\nTEL:123", "Doe\nJane", "Doe\rJane"} {
		_, err := VCard(name, "Jane Doe", nil, nil)
		assert.Error(t, err, name)
	}

	data, err := VCard("Doe;Jane", "Jane\r\nTEL:123", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, data, "FN:Jane\\nTEL:123\r\n")
	assert.NotContains(t, data, "\r\nTEL:")
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#0a0B0c")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x0a, G: 0x0b, B: 0x0c, A: 0xff}, c)

	c, err = ParseHexColor("f00")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, c)

	for _, bad := range []string{"", "#12", "#zzzzzz", "#1234567"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestRenderPNG(t *testing.T) {
	opts := DefaultOptions()
	opts.Scale = 4

	data, err := Render("https://example.com", opts)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds().Dx(), img.Bounds().Dy())
	assert.Zero(t, img.Bounds().Dx()%4)
}

func TestRenderBorderWidth(t *testing.T) {
	decode := func(border int) image.Image {
		opts := DefaultOptions()
		opts.Scale = 2
		opts.Border = border
		data, err := Render("https://example.com", opts)
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		return img
	}
	dark := func(img image.Image, x, y int) bool {
		r, _, _, _ := img.At(x, y).RGBA()
		return r == 0
	}

	bare := decode(0)
	wide := decode(3)
	assert.Equal(t, bare.Bounds().Dx()+2*3*2, wide.Bounds().Dx())
	assert.Equal(t, wide.Bounds().Dx(), wide.Bounds().Dy())

	// the finder pattern starts at the edge without a quiet zone
	assert.True(t, dark(bare, 0, 0))
	assert.False(t, dark(wide, 0, 0))
	assert.False(t, dark(wide, 5, 5))
	assert.True(t, dark(wide, 6, 6))
}

func TestRenderRejectsBadOptions(t *testing.T) {
	opts := DefaultOptions()

	_, err := Render("", opts)
	assert.Error(t, err)

	opts.Scale = 0
	_, err = Render("x", opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.ErrorLevel = "Z"
	_, err = Render("x", opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.Border = -1
	_, err = Render("x", opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.Border = maxBorder + 1
	_, err = Render("x", opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.Dark = "blue"
	_, err = Render("x", opts)
	assert.Error(t, err)
}
