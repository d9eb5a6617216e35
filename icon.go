package main

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"runtime"
)

const iconSize = 32

// trayIcon is a clock face, PNG encoded, or ICO encoded on Windows.
var trayIcon = encodeIcon(runtime.GOOS, drawIcon(iconSize))

func drawIcon(size int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	face := color.NRGBA{R: 0x2e, G: 0x7d, B: 0x32, A: 0xff}
	hand := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	c := float64(size-1) / 2
	r := c

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-c, float64(y)-c
			if math.Hypot(dx, dy) > r {
				continue
			}

			img.SetNRGBA(x, y, face)

			// Hands at twelve and three o'clock.
			onMinute := math.Abs(dx) <= 1 && dy <= 0 && -dy <= r*0.75
			onHour := math.Abs(dy) <= 1 && dx >= 0 && dx <= r*0.5
			if onMinute || onHour {
				img.SetNRGBA(x, y, hand)
			}
		}
	}

	return img
}

func encodeIcon(goos string, img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}

	if goos == "windows" {
		return wrapICO(buf.Bytes(), img.Bounds().Dx())
	}
	return buf.Bytes()
}

// wrapICO wraps a square PNG image into an ICO file with a single entry.
func wrapICO(pngData []byte, size int) []byte {
	const headerSize = 6 + 16

	var buf bytes.Buffer
	buf.Grow(headerSize + len(pngData))

	// ICONDIR, then one ICONDIRENTRY.
	binary.Write(&buf, binary.LittleEndian, struct {
		Reserved, Type, Count uint16

		Width, Height, Colors, Reserved2 uint8
		Planes, BitCount                 uint16
		BytesInRes, ImageOffset          uint32
	}{
		Type:        1,
		Count:       1,
		Width:       uint8(size),
		Height:      uint8(size),
		Planes:      1,
		BitCount:    32,
		BytesInRes:  uint32(len(pngData)),
		ImageOffset: headerSize,
	})

	buf.Write(pngData)
	return buf.Bytes()
}
