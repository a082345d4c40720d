// Package tray shows the service state in the system tray: the announced
// endpoint, the number of connected clients and a Quit item.
package tray

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// Title is shown next to the icon where the platform supports it.
const Title = "Trackpad"

func endpointLabel(endpoint string) string {
	if endpoint == "" {
		return "Not listening"
	}
	return "Listening on " + endpoint
}

func clientsLabel(n int) string {
	switch n {
	case 0:
		return "No clients connected"
	case 1:
		return "1 client connected"
	default:
		return fmt.Sprintf("%d clients connected", n)
	}
}

func tooltip(endpoint string, clients int) string {
	return fmt.Sprintf("%s - %s, %s", Title, endpointLabel(endpoint), clientsLabel(clients))
}

// iconPNG draws a 32x32 trackpad outline with two finger dots.
func iconPNG() []byte {
	const size = 32
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	ink := color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}

	// pad outline
	for i := 3; i < size-3; i++ {
		for _, w := range []int{0, 1} {
			img.Set(i, 5+w, ink)
			img.Set(i, size-6-w, ink)
			img.Set(3+w, i, ink)
			img.Set(size-4-w, i, ink)
		}
	}
	// finger dots
	for _, cx := range []int{12, 20} {
		for y := -2; y <= 2; y++ {
			for x := -2; x <= 2; x++ {
				if x*x+y*y <= 5 {
					img.Set(cx+x, 16+y, ink)
				}
			}
		}
	}

	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

// iconICO wraps a PNG in a single-image ICO container, which Windows
// accepts since Vista.
func iconICO(pngData []byte) []byte {
	const headerSize = 6 + 16
	ico := make([]byte, headerSize, headerSize+len(pngData))
	binary.LittleEndian.PutUint16(ico[2:], 1)   // type: icon
	binary.LittleEndian.PutUint16(ico[4:], 1)   // image count
	ico[6] = 32                                 // width
	ico[7] = 32                                 // height
	binary.LittleEndian.PutUint16(ico[10:], 1)  // planes
	binary.LittleEndian.PutUint16(ico[12:], 32) // bits per pixel
	binary.LittleEndian.PutUint32(ico[14:], uint32(len(pngData)))
	binary.LittleEndian.PutUint32(ico[18:], headerSize)
	return append(ico, pngData...)
}
