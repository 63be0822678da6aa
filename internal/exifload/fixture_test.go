package exifload

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

// tiffEntry is one IFD entry of a hand-built little-endian TIFF block.
type tiffEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

const (
	tiffASCII    = 2
	tiffLong     = 4
	tiffRational = 5
)

func asciiEntry(tag uint16, s string) tiffEntry {
	b := append([]byte(s), 0)
	return tiffEntry{tag: tag, typ: tiffASCII, count: uint32(len(b)), data: b}
}

func rationalEntry(tag uint16, vals ...[2]uint32) tiffEntry {
	var b []byte
	for _, v := range vals {
		b = binary.LittleEndian.AppendUint32(b, v[0])
		b = binary.LittleEndian.AppendUint32(b, v[1])
	}
	return tiffEntry{tag: tag, typ: tiffRational, count: uint32(len(vals)), data: b}
}

func longEntry(tag uint16, v uint32) tiffEntry {
	return tiffEntry{tag: tag, typ: tiffLong, count: 1, data: binary.LittleEndian.AppendUint32(nil, v)}
}

func ifdSize(entries []tiffEntry) int {
	size := 2 + 12*len(entries) + 4
	for _, e := range entries {
		if len(e.data) > 4 {
			size += len(e.data) + len(e.data)%2
		}
	}
	return size
}

func appendIFD(out []byte, entries []tiffEntry) []byte {
	dataOff := len(out) + 2 + 12*len(entries) + 4
	var data []byte
	out = binary.LittleEndian.AppendUint16(out, uint16(len(entries)))
	for _, e := range entries {
		out = binary.LittleEndian.AppendUint16(out, e.tag)
		out = binary.LittleEndian.AppendUint16(out, e.typ)
		out = binary.LittleEndian.AppendUint32(out, e.count)
		if len(e.data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.data)
			out = append(out, inline...)
			continue
		}
		out = binary.LittleEndian.AppendUint32(out, uint32(dataOff+len(data)))
		data = append(data, e.data...)
		if len(data)%2 == 1 {
			data = append(data, 0)
		}
	}
	out = binary.LittleEndian.AppendUint32(out, 0)
	return append(out, data...)
}

// buildTIFF lays out IFD0 followed by the Exif and GPS sub-IFDs.
func buildTIFF(exifEntries, gpsEntries []tiffEntry) []byte {
	var ifd0 []tiffEntry
	pointers := 0
	if len(exifEntries) > 0 {
		pointers++
	}
	if len(gpsEntries) > 0 {
		pointers++
	}
	next := 8 + 2 + 12*pointers + 4
	if len(exifEntries) > 0 {
		ifd0 = append(ifd0, longEntry(0x8769, uint32(next)))
		next += ifdSize(exifEntries)
	}
	if len(gpsEntries) > 0 {
		ifd0 = append(ifd0, longEntry(0x8825, uint32(next)))
	}

	out := []byte("II*\x00")
	out = binary.LittleEndian.AppendUint32(out, 8)
	out = appendIFD(out, ifd0)
	if len(exifEntries) > 0 {
		out = appendIFD(out, exifEntries)
	}
	if len(gpsEntries) > 0 {
		out = appendIFD(out, gpsEntries)
	}
	return out
}

func plainJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// exifJPEG splices an APP1 Exif segment carrying tiff right after SOI.
func exifJPEG(t *testing.T, tiff []byte) []byte {
	t.Helper()
	base := plainJPEG(t)
	payload := append([]byte("Exif\x00\x00"), tiff...)
	out := []byte{0xFF, 0xD8, 0xFF, 0xE1}
	out = binary.BigEndian.AppendUint16(out, uint16(len(payload)+2))
	out = append(out, payload...)
	return append(out, base[2:]...)
}

func writeFixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func dms(deg, minutes, seconds uint32) [][2]uint32 {
	return [][2]uint32{{deg, 1}, {minutes, 1}, {seconds, 1}}
}
