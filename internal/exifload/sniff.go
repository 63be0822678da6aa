package exifload

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"strings"
)

const sniffLen = 512

// Sniff reports the image format of the file at path from its leading bytes.
// ok is false for anything that is not a recognised image container.
func Sniff(path string) (format string, ok bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", false, err
	}
	format, ok = sniffBytes(head[:n])
	return format, ok, nil
}

var heifBrands = [][]byte{[]byte("heic"), []byte("heix"), []byte("hevc"), []byte("heim"), []byte("heis"), []byte("mif1"), []byte("msf1"), []byte("avif")}

func sniffBytes(head []byte) (string, bool) {
	switch {
	case bytes.HasPrefix(head, []byte("II*\x00")), bytes.HasPrefix(head, []byte("MM\x00*")):
		return "tiff", true
	case len(head) >= 12 && bytes.Equal(head[4:8], []byte("ftyp")):
		for _, brand := range heifBrands {
			if bytes.Equal(head[8:12], brand) {
				return string(brand), true
			}
		}
		return "", false
	}
	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return "", false
	}
	format := strings.TrimPrefix(contentType, "image/")
	if format == "x-icon" {
		return "", false
	}
	return format, true
}
