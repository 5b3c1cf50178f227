package preview

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const jpegDataURLPrefix = "data:image/jpeg;base64,"

// Thumbnail decodes data (honouring EXIF orientation), fits it into a
// size x size box and returns it as a JPEG data URL.
func Thumbnail(data []byte, size int) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	return encodeThumbnail(img, size)
}

func encodeThumbnail(img image.Image, size int) (string, error) {
	if size > 0 {
		b := img.Bounds()
		if b.Dx() > size || b.Dy() > size {
			img = imaging.Fit(img, size, size, imaging.Lanczos)
		}
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return jpegDataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
