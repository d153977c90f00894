package storage

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

type WebPOptions struct {
	MaxW    int
	MaxH    int
	Quality float32
}

func DefaultWebPOptions() WebPOptions {
	return WebPOptions{MaxW: 1600, MaxH: 1600, Quality: 80}
}

// IsConvertibleImage reports whether ConvertToWebP can decode the content.
func IsConvertibleImage(contentType, filename string) bool {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "png"), strings.Contains(ct, "webp"):
		return true
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}

// ConvertToWebP decodes jpeg/png/webp, applies EXIF orientation,
// fits the image inside MaxW x MaxH and re-encodes it as lossy WebP.
func ConvertToWebP(r io.Reader, opt WebPOptions) ([]byte, error) {
	all, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "webp: read")
	}
	if len(all) == 0 {
		return nil, errors.New("webp: empty file")
	}

	var img image.Image
	if strings.Contains(http.DetectContentType(all), "webp") {
		img, err = webp.Decode(bytes.NewReader(all))
	} else {
		img, err = imaging.Decode(bytes.NewReader(all), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, errors.Wrap(err, "webp: decode")
	}

	if opt.MaxW > 0 && opt.MaxH > 0 {
		b := img.Bounds()
		if b.Dx() > opt.MaxW || b.Dy() > opt.MaxH {
			img = imaging.Fit(img, opt.MaxW, opt.MaxH, imaging.CatmullRom)
		}
	}

	q := opt.Quality
	if q <= 0 || q > 100 {
		q = 80
	}
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: q}); err != nil {
		return nil, errors.Wrap(err, "webp: encode")
	}
	return buf.Bytes(), nil
}

// WebPFileName swaps the extension for ".webp".
func WebPFileName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".webp"
}
