package extra

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/staticbackendhq/imgpaste/model"
	"golang.org/x/image/draw"
)

// ResizeImage scales data down to maxWidth keeping the ratio and re-encodes
// it as JPEG. Images already narrow enough, a zero maxWidth and formats the
// decoder does not know are returned untouched.
func ResizeImage(data model.UploadFileData, maxWidth int) (model.UploadFileData, error) {
	if maxWidth <= 0 {
		return data, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data.Data))
	if errors.Is(err, image.ErrFormat) {
		return data, nil
	} else if err != nil {
		return data, err
	}

	if cfg.Width <= maxWidth {
		return data, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data.Data))
	if err != nil {
		return data, err
	}

	// find the ratio to reach maxWidth
	srcX := float64(src.Bounds().Dx())
	srcY := float64(src.Bounds().Dy())

	ratio := float64(maxWidth) / srcX

	x := maxWidth
	y := int(srcY * ratio)
	if y < 1 {
		y = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, x, y))

	draw.ApproxBiLinear.Scale(dst, dst.Rect, src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	opt := &jpeg.Options{
		Quality: 90,
	}
	if err := jpeg.Encode(&buf, dst, opt); err != nil {
		return data, err
	}

	name := strings.TrimSuffix(data.Name, filepath.Ext(data.Name)) + ".jpg"

	return model.UploadFileData{
		Name:     name,
		MimeType: "image/jpeg",
		Data:     buf.Bytes(),
	}, nil
}
