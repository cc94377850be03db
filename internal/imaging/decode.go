// Package imaging provides the pixel-decode capability: recovering
// dimensions and the real encoded format from raw image bytes when the
// collection strategy could not supply them.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Register decoders for the raster formats the analyzer scores
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/buckket/go-blurhash"
	_ "golang.org/x/image/webp"
)

// Meta describes a successfully decoded image
type Meta struct {
	Format      string // decoder name: jpeg, png, gif or webp
	Width       int    // pixel width
	Height      int    // pixel height
	Placeholder string // BlurHash of the decoded frame; empty when encoding failed
}

// ErrUndecodable indicates the bytes are not a decodable raster image.
// SVG and AVIF payloads land here: no decoder is registered for them.
var ErrUndecodable = errors.New("image bytes could not be decoded")

// Decode decodes raster image bytes and reports pixel metadata along
// with a BlurHash placeholder string for progressive loading.
func Decode(data []byte) (*Meta, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	bounds := img.Bounds()
	meta := &Meta{
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	// 4x3 components for quality/size balance; failure leaves the
	// placeholder empty rather than failing the decode
	if hash, err := blurhash.Encode(4, 3, img); err == nil {
		meta.Placeholder = hash
	}

	return meta, nil
}
