package loader

import (
	"errors"
	"fmt"
	"image"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/assetdeck/internal/engine/texture"
	"github.com/Faultbox/assetdeck/internal/logger"
)

// ResourceReader returns the bytes of an external resource named by a URI
// relative to the document.
type ResourceReader func(uri string) ([]byte, error)

var errNoImageData = errors.New("image has no readable data")

// baseColorMap returns the decoded texture for ti. Images are decoded once and
// shared between materials. A texture that cannot be read leaves the material
// untextured.
func (c *converter) baseColorMap(ti *gltf.TextureInfo) *image.RGBA {
	if ti == nil || ti.Index < 0 || ti.Index >= len(c.doc.Textures) {
		return nil
	}
	src := c.doc.Textures[ti.Index].Source
	if src == nil || *src < 0 || *src >= len(c.doc.Images) {
		return nil
	}
	if img, ok := c.images[*src]; ok {
		return img
	}

	img, err := c.image(c.doc.Images[*src])
	if err != nil {
		logger.Warn("texture unavailable",
			zap.Int("image", *src),
			zap.String("uri", c.doc.Images[*src].URI),
			zap.Error(err))
	}
	c.images[*src] = img
	return img
}

func (c *converter) image(gi *gltf.Image) (*image.RGBA, error) {
	var data []byte
	var err error
	switch {
	case gi.BufferView != nil:
		bv := *gi.BufferView
		if bv < 0 || bv >= len(c.doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", bv)
		}
		data, err = modeler.ReadBufferView(c.doc, c.doc.BufferViews[bv])
	case gi.IsEmbeddedResource():
		data, err = gi.MarshalData()
	case gi.URI != "" && c.read != nil:
		data, err = c.read(gi.URI)
	default:
		return nil, errNoImageData
	}
	if err != nil {
		return nil, err
	}
	return texture.Decode(data, gi.MimeType, gi.URI)
}
