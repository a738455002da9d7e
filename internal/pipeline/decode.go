package pipeline

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/docsift/docsift/internal/common"
)

// decodeImage decodes an uploaded bitmap. BMP and TIFF decoders are
// registered by the imaging dependency pulled in via imgproc.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, common.NewAppError("DECODE_FAILED",
			fmt.Sprintf("decoding bitmap: %v", err), common.ErrDecodeFailed)
	}
	return img, nil
}
