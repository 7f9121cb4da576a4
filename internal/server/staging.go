package server

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/pveldt/roster/internal/errors"
)

// previewSize is the pixel edge of the inline preview returned to clients
// for display without a further round trip.
const previewSize = 48

// stagedImage is the result of staging one upload.
type stagedImage struct {
	// originalRef is the temp ref of the full-resolution upload
	originalRef string

	// thumbnailRef is the temp ref of the server-side thumbnail
	thumbnailRef string

	// preview is an inline data URI of the low-resolution preview
	preview string
}

// stageImage validates the upload, stores the original and a generated
// thumbnail in the temp holding area, and builds the inline preview.
func (s *Store) stageImage(userContext, kind string, data []byte, thumbnailSize int) (*stagedImage, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewValidation("file", fmt.Sprintf("not a decodable image: %v", err))
	}

	originalRef, err := s.StageTemp(userContext, kind, data)
	if err != nil {
		return nil, err
	}

	thumb := imaging.Thumbnail(img, thumbnailSize, thumbnailSize, imaging.Lanczos)
	var thumbBuf bytes.Buffer
	if err := imaging.Encode(&thumbBuf, thumb, imaging.PNG); err != nil {
		return nil, errors.NewInternal(err)
	}
	thumbnailRef, err := s.StageTemp(userContext, kind+"_thumb", thumbBuf.Bytes())
	if err != nil {
		return nil, err
	}

	preview := imaging.Thumbnail(img, previewSize, previewSize, imaging.Lanczos)
	var previewBuf bytes.Buffer
	if err := imaging.Encode(&previewBuf, preview, imaging.PNG); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &stagedImage{
		originalRef:  originalRef,
		thumbnailRef: thumbnailRef,
		preview:      "data:image/png;base64," + base64.StdEncoding.EncodeToString(previewBuf.Bytes()),
	}, nil
}
