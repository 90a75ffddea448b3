package postdetail

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const DefaultMaxImageSize = 5 << 20

// Upload is a file picked in the composer, as received from the browser.
type Upload struct {
	Filename  string
	MediaType string // declared Content-Type, may be empty
	Body      io.Reader
}

// Attachment is an accepted image, embedded as a data: URL. The URL is what
// gets sent to the feed API as the reply's fileUrl; there is no upload step.
type Attachment struct {
	Filename  string
	MediaType string
	Size      int64
	Width     int // zero when the format could not be decoded
	Height    int
	DataURL   string
}

// NewAttachment accepts u only when its declared media type is image/*.
func NewAttachment(u Upload, maxSize int64) (*Attachment, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}

	mediaType := declaredMediaType(u)
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, ErrInvalidFileType
	}

	data, err := io.ReadAll(io.LimitReader(u.Body, maxSize+1))
	if err != nil {
		return nil, &Error{Kind: KindValidationFailure, Message: msgUnreadableImage, Err: err}
	}
	if int64(len(data)) > maxSize {
		return nil, ErrImageTooLarge
	}
	if len(data) == 0 {
		return nil, ErrInvalidFileType
	}

	a := &Attachment{
		Filename:  filepath.Base(u.Filename),
		MediaType: mediaType,
		Size:      int64(len(data)),
		DataURL:   "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		a.Width, a.Height = cfg.Width, cfg.Height
	}
	return a, nil
}

// declaredMediaType trusts the Content-Type header and falls back to the
// file extension when the header is missing or generic.
func declaredMediaType(u Upload) string {
	mediaType := ""
	if u.MediaType != "" {
		if parsed, _, err := mime.ParseMediaType(u.MediaType); err == nil {
			mediaType = parsed
		}
	}
	if mediaType == "" || mediaType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(u.Filename))); byExt != "" {
			if parsed, _, err := mime.ParseMediaType(byExt); err == nil {
				mediaType = parsed
			}
		}
	}
	return strings.ToLower(mediaType)
}
