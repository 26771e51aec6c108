package generation

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/danadoen/nusaai/internal/domain"
)

// RequestKind selects the provider request shape.
type RequestKind string

const (
	KindText            RequestKind = "text"
	KindTextWithImage   RequestKind = "vision"
	KindImageGeneration RequestKind = "image"
)

// ImageTag prefixes tagged image results so they can be told apart from text.
const ImageTag = "IMAGE_DATA:"

const defaultInputMIME = "image/jpeg"

// InlineImage is base64 encoded image bytes with a MIME type.
type InlineImage struct {
	MIMEType string
	Data     string
}

// Request is a generation request. Build it with TextRequest, VisionRequest,
// ImageGenerationRequest or RequestFromHints.
type Request struct {
	Kind   RequestKind
	Prompt string
	// Model overrides the default text model for KindText.
	Model string
	Image *InlineImage
}

func TextRequest(prompt, model string) Request {
	return Request{Kind: KindText, Prompt: prompt, Model: strings.TrimSpace(model)}
}

func VisionRequest(prompt string, image InlineImage) Request {
	return Request{Kind: KindTextWithImage, Prompt: prompt, Image: &image}
}

func ImageGenerationRequest(prompt string) Request {
	return Request{Kind: KindImageGeneration, Prompt: prompt}
}

// RequestFromHints maps the loose prompt/model/image triple accepted by the
// API onto a request kind. An image input wins over any model hint, and only
// the configured image model selects image generation.
func RequestFromHints(prompt, modelHint, imageInput, imageModel string) (Request, error) {
	if strings.TrimSpace(imageInput) != "" {
		img, err := ParseInlineImage(imageInput)
		if err != nil {
			return Request{}, err
		}
		return VisionRequest(prompt, img), nil
	}
	hint := strings.TrimSpace(modelHint)
	if hint != "" && hint == imageModel {
		return ImageGenerationRequest(prompt), nil
	}
	return TextRequest(prompt, hint), nil
}

// ParseInlineImage accepts either a data URI or bare base64. Bare input is
// assumed to be JPEG.
func ParseInlineImage(raw string) (InlineImage, error) {
	raw = strings.TrimSpace(raw)
	img := InlineImage{MIMEType: defaultInputMIME, Data: raw}
	if strings.HasPrefix(raw, "data:") {
		header, data, ok := strings.Cut(raw, ",")
		if !ok {
			return InlineImage{}, fmt.Errorf("%w: malformed data uri", domain.ErrInvalidInput)
		}
		mime := strings.TrimPrefix(header, "data:")
		mime, _, _ = strings.Cut(mime, ";")
		if mime != "" {
			img.MIMEType = mime
		}
		img.Data = data
	}
	if !strings.HasPrefix(img.MIMEType, "image/") {
		return InlineImage{}, fmt.Errorf("%w: unsupported image type %q", domain.ErrInvalidInput, img.MIMEType)
	}
	if _, err := base64.StdEncoding.DecodeString(img.Data); err != nil {
		return InlineImage{}, fmt.Errorf("%w: image is not valid base64", domain.ErrInvalidInput)
	}
	return img, nil
}

// Validate checks the request before any admission work is done.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" && r.Kind != KindTextWithImage {
		return fmt.Errorf("%w: prompt is required", domain.ErrInvalidInput)
	}
	switch r.Kind {
	case KindText, KindImageGeneration:
		return nil
	case KindTextWithImage:
		if r.Image == nil || r.Image.Data == "" {
			return fmt.Errorf("%w: image is required", domain.ErrInvalidInput)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown request kind %q", domain.ErrInvalidInput, r.Kind)
}

// ResultKind tells text and image results apart.
type ResultKind string

const (
	ResultText  ResultKind = "text"
	ResultImage ResultKind = "image"
)

// Result is the normalized provider answer.
type Result struct {
	Kind  ResultKind
	Text  string
	Image *InlineImage
}

// DataURI renders an image result as a self-describing data URI.
func (r Result) DataURI() string {
	if r.Kind != ResultImage || r.Image == nil {
		return ""
	}
	return "data:" + r.Image.MIMEType + ";base64," + r.Image.Data
}

// Tagged returns the text for text results and ImageTag + data URI for images.
func (r Result) Tagged() string {
	if r.Kind == ResultImage {
		return ImageTag + r.DataURI()
	}
	return r.Text
}
