package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"regexp"
	"strconv"
	"strings"

	_ "golang.org/x/image/webp"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrCategoryMismatch  = errors.New("category not allowed for product type")
	ErrInvalidImage      = errors.New("invalid image")
	ErrImageTooLarge     = errors.New("image too large")
	ErrResolutionTooLow  = errors.New("image resolution below minimum")
	ErrResolutionTooHigh = errors.New("image resolution above maximum")
)

type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Resolution) String() string {
	return strconv.Itoa(r.Width) + "x" + strconv.Itoa(r.Height)
}

// ParseResolution parses "WIDTHxHEIGHT".
func ParseResolution(s string) (Resolution, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Resolution{}, fmt.Errorf("resolution %q: want WIDTHxHEIGHT", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return Resolution{}, fmt.Errorf("resolution %q: bad width", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return Resolution{}, fmt.Errorf("resolution %q: bad height", s)
	}
	return Resolution{Width: width, Height: height}, nil
}

type ImageLimits struct {
	Min      Resolution
	Max      Resolution
	MaxBytes int64
}

var DefaultImageLimits = ImageLimits{
	Min:      Resolution{Width: 400, Height: 400},
	Max:      Resolution{Width: 800, Height: 800},
	MaxBytes: 3 << 20,
}

// Image is an uploaded product picture that has not been stored yet.
type Image struct {
	Filename string
	Data     []byte
}

// Validate checks the image size and decodes its header to check the
// pixel dimensions. Height and width are compared against their own bounds.
func (l ImageLimits) Validate(img Image) (Resolution, error) {
	if l.MaxBytes > 0 && int64(len(img.Data)) > l.MaxBytes {
		return Resolution{}, fmt.Errorf("%w: %d bytes, max %d", ErrImageTooLarge, len(img.Data), l.MaxBytes)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	got := Resolution{Width: cfg.Width, Height: cfg.Height}

	if got.Height < l.Min.Height || got.Width < l.Min.Width {
		return got, fmt.Errorf("%w: got %s, min %s", ErrResolutionTooLow, got, l.Min)
	}
	if got.Height > l.Max.Height || got.Width > l.Max.Width {
		return got, fmt.Errorf("%w: got %s, max %s", ErrResolutionTooHigh, got, l.Max)
	}
	return got, nil
}

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

func validateFields(p *Product) error {
	p.Title = strings.TrimSpace(p.Title)
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Title == "" || p.Slug == "" {
		return fmt.Errorf("%w: title and slug are required", ErrInvalidInput)
	}
	if !slugPattern.MatchString(p.Slug) {
		return fmt.Errorf("%w: slug %q may only contain letters, digits, '-' and '_'", ErrInvalidInput, p.Slug)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return nil
}
