package fingerprint

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/photo-culler/internal/constants"
)

// ErrLengthMismatch is returned when two hashes of different length are compared.
var ErrLengthMismatch = errors.New("hash length mismatch")

// Hasher computes channelled average hashes. The hash has one bit per pixel
// per RGB channel of the downscaled image, so its length is width*height*3.
type Hasher struct {
	width  int
	height int
}

// NewHasher creates a hasher for the given downscaled size.
func NewHasher(width, height int) *Hasher {
	return &Hasher{width: width, height: height}
}

// Length returns the length of every hash this hasher produces.
func (h *Hasher) Length() int {
	return h.width * h.height * 3
}

// ComputeFile decodes the image at path and hashes it.
func (h *Hasher) ComputeFile(path string) (string, error) {
	img, err := LoadImage(path)
	if err != nil {
		return "", err
	}
	return h.Compute(img), nil
}

// Compute hashes an already decoded image.
// Bits are laid out as all red bits, then green, then blue, each row-major.
// A bit is 1 when the channel value is above that channel's mean.
func (h *Hasher) Compute(img image.Image) string {
	small := resizeImage(img, h.width, h.height)

	pixels := h.width * h.height
	channels := [3][]float64{
		make([]float64, 0, pixels),
		make([]float64, 0, pixels),
		make([]float64, 0, pixels),
	}
	for y := range h.height {
		for x := range h.width {
			c := small.RGBAAt(x, y)
			channels[0] = append(channels[0], float64(c.R))
			channels[1] = append(channels[1], float64(c.G))
			channels[2] = append(channels[2], float64(c.B))
		}
	}

	var sb strings.Builder
	sb.Grow(h.Length())
	for _, values := range channels {
		mean := computeMean(values)
		for _, v := range values {
			if v > mean {
				sb.WriteByte(constants.HashBitOne)
			} else {
				sb.WriteByte(constants.HashBitZero)
			}
		}
	}
	return sb.String()
}

// Zero returns the all-zero hash used when hashing is switched off.
func Zero(length int) string {
	return strings.Repeat(string(rune(constants.HashBitZero)), length)
}

// HammingDistance counts the positions at which two equal-length hashes differ.
func HammingDistance(hash1, hash2 string) (int, error) {
	if len(hash1) != len(hash2) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(hash1), len(hash2))
	}
	distance := 0
	for i := range len(hash1) {
		if hash1[i] != hash2[i] {
			distance++
		}
	}
	return distance, nil
}

// DistancePercent is the Hamming distance as a percentage of the hash length.
func DistancePercent(hash1, hash2 string) (float64, error) {
	distance, err := HammingDistance(hash1, hash2)
	if err != nil {
		return 0, err
	}
	if len(hash1) == 0 {
		return 0, nil
	}
	return 100 * float64(distance) / float64(len(hash1)), nil
}

// LoadImage decodes an image file, applying its EXIF orientation.
func LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// resizeImage scales an image to the specified dimensions.
func resizeImage(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// computeMean returns the arithmetic mean of a slice.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
