package analysis

import (
	"errors"
	"maps"
	"slices"

	"github.com/kailas-cloud/prodsnap/internal/domain"
)

// ErrInvalidAnalysis signals an analysis outside its schema bounds.
var ErrInvalidAnalysis = errors.New("invalid analysis")

// schema mirrors Result for validation.
type schema struct {
	DetectedObjects []string `json:"detected_objects"`
	PrimaryCategory string   `json:"primary_category" validate:"max=100"`
	Colors          []string `json:"colors"`
	Materials       []string `json:"materials"`
	Confidence      float64  `json:"confidence" validate:"gte=0,lte=1"`
}

// Result is the classification output for one image.
type Result struct {
	detectedObjects []string
	primaryCategory string
	colors          []string
	materials       []string
	confidence      float64
	features        map[string]any
}

// New validates and creates an analysis Result. Confidence must be in [0, 1].
func New(
	detectedObjects []string, primaryCategory string,
	colors, materials []string, confidence float64,
	features map[string]any,
) (Result, error) {
	s := schema{
		DetectedObjects: detectedObjects,
		PrimaryCategory: primaryCategory,
		Colors:          colors,
		Materials:       materials,
		Confidence:      confidence,
	}
	if err := domain.ValidateStruct(ErrInvalidAnalysis, s); err != nil {
		return Result{}, err
	}
	return Result{
		detectedObjects: slices.Clone(detectedObjects),
		primaryCategory: primaryCategory,
		colors:          slices.Clone(colors),
		materials:       slices.Clone(materials),
		confidence:      confidence,
		features:        maps.Clone(features),
	}, nil
}

// DetectedObjects returns the detected object labels.
func (r Result) DetectedObjects() []string { return slices.Clone(r.detectedObjects) }

// PrimaryCategory returns the category used for catalog matching ("" if none).
func (r Result) PrimaryCategory() string { return r.primaryCategory }

// Colors returns the detected colors.
func (r Result) Colors() []string { return slices.Clone(r.colors) }

// Materials returns the detected materials.
func (r Result) Materials() []string { return slices.Clone(r.materials) }

// Confidence returns the classifier confidence in [0, 1].
func (r Result) Confidence() float64 { return r.confidence }

// Features returns the free-form extracted features.
func (r Result) Features() map[string]any { return maps.Clone(r.features) }

// Image describes a submitted photo. Content is not inspected by the mock analyzer.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
}
