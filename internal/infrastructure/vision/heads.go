package vision

import "github.com/sirupsen/logrus"

// Options configure the analyzer. The device is chosen once at construction
// and shared read-only by all nets for the process lifetime.
type Options struct {
	ModelDir            string
	UseCUDA             bool
	LocalizerConfidence float64
	CropMargin          int
	Log                 *logrus.Logger
}

// Model file names expected under ModelDir.
const (
	localizerFile    = "localizer.onnx"
	bubblesFile      = "bubbles.onnx"
	edgesFile        = "edges.onnx"
	greaseFile       = "grease.onnx"
	bakeFile         = "bake.onnx"
	distributionFile = "distribution.onnx"
)

// Label vocabularies, in the exact order each classifier was trained with.
// The order is a per-model contract: for the binary heads, index 1 means
// "present" (bubbles/grease) or "dirty" (edges).
var (
	bubblesLabels      = []string{"No", "Si"}
	edgesLabels        = []string{"Limpios", "Sucios"}
	greaseLabels       = []string{"No", "Si"}
	bakeLabels         = []string{"Alto", "Bajo", "Correcto", "Excesivo", "Insuficiente"}
	distributionLabels = []string{"Correcto", "Aceptable", "Media", "Mala", "Deficiente"}
)

// trueIndex is the vocabulary index that maps to true for the binary heads.
const trueIndex = 1
