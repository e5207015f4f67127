//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"gocv.io/x/gocv"

	"gritsee-inspector/internal/domain/entity"
	"gritsee-inspector/internal/domain/port"
)

const (
	classifierSide = 224
	localizerSide  = 640
)

// head is one classification model with its ordered label vocabulary.
// A head whose weights failed to load keeps loaded=false and answers with
// its fallback (index 0) at inference time.
type head struct {
	name   string
	labels []string
	net    gocv.Net
	loaded bool
}

// Analyzer owns the localizer and the five classifier nets. All nets are
// loaded once and never mutated afterwards, so concurrent Analyze calls are
// safe as long as each call works on its own Mats.
type Analyzer struct {
	opts Options

	localizer       gocv.Net
	localizerLoaded bool

	bubbles      head
	edges        head
	grease       head
	bake         head
	distribution head
}

// NewAnalyzer loads every model found under opts.ModelDir. A missing or
// broken weight file degrades that head to its fallback with a logged
// warning; it never fails construction.
func NewAnalyzer(opts Options) *Analyzer {
	a := &Analyzer{opts: opts}

	a.localizer, a.localizerLoaded = a.loadNet(localizerFile)
	a.bubbles = a.loadHead("bubbles", bubblesFile, bubblesLabels)
	a.edges = a.loadHead("edges", edgesFile, edgesLabels)
	a.grease = a.loadHead("grease", greaseFile, greaseLabels)
	a.bake = a.loadHead("bake", bakeFile, bakeLabels)
	a.distribution = a.loadHead("distribution", distributionFile, distributionLabels)

	return a
}

func (a *Analyzer) loadHead(name, file string, labels []string) head {
	net, ok := a.loadNet(file)
	return head{name: name, labels: labels, net: net, loaded: ok}
}

func (a *Analyzer) loadNet(file string) (gocv.Net, bool) {
	path := filepath.Join(a.opts.ModelDir, file)
	net := gocv.ReadNetFromONNX(path)
	if net.Empty() {
		if a.opts.Log != nil {
			a.opts.Log.Warnf("model %s not loaded, falling back for its dimension", file)
		}
		return net, false
	}

	if a.opts.UseCUDA {
		net.SetPreferableBackend(gocv.NetBackendCUDA)
		net.SetPreferableTarget(gocv.NetTargetCUDA)
	} else {
		net.SetPreferableBackend(gocv.NetBackendDefault)
		net.SetPreferableTarget(gocv.NetTargetCPU)
	}
	return net, true
}

// Close releases the loaded nets.
func (a *Analyzer) Close() {
	if a.localizerLoaded {
		a.localizer.Close()
	}
	for _, h := range []*head{&a.bubbles, &a.edges, &a.grease, &a.bake, &a.distribution} {
		if h.loaded {
			h.net.Close()
		}
	}
}

// Analyze crops the product out of the image and runs the five classifiers
// on the same normalized region.
func (a *Analyzer) Analyze(ctx context.Context, imagePath string) (entity.Observations, error) {
	_ = ctx

	mat := gocv.IMRead(imagePath, gocv.IMReadColor)
	if mat.Empty() {
		return entity.Observations{}, fmt.Errorf("%w: %s", entity.ErrDecode, imagePath)
	}
	defer mat.Close()

	crop := mat
	cropIsView := false
	if region, ok := a.localize(mat); ok {
		region = region.Expand(a.opts.CropMargin, mat.Cols(), mat.Rows())
		if region.Width > 0 && region.Height > 0 {
			rect := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)
			crop = mat.Region(rect)
			cropIsView = true
		}
	}
	if cropIsView {
		defer crop.Close()
	}

	blob := a.classifierBlob(crop)
	defer blob.Close()

	obs := entity.Observations{
		HasBubbles:        a.predictBool(&a.bubbles, blob),
		DirtyEdges:        a.predictBool(&a.edges, blob),
		HasGrease:         a.predictBool(&a.grease, blob),
		BakeClass:         a.predictLabel(&a.bake, blob),
		DistributionClass: a.predictLabel(&a.distribution, blob),
	}
	return obs, nil
}

// localize runs the detector over the full frame and returns the highest
// confidence box, if any clears the confidence threshold.
func (a *Analyzer) localize(mat gocv.Mat) (entity.Region, bool) {
	if !a.localizerLoaded {
		return entity.Region{}, false
	}

	blob := gocv.BlobFromImage(mat, 1.0/255.0,
		image.Pt(localizerSide, localizerSide), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	a.localizer.SetInput(blob, "")
	out := a.localizer.Forward("")
	defer out.Close()

	data, err := out.DataPtrFloat32()
	if err != nil {
		return entity.Region{}, false
	}

	dims := out.Size()
	if len(dims) < 2 {
		return entity.Region{}, false
	}
	rows := dims[len(dims)-2]
	cols := dims[len(dims)-1]
	if cols < 5 {
		return entity.Region{}, false
	}

	best := entity.Region{}
	found := false
	scaleX := float64(mat.Cols()) / float64(localizerSide)
	scaleY := float64(mat.Rows()) / float64(localizerSide)

	for r := 0; r < rows; r++ {
		row := data[r*cols : (r+1)*cols]
		conf := float64(row[4])
		if cols > 5 {
			// single-class detector: objectness * class score
			conf *= float64(row[5])
		}
		if conf < a.opts.LocalizerConfidence {
			continue
		}
		if found && conf <= best.Confidence {
			continue
		}

		cx, cy := float64(row[0])*scaleX, float64(row[1])*scaleY
		w, h := float64(row[2])*scaleX, float64(row[3])*scaleY
		best = entity.Region{
			X:          int(cx - w/2),
			Y:          int(cy - h/2),
			Width:      int(w),
			Height:     int(h),
			Confidence: conf,
		}
		found = true
	}
	return best, found
}

// classifierBlob normalizes a crop the way the classifiers were trained:
// 224x224, RGB, ImageNet mean subtraction. blobFromImage only takes a single
// scale factor, so the per-channel std is approximated by the averaged std.
func (a *Analyzer) classifierBlob(crop gocv.Mat) gocv.Mat {
	mean := gocv.NewScalar(0.485*255.0, 0.456*255.0, 0.406*255.0, 0)
	scale := 1.0 / (255.0 * 0.226)
	return gocv.BlobFromImage(crop, scale, image.Pt(classifierSide, classifierSide), mean, true, false)
}

func (a *Analyzer) predictBool(h *head, blob gocv.Mat) bool {
	return a.argmax(h, blob) == trueIndex
}

func (a *Analyzer) predictLabel(h *head, blob gocv.Mat) string {
	idx := a.argmax(h, blob)
	if idx < 0 || idx >= len(h.labels) {
		idx = 0
	}
	return h.labels[idx]
}

// argmax runs one head and returns the winning class index, or the fallback
// index 0 when the head never loaded.
func (a *Analyzer) argmax(h *head, blob gocv.Mat) int {
	if !h.loaded {
		// fallback: first label for class heads, false for binary heads
		return 0
	}

	h.net.SetInput(blob, "")
	out := h.net.Forward("")
	defer out.Close()

	best := 0
	bestVal := out.GetFloatAt(0, 0)
	for i := 1; i < out.Cols(); i++ {
		if v := out.GetFloatAt(0, i); v > bestVal {
			bestVal = v
			best = i
		}
	}
	return best
}

var _ port.ImageAnalyzer = (*Analyzer)(nil)
