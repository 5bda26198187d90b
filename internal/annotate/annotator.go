// Package annotate runs the batch image-annotation pipeline: it walks a
// directory of images, sends each one to the vision model through the
// credential rotator, and streams results to an annotations.jsonl file.
package annotate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KhanhRomVN/termi-tool/internal/accounts"
	"github.com/KhanhRomVN/termi-tool/internal/gemini"
	"github.com/KhanhRomVN/termi-tool/internal/logging"
	"github.com/KhanhRomVN/termi-tool/internal/rotator"
)

// OutputFile is the JSONL file written into the image directory.
const OutputFile = "annotations.jsonl"

var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// AnnotateFunc is the vision call signature; it matches
// (*gemini.Client).AnnotateImage and is injectable for tests.
type AnnotateFunc func(ctx context.Context, apiKey string, image []byte, mimeType, contextDesc string) ([]gemini.Annotation, error)

// Record is one line of annotations.jsonl.
type Record struct {
	Image  string `json:"image"`
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
}

// Result summarizes a batch run.
type Result struct {
	Images      int
	Annotated   int
	Failed      int
	Annotations int
}

// Annotator drives the batch pipeline. One unit of work is in flight at a
// time; the rotator's Execute is never called concurrently.
type Annotator struct {
	annotate AnnotateFunc
	rot      *rotator.Rotator
	vault    *keyVault
	logger   *logging.Logger
	metrics  *Metrics
}

// New builds an annotator over the given account store. API keys are
// sealed into protected memory up front; the rotator sees only account
// names.
func New(store accounts.Store, annotate AnnotateFunc, rotOpts rotator.Options) (*Annotator, error) {
	vault, err := newKeyVault(store)
	if err != nil {
		return nil, err
	}

	rot, err := rotator.New(vault, rotOpts)
	if err != nil {
		return nil, err
	}

	logger := rotOpts.Logger
	if logger == nil {
		logger = logging.New(false, true)
	}

	return &Annotator{
		annotate: annotate,
		rot:      rot,
		vault:    vault,
		logger:   logger,
		metrics:  NewMetrics(),
	}, nil
}

// Close releases the sealed keys.
func (a *Annotator) Close() {
	a.vault.Destroy()
}

// ListImages returns the annotatable files directly inside dir, sorted by
// name. Extensions are matched case-insensitively.
func ListImages(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("invalid directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := imageExtensions[ext]; ok {
			images = append(images, entry.Name())
		}
	}
	sort.Strings(images)

	if len(images) == 0 {
		return nil, fmt.Errorf("no image files found in %s", dir)
	}
	return images, nil
}

// MimeType returns the MIME type for an image filename.
func MimeType(name string) string {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Run annotates every image in dir against the given context description.
// A single exhausted image is reported and skipped; the batch continues.
// Only rotator setup problems and I/O failures abort the run.
func (a *Annotator) Run(ctx context.Context, dir, contextDesc string) (Result, error) {
	var result Result

	images, err := ListImages(dir)
	if err != nil {
		return result, err
	}
	result.Images = len(images)

	outPath := filepath.Join(dir, OutputFile)
	out, err := os.Create(outPath)
	if err != nil {
		return result, fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()
	encoder := json.NewEncoder(out)

	a.logger.Info("annotating %d image(s) in %s", len(images), dir)

	for i, name := range images {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		a.logger.Info("processing image %d/%d: %s", i+1, len(images), name)
		started := time.Now()

		annotations, err := a.annotateOne(ctx, filepath.Join(dir, name), contextDesc)
		if err != nil {
			var exhaustedErr *rotator.ExhaustedError
			if errors.As(err, &exhaustedErr) {
				a.metrics.RecordExhaustion()
				a.metrics.RecordImage("exhausted", time.Since(started).Seconds())
				a.logger.Error("skipping %s: %v", name, err)
				result.Failed++
				if ctx.Err() != nil {
					return result, ctx.Err()
				}
				continue
			}
			a.metrics.RecordImage("error", time.Since(started).Seconds())
			return result, err
		}

		for _, ann := range annotations {
			record := Record{Image: name, Prefix: ann.Prefix, Suffix: ann.Suffix}
			if err := encoder.Encode(record); err != nil {
				return result, fmt.Errorf("failed to write annotation: %w", err)
			}
		}

		a.metrics.RecordImage("ok", time.Since(started).Seconds())
		result.Annotated++
		result.Annotations += len(annotations)
		a.logger.Info("generated %d annotation(s) for %s", len(annotations), name)
	}

	a.logger.Info("annotation complete, results in %s", outPath)
	return result, nil
}

func (a *Annotator) annotateOne(ctx context.Context, path, contextDesc string) ([]gemini.Annotation, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	mime := MimeType(path)

	return rotator.Execute(ctx, a.rot, func(ctx context.Context, cred accounts.Credential) ([]gemini.Annotation, error) {
		var annotations []gemini.Annotation
		err := a.vault.Reveal(cred.Name, func(key string) error {
			var callErr error
			annotations, callErr = a.annotate(ctx, key, image, mime, contextDesc)
			return callErr
		})
		if err != nil {
			a.metrics.RecordAttempt(cred.Name, "failure")
			return nil, err
		}
		a.metrics.RecordAttempt(cred.Name, "success")
		return annotations, nil
	})
}
