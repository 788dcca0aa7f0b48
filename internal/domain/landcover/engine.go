package landcover

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Engine computes products for single pixels. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	cfg       Config
	validator *Validator
	logger    *slog.Logger
}

// NewEngine wires the engine with an immutable configuration.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		validator: NewValidator(len(cfg.Classes)),
		logger:    logger.With("component", "landcover.engine"),
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// CharacterizeInputs validates the raw pixel inputs and characterizes them at date.
// Invalid inputs are not an error: they produce a pixel without segments.
func (e *Engine) CharacterizeInputs(px, py int64, date int, segments []RawSegment, predictions []RawPrediction) (CharacterizedPixel, error) {
	if !e.validator.ValidSegments(segments) || !e.validator.ValidPredictions(predictions) {
		return CharacterizedPixel{Px: px, Py: py, Date: date}, nil
	}
	inputs, err := ParseInputs(segments, predictions)
	if err != nil {
		return CharacterizedPixel{Px: px, Py: py, Date: date}, nil
	}
	return CharacterizePixel(e.cfg, px, py, date, inputs)
}

// Products assembles the output record of a characterized pixel.
func (e *Engine) Products(pixel CharacterizedPixel) (Product, error) {
	product := Product{Px: pixel.Px, Py: pixel.Py, Date: FormatOrdinal(pixel.Date)}
	if len(pixel.Segments) == 0 {
		product.LCPri = e.cfg.Landcover.NoModel
		product.LCSec = e.cfg.Landcover.NoModel
		product.LCPriConf = e.cfg.Confidence.NoModel
		product.LCSecConf = e.cfg.Confidence.NoModel
		product.LCChange = e.cfg.Landcover.NoModel
		return product, nil
	}
	product.LCPri = Landcover(e.cfg, pixel, 0)
	product.LCSec = Landcover(e.cfg, pixel, 1)
	product.LCPriConf = Confidence(e.cfg, pixel, 0)
	product.LCSecConf = Confidence(e.cfg, pixel, 1)
	change, err := Change(e.cfg, pixel)
	if err != nil {
		return Product{}, dataGenerationError("change", err, pixelFields(pixel.Px, pixel.Py, pixel.Date))
	}
	product.LCChange = change
	return product, nil
}

// PixelProduct runs characterization and product assembly for one pixel.
// Errors and panics come back as data generation errors naming the failing operation.
func (e *Engine) PixelProduct(px, py int64, date int, segments []RawSegment, predictions []RawPrediction) (product Product, err error) {
	operation := "characterize-inputs"
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("pixel computation panicked",
				"operation", operation, "px", px, "py", py, "date", FormatOrdinal(date),
				"panic", r, "stack", string(debug.Stack()))
			err = dataGenerationError(operation, fmt.Errorf("panic: %v", r), pixelFields(px, py, date))
		}
	}()

	pixel, err := e.CharacterizeInputs(px, py, date, segments, predictions)
	if err != nil {
		e.logger.Error("pixel characterization failed", "px", px, "py", py, "date", FormatOrdinal(date), "error", err)
		return Product{}, dataGenerationError(operation, err, pixelFields(px, py, date))
	}
	operation = "products"
	product, err = e.Products(pixel)
	if err != nil {
		e.logger.Error("pixel products failed", "px", px, "py", py, "date", FormatOrdinal(date), "error", err)
		return Product{}, err
	}
	return product, nil
}

func pixelFields(px, py int64, date int) map[string]any {
	return map[string]any{"px": px, "py": py, "date": FormatOrdinal(date)}
}
