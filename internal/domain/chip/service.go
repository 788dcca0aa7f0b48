package chip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/landcover"
	apperrors "github.com/caustin-usgs/lcmap-gaia/pkg/errors"
	"github.com/caustin-usgs/lcmap-gaia/pkg/metrics"
	"github.com/caustin-usgs/lcmap-gaia/pkg/util"
)

const tracerName = "gaia.chip"

// Config drives chip generation.
type Config struct {
	// Product names the product family in object keys.
	Product string
	Format  Format
	// Workers bounds per pixel parallelism within a date. Zero means one per CPU.
	Workers int
	// QueryDay is the MM-DD used when a request names years instead of dates.
	QueryDay string
	Retry    RetryPolicy
}

// Service generates, persists and reads back chip products.
type Service struct {
	cfg     Config
	engine  *landcover.Engine
	source  Source
	storage ObjectStorage
	runs    RunRepository
	tracer  trace.Tracer
	sleep   SleepFunc
	logger  *slog.Logger
}

// NewService constructs a Service. A nil tracer provider falls back to the global one.
func NewService(cfg Config, engine *landcover.Engine, source Source, storage ObjectStorage, runs RunRepository, tp trace.TracerProvider, logger *slog.Logger) *Service {
	if cfg.Format == "" {
		cfg.Format = FormatJSON
	}
	if cfg.QueryDay == "" {
		cfg.QueryDay = "07-01"
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Service{
		cfg:     cfg,
		engine:  engine,
		source:  source,
		storage: storage,
		runs:    runs,
		tracer:  tp.Tracer(tracerName),
		sleep:   sleepContext,
		logger:  logger.With("component", "chip.service"),
	}
}

// Request names a chip and the dates to generate.
type Request struct {
	Cx    int64    `json:"cx"`
	Cy    int64    `json:"cy"`
	Dates []string `json:"dates"`
	Years []int    `json:"years"`
}

// Result is returned once every requested date has been persisted.
type Result struct {
	RunID   uuid.UUID `json:"runId"`
	Cx      int64     `json:"cx"`
	Cy      int64     `json:"cy"`
	Outputs []Output  `json:"outputs"`
}

// Generate runs the whole chip: fetch, group, compute and persist each date in turn.
// Any failure aborts the chip and marks the run failed; there is no partial success.
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	dates, err := s.resolveDates(req)
	if err != nil {
		return Result{}, apperrors.Wrap("invalid_input", err.Error(), nil)
	}

	ctx, span := s.tracer.Start(ctx, "chip.Generate",
		trace.WithAttributes(
			attribute.Int64("chip.cx", req.Cx),
			attribute.Int64("chip.cy", req.Cy),
			attribute.StringSlice("chip.dates", dates),
		),
	)
	defer span.End()

	start := time.Now()
	now := util.NowUTC()
	run := Run{
		ID:        uuid.New(),
		Cx:        req.Cx,
		Cy:        req.Cy,
		Dates:     dates,
		Status:    RunStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return Result{}, apperrors.Wrap("storage_error", "failed to record run", err)
	}
	if err := s.runs.UpdateStatus(ctx, run.ID, RunStatusRunning, nil); err != nil {
		return Result{}, apperrors.Wrap("storage_error", "failed to update run", err)
	}
	s.logger.Info("chip generation start", "run_id", run.ID, "cx", req.Cx, "cy", req.Cy, "dates", dates)

	fail := func(err error) (Result, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		reason := err.Error()
		if uerr := s.runs.UpdateStatus(context.WithoutCancel(ctx), run.ID, RunStatusFailed, &reason); uerr != nil {
			s.logger.Warn("mark run failed", "run_id", run.ID, "error", uerr)
		}
		metrics.ChipsTotal.WithLabelValues("failed").Inc()
		s.logger.Error("chip generation failed", "run_id", run.ID, "cx", req.Cx, "cy", req.Cy, "error", err)
		return Result{}, err
	}
	fields := func(operation string, extra ...any) map[string]any {
		f := map[string]any{"operation": operation, "cx": req.Cx, "cy": req.Cy, "dates": dates}
		for i := 0; i+1 < len(extra); i += 2 {
			f[fmt.Sprint(extra[i])] = extra[i+1]
		}
		return f
	}

	inputs, err := s.source.Fetch(ctx, req.Cx, req.Cy)
	if err != nil {
		return fail(apperrors.WrapWith(landcover.CodeDataGeneration, "fetch chip inputs failed", err, fields("fetch")))
	}
	pixels := GroupByPixel(inputs)
	span.SetAttributes(attribute.Int("chip.pixels", len(pixels)))

	result := Result{RunID: run.ID, Cx: req.Cx, Cy: req.Cy, Outputs: make([]Output, 0, len(dates))}
	for _, date := range dates {
		ord, err := landcover.ParseOrdinal(date)
		if err != nil {
			return fail(apperrors.WrapWith("invalid_input", "invalid date", err, fields("products", "date", date)))
		}
		products, err := s.products(ctx, pixels, ord)
		if err != nil {
			return fail(apperrors.WrapWith(landcover.CodeDataGeneration, "compute products failed", err, fields("products", "date", date)))
		}
		output, err := s.persist(ctx, req.Cx, req.Cy, date, products)
		if err != nil {
			return fail(apperrors.WrapWith("storage_error", "persist products failed", err, fields("persist", "date", date)))
		}
		if err := s.runs.AppendOutput(ctx, run.ID, output); err != nil {
			return fail(apperrors.Wrap("storage_error", "failed to record output", err))
		}
		result.Outputs = append(result.Outputs, output)
	}

	if err := s.runs.UpdateStatus(ctx, run.ID, RunStatusComplete, nil); err != nil {
		return fail(apperrors.Wrap("storage_error", "failed to complete run", err))
	}
	metrics.ChipsTotal.WithLabelValues("complete").Inc()
	metrics.ChipDuration.Observe(time.Since(start).Seconds())
	span.SetStatus(codes.Ok, "")
	s.logger.Info("chip generation complete", "run_id", run.ID, "cx", req.Cx, "cy", req.Cy,
		"pixels", len(pixels), "duration", time.Since(start))
	return result, nil
}

// products computes every pixel of one date on a bounded pool. The first failure cancels the rest.
func (s *Service) products(ctx context.Context, pixels []PixelInputs, date int) ([]landcover.Product, error) {
	ctx, span := s.tracer.Start(ctx, "chip.products",
		trace.WithAttributes(attribute.String("chip.date", landcover.FormatOrdinal(date))))
	defer span.End()

	out := make([]landcover.Product, len(pixels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i, p := range pixels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			product, err := s.engine.PixelProduct(p.Px, p.Py, date, p.Segments, p.Predictions)
			if err != nil {
				return err
			}
			out[i] = product
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	noModel := 0
	for _, p := range out {
		if p.LCPri == s.engine.Config().Landcover.NoModel {
			noModel++
		}
	}
	metrics.ProductsTotal.WithLabelValues("model").Add(float64(len(out) - noModel))
	metrics.ProductsTotal.WithLabelValues("no_model").Add(float64(noModel))
	return out, nil
}

func (s *Service) persist(ctx context.Context, cx, cy int64, date string, products []landcover.Product) (Output, error) {
	payload, err := s.cfg.Format.Encode(products)
	if err != nil {
		return Output{}, fmt.Errorf("encode %s: %w", s.cfg.Format, err)
	}
	key := ProductKey(s.cfg.Format, s.cfg.Product, cx, cy, date)

	var stored StoredObject
	observe := func(outcome string) {
		metrics.PersistAttempts.WithLabelValues(outcome).Inc()
		if outcome == "retry" {
			s.logger.Warn("persist failed, retrying", "key", key)
		}
	}
	err = Retry(ctx, s.cfg.Retry, s.sleep, observe, func(ctx context.Context) error {
		obj, err := s.storage.Put(ctx, key, payload, s.cfg.Format.MimeType())
		if err != nil {
			return err
		}
		stored = obj
		return nil
	})
	if err != nil {
		return Output{}, err
	}
	return Output{Date: date, Key: stored.Key, Records: len(products), Size: stored.Size, ETag: stored.ETag}, nil
}

func (s *Service) workers() int {
	if s.cfg.Workers > 0 {
		return s.cfg.Workers
	}
	return runtime.NumCPU()
}

// resolveDates merges explicit dates with years expanded on the configured query day, keeping request order.
func (s *Service) resolveDates(req Request) ([]string, error) {
	seen := make(map[string]struct{}, len(req.Dates)+len(req.Years))
	var dates []string
	add := func(date string) error {
		if _, err := landcover.ParseOrdinal(date); err != nil {
			return fmt.Errorf("invalid date %q", date)
		}
		if _, dup := seen[date]; dup {
			return nil
		}
		seen[date] = struct{}{}
		dates = append(dates, date)
		return nil
	}
	for _, d := range req.Dates {
		if err := add(strings.TrimSpace(d)); err != nil {
			return nil, err
		}
	}
	for _, y := range req.Years {
		if y < 1 || y > 9999 {
			return nil, fmt.Errorf("invalid year %d", y)
		}
		if err := add(fmt.Sprintf("%04d-%s", y, s.cfg.QueryDay)); err != nil {
			return nil, err
		}
	}
	if len(dates) == 0 {
		return nil, errors.New("at least one date or year is required")
	}
	return dates, nil
}

// Describe returns the ledger entry of a run.
func (s *Service) Describe(ctx context.Context, id uuid.UUID) (Run, error) {
	run, found, err := s.runs.Get(ctx, id)
	if err != nil {
		return Run{}, apperrors.Wrap("storage_error", "failed to load run", err)
	}
	if !found {
		return Run{}, apperrors.Wrap("not_found", "run not found", nil)
	}
	return run, nil
}

// Product reads back the persisted products of one chip date.
func (s *Service) Product(ctx context.Context, cx, cy int64, date string) ([]landcover.Product, error) {
	if _, err := landcover.ParseOrdinal(date); err != nil {
		return nil, apperrors.Wrap("invalid_input", "date must be YYYY-MM-DD", err)
	}
	key := ProductKey(s.cfg.Format, s.cfg.Product, cx, cy, date)
	rc, err := s.storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, apperrors.Wrap("not_found", "product not found", err)
		}
		return nil, apperrors.Wrap("storage_error", "failed to read product", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to read product", err)
	}
	products, err := s.cfg.Format.Decode(data)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to decode product", err)
	}
	return products, nil
}
