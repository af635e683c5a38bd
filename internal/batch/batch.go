// Package batch runs one upload pass over an ordered list of items.
//
// A run is strictly sequential: each item is loaded, optionally prepared, named and uploaded
// before the next one starts, and every item produces exactly one result. Per-item failures
// are recorded in the result and never stop the run.
package batch

import (
	"context"
	"strings"
	"time"

	"decalup/internal/imageprep"
	"decalup/internal/models"
	"decalup/internal/naming"
	"decalup/internal/source"
	"decalup/pkg/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// State is the orchestrator's position in a run.
type State int

const (
	NotStarted State = iota
	Validating
	Processing
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Validating:
		return "validating"
	case Processing:
		return "processing"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Config is built once before a run and not modified during it.
type Config struct {
	AccessKey   string
	OwnerID     string
	Description string
	ContentType string
	Naming      naming.Strategy
	Delay       time.Duration
	Prepare     imageprep.Options
}

// Uploader performs one asset upload and describes any failure in the result.
type Uploader interface {
	UploadAsset(ctx context.Context, req models.AssetRequest) models.UploadResult
}

// ProgressFunc is called after each item with its 0-based index.
type ProgressFunc func(index, total int, result models.UploadResult)

type Option func(*Orchestrator)

// WithSleep replaces the pause between items.
func WithSleep(sleep func(time.Duration)) Option {
	return func(o *Orchestrator) {
		o.sleep = sleep
	}
}

func WithProgress(progress ProgressFunc) Option {
	return func(o *Orchestrator) {
		o.progress = progress
	}
}

// WithWarningsShown marks naming warnings as already shown to the operator.
// They are still recorded in the report but not logged again.
func WithWarningsShown() Option {
	return func(o *Orchestrator) {
		o.warningsShown = true
	}
}

type Orchestrator struct {
	uploader      Uploader
	sleep         func(time.Duration)
	progress      ProgressFunc
	warningsShown bool
	state         State
	current       int
}

func New(uploader Uploader, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		uploader: uploader,
		sleep:    time.Sleep,
		state:    NotStarted,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State reports where the last run got to.
func (o *Orchestrator) State() State {
	return o.state
}

// Current is the 0-based index of the item being processed.
func (o *Orchestrator) Current() int {
	return o.current
}

// Validate checks the preconditions of a run without touching the network.
func Validate(cfg Config, items []source.Item) error {
	if strings.TrimSpace(cfg.AccessKey) == "" {
		return ErrNoAccessKey
	}
	if len(items) == 0 {
		return ErrNoItems
	}
	if strings.TrimSpace(cfg.OwnerID) == "" {
		return ErrNoOwnerID
	}
	return nil
}

// Run processes items in order. An error is returned only when validation fails.
func (o *Orchestrator) Run(ctx context.Context, cfg Config, items []source.Item) (*models.BatchReport, error) {
	o.state = Validating
	if err := Validate(cfg, items); err != nil {
		return nil, err
	}

	report := &models.BatchReport{
		RunID:     uuid.NewString(),
		Results:   make([]models.UploadResult, 0, len(items)),
		Total:     len(items),
		StartedAt: time.Now(),
	}

	for _, warning := range cfg.Naming.Check(len(items)) {
		if !o.warningsShown {
			log.Warn().Str("runId", report.RunID).Msg(warning.String())
		}
		report.Warnings = append(report.Warnings, warning.String())
	}

	contentType := cfg.ContentType
	if contentType == "" {
		contentType = models.ContentTypePNG
	}
	prepare := cfg.Prepare
	prepare.ContentType = contentType

	log.Info().
		Str("runId", report.RunID).
		Int("items", len(items)).
		Str("naming", cfg.Naming.Kind.String()).
		Dur("delay", cfg.Delay).
		Msg("Batch started")

	o.state = Processing
	for i, item := range items {
		o.current = i

		result, size := o.process(ctx, cfg, prepare, contentType, i, item)
		report.TotalSizeBytes += size
		if result.Success {
			report.SuccessCount++
		}
		report.Results = append(report.Results, result)

		if o.progress != nil {
			o.progress(i, len(items), result)
		}

		if cfg.Delay > 0 && i < len(items)-1 {
			o.sleep(cfg.Delay)
		}
	}

	o.state = Completed
	report.TotalSizeHuman = utils.FormatBytes(report.TotalSizeBytes)
	report.Duration = time.Since(report.StartedAt).String()

	log.Info().
		Str("runId", report.RunID).
		Int("succeeded", report.SuccessCount).
		Int("total", report.Total).
		Str("duration", report.Duration).
		Msg("Batch completed")

	return report, nil
}

func (o *Orchestrator) process(ctx context.Context, cfg Config, prepare imageprep.Options, contentType string, index int, item source.Item) (models.UploadResult, int64) {
	data, err := item.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Int("index", index).Msg("Item could not be loaded")
		return models.UploadResult{File: item.Source(), Error: err.Error()}, 0
	}

	data, err = imageprep.Prepare(data, prepare)
	if err != nil {
		log.Warn().Err(err).Str("file", item.Name()).Msg("Image preparation failed")
		return models.UploadResult{File: item.Source(), Error: err.Error()}, 0
	}

	name := cfg.Naming.Resolve(index, item.Name())
	result := o.uploader.UploadAsset(ctx, models.AssetRequest{
		AccessKey:   cfg.AccessKey,
		Image:       data,
		FileName:    item.Name(),
		Name:        name,
		Description: cfg.Description,
		OwnerID:     cfg.OwnerID,
		ContentType: contentType,
	})
	result.File = item.Name()
	result.Name = name
	return result, int64(len(data))
}

// PlannedItem is what a run would send for one item.
type PlannedItem struct {
	Index  int    `json:"index"`
	File   string `json:"file"`
	Source string `json:"source"`
	Name   string `json:"name"`
}

// Plan resolves names without loading or uploading anything.
func Plan(cfg Config, items []source.Item) []PlannedItem {
	planned := make([]PlannedItem, 0, len(items))
	for i, item := range items {
		planned = append(planned, PlannedItem{
			Index:  i + 1,
			File:   item.Name(),
			Source: item.Source(),
			Name:   cfg.Naming.Resolve(i, item.Name()),
		})
	}
	return planned
}
