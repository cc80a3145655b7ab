package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"reelsplit/internal/carrier"
	"reelsplit/internal/catalogue"
	"reelsplit/internal/config"
	"reelsplit/internal/extract"
	"reelsplit/internal/logging"
	"reelsplit/internal/plan"
	"reelsplit/internal/queue"
	"reelsplit/internal/registrar"
	"reelsplit/internal/services"
	"reelsplit/internal/timing"
)

// RunResult summarizes one carrier's trip through the pipeline.
type RunResult struct {
	CarrierID          string
	Status             queue.Status
	SegmentsTotal      int
	SegmentsRegistered int
	CompletionMarker   string
}

// Orchestrator sequences the loader, validator, planner, extractor and
// registrar for one carrier at a time.
type Orchestrator struct {
	cfg       *config.Config
	store     *queue.Store
	client    catalogue.Client
	loader    *carrier.Loader
	extractor *extract.Extractor
	registrar *registrar.Registrar
	logger    *slog.Logger
	retry     services.RetryPolicy
}

// NewOrchestrator wires the pipeline components together.
func NewOrchestrator(cfg *config.Config, store *queue.Store, client catalogue.Client, extractor *extract.Extractor, logger *slog.Logger) *Orchestrator {
	policy := services.DefaultRetryPolicy()
	if cfg != nil && cfg.Catalogue.RetryAttempts > 0 {
		policy.Attempts = cfg.Catalogue.RetryAttempts
	}
	return &Orchestrator{
		cfg:       cfg,
		store:     store,
		client:    client,
		loader:    carrier.NewLoader(cfg, client, logger),
		extractor: extractor,
		registrar: registrar.New(cfg, client, store, logger),
		logger:    logging.NewComponentLogger(logger, "workflow"),
		retry:     policy,
	}
}

// WithRetryPolicy overrides the catalogue retry policy, mainly for tests.
func (o *Orchestrator) WithRetryPolicy(policy services.RetryPolicy) {
	if o == nil || policy.Attempts <= 0 {
		return
	}
	o.retry = policy
	o.registrar.WithRetryPolicy(policy)
}

// ProcessCarrier drives one carrier from pending to completed. Progress is
// persisted after every transition, and already-registered segments are
// skipped, so re-driving a partially processed or completed carrier performs
// no duplicate catalogue writes.
//
// Failures are forward-only: a failure at segment k leaves the
// registrations for earlier segments standing.
func (o *Orchestrator) ProcessCarrier(ctx context.Context, carrierID string) (RunResult, error) {
	run, err := o.store.NewRun(ctx, carrierID, "")
	if err != nil {
		return RunResult{CarrierID: carrierID}, services.Wrap(services.ErrConfiguration, "workflow", "open run", carrierID, err)
	}
	if run.Status == queue.StatusCompleted {
		o.logger.Info("carrier already completed",
			logging.String(logging.FieldCarrierID, carrierID),
		)
		return RunResult{
			CarrierID:          carrierID,
			Status:             queue.StatusCompleted,
			SegmentsTotal:      run.SegmentsTotal,
			SegmentsRegistered: run.SegmentsDone,
			CompletionMarker:   o.completionMarkerPath(carrierID),
		}, nil
	}

	run.CorrelationID = uuid.NewString()
	run.ErrorMessage = ""
	logger := o.logger.With(
		logging.String(logging.FieldCarrierID, carrierID),
		logging.String(logging.FieldCorrelationID, run.CorrelationID),
	)

	if err := o.transition(ctx, run, queue.StatusLoading, "Loading carrier model"); err != nil {
		return o.fail(ctx, run, err)
	}
	model, err := o.loader.Load(ctx, carrierID)
	if err != nil {
		return o.fail(ctx, run, err)
	}
	run.SourcePath = model.SourcePath
	run.Mode = string(model.Mode)

	if err := o.transition(ctx, run, queue.StatusValidating, "Validating segment timings"); err != nil {
		return o.fail(ctx, run, err)
	}
	validated, err := timing.Validate(model)
	if err != nil {
		return o.fail(ctx, run, err)
	}

	if err := o.transition(ctx, run, queue.StatusPlanning, "Planning extraction windows"); err != nil {
		return o.fail(ctx, run, err)
	}
	plans := plan.Build(validated, o.cfg.Splitting.HandleFrames, o.cfg.Paths.ProcessingDir)
	run.SegmentsTotal = len(plans)
	run.SegmentsDone = 0

	o.markInProgress(ctx, model, logger)

	for i, p := range plans {
		progress := fmt.Sprintf("Segment %d of %d", i+1, len(plans))

		existing, err := o.store.GetRegistration(ctx, model.ID, p.Segment.Sequence)
		if err != nil {
			return o.fail(ctx, run, services.Wrap(services.ErrConfiguration, "workflow", "lookup registration", model.ID, err))
		}
		if existing != nil {
			run.SegmentsDone++
			logger.Info("segment already registered, skipping",
				logging.Int(logging.FieldSegment, p.Segment.Sequence),
				logging.String("item_id", existing.ItemID),
			)
			continue
		}

		if err := o.transition(ctx, run, queue.StatusExtracting, progress); err != nil {
			return o.fail(ctx, run, err)
		}
		result, err := o.extractor.Extract(ctx, model, p)
		if err != nil {
			return o.fail(ctx, run, err)
		}

		if err := o.transition(ctx, run, queue.StatusRegistering, progress); err != nil {
			return o.fail(ctx, run, err)
		}
		if _, err := o.registrar.Register(ctx, model, p, result, len(plans)); err != nil {
			return o.fail(ctx, run, err)
		}

		run.SegmentsDone++
		if err := o.store.Update(ctx, run); err != nil {
			return o.fail(ctx, run, services.Wrap(services.ErrConfiguration, "workflow", "persist progress", model.ID, err))
		}
	}

	marker, err := o.complete(ctx, run, model)
	if err != nil {
		return o.fail(ctx, run, err)
	}

	logger.Info("carrier segmentation completed",
		logging.Int("segments", run.SegmentsDone),
		logging.String("marker", marker),
	)
	return RunResult{
		CarrierID:          carrierID,
		Status:             queue.StatusCompleted,
		SegmentsTotal:      run.SegmentsTotal,
		SegmentsRegistered: run.SegmentsDone,
		CompletionMarker:   marker,
	}, nil
}

func (o *Orchestrator) transition(ctx context.Context, run *queue.Run, status queue.Status, message string) error {
	run.Status = status
	run.SetProgress(statusStageLabel(status), message)
	if err := o.store.Update(ctx, run); err != nil {
		return services.Wrap(services.ErrConfiguration, "workflow", "persist transition", run.CarrierID, err)
	}
	return nil
}

// markInProgress flags the carrier in the catalogue. Best effort: a flagging
// failure must not fail a run the pipeline can still complete.
func (o *Orchestrator) markInProgress(ctx context.Context, model *carrier.Carrier, logger *slog.Logger) {
	err := services.Retry(ctx, o.retry, func(ctx context.Context) error {
		return o.client.SetCarrierStatus(ctx, model.ID, catalogue.CarrierStatusInProgress)
	})
	if err != nil {
		logger.Warn("could not flag carrier in progress", logging.Error(err))
	}
}

func (o *Orchestrator) complete(ctx context.Context, run *queue.Run, model *carrier.Carrier) (string, error) {
	err := services.Retry(ctx, o.retry, func(ctx context.Context) error {
		return o.client.SetCarrierStatus(ctx, model.ID, catalogue.CarrierStatusComplete)
	})
	if err != nil {
		return "", err
	}

	marker := o.completionMarkerPath(model.ID)
	if err := os.MkdirAll(filepath.Dir(marker), 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "workflow", "completion marker", model.ID, err)
	}
	content := fmt.Sprintf("carrier_id=%s\ncompleted_at=%s\nsegments=%d\n",
		model.ID, time.Now().UTC().Format(time.RFC3339), run.SegmentsDone)
	if err := os.WriteFile(marker, []byte(content), 0o644); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "workflow", "completion marker", model.ID, err)
	}

	run.Status = queue.StatusCompleted
	run.SetProgress("Completed", fmt.Sprintf("%d segments registered", run.SegmentsDone))
	if err := o.store.Update(ctx, run); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "workflow", "persist completion", model.ID, err)
	}
	return marker, nil
}

// fail persists the failure and best-effort flags the carrier in the
// catalogue. The original error is returned for batch-level reporting.
func (o *Orchestrator) fail(ctx context.Context, run *queue.Run, cause error) (RunResult, error) {
	run.SetFailed(cause.Error())
	if err := o.store.Update(ctx, run); err != nil {
		o.logger.Error("could not persist run failure",
			logging.String(logging.FieldCarrierID, run.CarrierID),
			logging.Error(err),
		)
	}
	statusErr := services.Retry(ctx, o.retry, func(ctx context.Context) error {
		return o.client.SetCarrierStatus(ctx, run.CarrierID, catalogue.CarrierStatusFailed)
	})
	if statusErr != nil {
		o.logger.Warn("could not flag carrier failure in catalogue",
			logging.String(logging.FieldCarrierID, run.CarrierID),
			logging.Error(statusErr),
		)
	}
	o.logger.Error("carrier segmentation failed",
		logging.String(logging.FieldCarrierID, run.CarrierID),
		logging.Error(cause),
	)
	return RunResult{
		CarrierID:          run.CarrierID,
		Status:             queue.StatusFailed,
		SegmentsTotal:      run.SegmentsTotal,
		SegmentsRegistered: run.SegmentsDone,
	}, cause
}

// completionMarkerPath is the flag file consumed by the downstream source
// deletion process.
func (o *Orchestrator) completionMarkerPath(carrierID string) string {
	return filepath.Join(o.cfg.Paths.SegmentedDir, carrierID, carrierID+".complete")
}

func statusStageLabel(status queue.Status) string {
	switch status {
	case queue.StatusLoading:
		return "Loading"
	case queue.StatusValidating:
		return "Validating"
	case queue.StatusPlanning:
		return "Planning"
	case queue.StatusExtracting:
		return "Extracting"
	case queue.StatusRegistering:
		return "Registering"
	case queue.StatusCompleted:
		return "Completed"
	default:
		return string(status)
	}
}
