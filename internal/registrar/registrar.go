package registrar

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"reelsplit/internal/carrier"
	"reelsplit/internal/catalogue"
	"reelsplit/internal/config"
	"reelsplit/internal/extract"
	"reelsplit/internal/fileutil"
	"reelsplit/internal/logging"
	"reelsplit/internal/plan"
	"reelsplit/internal/queue"
	"reelsplit/internal/services"
)

// segmentNote is attached to every item the registrar creates so catalogue
// staff can tell machine-created records from hand-entered ones.
const segmentNote = "Autocreated by carrier segmentation"

// Registrar creates catalogue items for verified segments and links them
// back to their source item.
type Registrar struct {
	cfg    *config.Config
	client catalogue.Client
	store  *queue.Store
	logger *slog.Logger
	retry  services.RetryPolicy
}

// New constructs a registrar using the configured catalogue retry budget.
func New(cfg *config.Config, client catalogue.Client, store *queue.Store, logger *slog.Logger) *Registrar {
	policy := services.DefaultRetryPolicy()
	if cfg != nil && cfg.Catalogue.RetryAttempts > 0 {
		policy.Attempts = cfg.Catalogue.RetryAttempts
	}
	return &Registrar{
		cfg:    cfg,
		client: client,
		store:  store,
		logger: logging.NewComponentLogger(logger, "registrar"),
		retry:  policy,
	}
}

// WithRetryPolicy overrides the catalogue retry policy, mainly for tests.
func (r *Registrar) WithRetryPolicy(policy services.RetryPolicy) {
	if r != nil && policy.Attempts > 0 {
		r.retry = policy
	}
}

// Register records one verified segment in the catalogue: it creates the
// item with its technical metadata, links it derived-from to the source
// item, moves the output to its registered filename, and stores the
// (carrier, sequence) registration locally.
//
// A segment that is already registered locally is a no-op success, so an
// interrupted run can be re-driven from the start without duplicating
// catalogue records. Catalogue write failures carry
// services.ErrCatalogueWrite and are retried with backoff before escalating.
func (r *Registrar) Register(ctx context.Context, c *carrier.Carrier, p plan.ExtractionPlan, result extract.VerificationResult, totalSegments int) (queue.Registration, error) {
	seg := p.Segment
	if !result.Equal {
		return queue.Registration{}, services.Wrap(services.ErrVerification, "registrar", "register",
			fmt.Sprintf("segment %d of carrier %s has no passing verification", seg.Sequence, c.ID), nil)
	}

	if existing, err := r.store.GetRegistration(ctx, c.ID, seg.Sequence); err != nil {
		return queue.Registration{}, services.Wrap(services.ErrConfiguration, "registrar", "lookup registration", c.ID, err)
	} else if existing != nil {
		r.logger.Info("segment already registered",
			logging.String(logging.FieldCarrierID, c.ID),
			logging.Int(logging.FieldSegment, seg.Sequence),
			logging.String("item_id", existing.ItemID),
		)
		return *existing, nil
	}

	parentID := seg.ItemID
	if parentID == "" {
		parentID = c.SourceItemID
	}

	digest, err := fileutil.MD5Digest(p.OutputPath)
	if err != nil {
		return queue.Registration{}, services.Wrap(services.ErrExtraction, "registrar", "digest output", p.OutputPath, err)
	}

	itemID, err := r.findOrCreateItem(ctx, c, p, parentID, digest)
	if err != nil {
		return queue.Registration{}, err
	}

	finalPath := r.registeredPath(c, itemID, seg.Sequence, totalSegments)
	if err := fileutil.MoveFile(p.OutputPath, finalPath); err != nil {
		return queue.Registration{}, services.Wrap(services.ErrExtraction, "registrar", "move output", p.OutputPath, err)
	}

	reg := queue.Registration{
		CarrierID:  c.ID,
		Sequence:   seg.Sequence,
		ItemID:     itemID,
		OutputPath: finalPath,
		Digest:     digest,
	}
	if err := r.store.AddRegistration(ctx, reg); err != nil {
		return queue.Registration{}, services.Wrap(services.ErrConfiguration, "registrar", "record registration", c.ID, err)
	}

	r.logger.Info("segment registered",
		logging.String(logging.FieldCarrierID, c.ID),
		logging.Int(logging.FieldSegment, seg.Sequence),
		logging.String("item_id", itemID),
		logging.String("output", finalPath),
	)
	return reg, nil
}

// findOrCreateItem reuses an item already derived from the parent when the
// catalogue has one, otherwise creates the item and its derived-from link.
func (r *Registrar) findOrCreateItem(ctx context.Context, c *carrier.Carrier, p plan.ExtractionPlan, parentID, digest string) (string, error) {
	var existing string
	err := services.Retry(ctx, r.retry, func(ctx context.Context) error {
		var findErr error
		existing, findErr = r.client.FindDerivedItem(ctx, parentID)
		return findErr
	})
	if err != nil {
		return "", err
	}
	if existing != "" {
		r.logger.Info("reusing existing derived item",
			logging.String(logging.FieldCarrierID, c.ID),
			logging.Int(logging.FieldSegment, p.Segment.Sequence),
			logging.String("item_id", existing),
		)
		return existing, nil
	}

	meta := catalogue.ItemMetadata{
		SourceItemID:   parentID,
		Title:          p.Segment.Title,
		Note:           segmentNote,
		DurationFrames: p.Frames(),
		FrameRate:      c.FrameRate,
		Codecs:         c.Codecs,
		Digest:         digest,
		Extension:      c.Extension,
	}

	var itemID string
	err = services.Retry(ctx, r.retry, func(ctx context.Context) error {
		var createErr error
		itemID, createErr = r.client.CreateItem(ctx, meta)
		return createErr
	})
	if err != nil {
		return "", err
	}

	err = services.Retry(ctx, r.retry, func(ctx context.Context) error {
		return r.client.CreateRelationship(ctx, itemID, parentID, catalogue.RelationDerivedFrom)
	})
	if err != nil {
		return "", err
	}
	return itemID, nil
}

func (r *Registrar) registeredPath(c *carrier.Carrier, itemID string, sequence, totalSegments int) string {
	name := fmt.Sprintf("%s_%02dof%02d.%s", itemID, sequence, totalSegments, c.Extension)
	return filepath.Join(r.cfg.Paths.SegmentedDir, c.ID, name)
}
