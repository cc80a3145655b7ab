package carrier

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"reelsplit/internal/catalogue"
	"reelsplit/internal/config"
	"reelsplit/internal/logging"
	"reelsplit/internal/services"
)

// Loader builds carrier models from the collections catalogue. Reads are
// retried with the configured backoff budget; the loader performs no writes.
type Loader struct {
	cfg    *config.Config
	client catalogue.Client
	logger *slog.Logger
	retry  services.RetryPolicy
}

// NewLoader constructs a Loader.
func NewLoader(cfg *config.Config, client catalogue.Client, logger *slog.Logger) *Loader {
	policy := services.DefaultRetryPolicy()
	if cfg != nil && cfg.Catalogue.RetryAttempts > 0 {
		policy.Attempts = cfg.Catalogue.RetryAttempts
	}
	return &Loader{
		cfg:    cfg,
		client: client,
		logger: logging.NewComponentLogger(logger, "loader"),
		retry:  policy,
	}
}

// Load fetches the carrier and its ordered segments and resolves timecodes
// to frame offsets.
func (l *Loader) Load(ctx context.Context, carrierID string) (*Carrier, error) {
	var (
		record   *catalogue.CarrierRecord
		segments []catalogue.SegmentRecord
	)
	err := services.Retry(ctx, l.retry, func(ctx context.Context) error {
		var err error
		record, segments, err = l.client.GetCarrier(ctx, carrierID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "loader", "load",
			fmt.Sprintf("carrier %s has no documented segments", carrierID), nil)
	}

	frameRate := record.FrameRate
	if frameRate <= 0 {
		frameRate = l.cfg.Splitting.DefaultFrameRate
		l.logger.Warn("carrier has no frame rate, using configured default",
			logging.String(logging.FieldCarrierID, carrierID),
			logging.Float64("frame_rate", frameRate),
		)
	}

	model := &Carrier{
		ID:           record.ID,
		SourceItemID: record.SourceItemID,
		SourcePath:   record.SourceFile,
		Mode:         ParseMode(record.Mode, len(segments)),
		FrameRate:    frameRate,
		TotalFrames:  record.DurationFrames,
		Codecs:       record.Codecs,
		Extension:    strings.TrimPrefix(record.Extension, "."),
	}
	if model.ID == "" {
		model.ID = carrierID
	}
	if model.SourcePath == "" {
		model.SourcePath = filepath.Join(l.cfg.Paths.ProcessingDir, model.ID+"."+model.Extension)
	}

	sort.Slice(segments, func(i, j int) bool { return segments[i].Sequence < segments[j].Sequence })
	for _, seg := range segments {
		start, err := ParseTimecode(seg.StartTimecode, frameRate)
		if err != nil {
			return nil, services.Wrap(services.ErrTimingValidation, "loader", "parse timecode",
				fmt.Sprintf("segment %d start", seg.Sequence), err)
		}
		end, err := ParseTimecode(seg.EndTimecode, frameRate)
		if err != nil {
			return nil, services.Wrap(services.ErrTimingValidation, "loader", "parse timecode",
				fmt.Sprintf("segment %d end", seg.Sequence), err)
		}
		model.Segments = append(model.Segments, Segment{
			ItemID:   seg.ItemID,
			Sequence: seg.Sequence,
			Start:    start,
			End:      end,
			Title:    seg.Title,
		})
	}

	l.logger.Info("carrier model loaded",
		logging.String(logging.FieldCarrierID, model.ID),
		logging.Int("segment_count", len(model.Segments)),
		logging.String("mode", string(model.Mode)),
		logging.Int64("total_frames", model.TotalFrames),
	)
	return model, nil
}

// CarrierIDFromPath derives a carrier identifier from a digitisation file
// path. The file stem is the physical label written by the digitisation
// workflow; the extension must be one of the configured formats.
func (l *Loader) CarrierIDFromPath(path string) (string, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return "", services.Wrap(services.ErrNotFound, "loader", "derive carrier id",
			fmt.Sprintf("file %s has no extension", base), nil)
	}
	if !l.cfg.AcceptsExtension(ext) {
		return "", services.Wrap(services.ErrNotFound, "loader", "derive carrier id",
			fmt.Sprintf("extension %s is not an accepted digitisation format", ext), nil)
	}
	id := strings.TrimSuffix(base, ext)
	if id == "" {
		return "", services.Wrap(services.ErrNotFound, "loader", "derive carrier id",
			fmt.Sprintf("file %s has no usable stem", base), nil)
	}
	return id, nil
}
