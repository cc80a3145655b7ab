package catalogue

import "context"

// RelationDerivedFrom is the relationship kind linking a segment item back
// to the carrier's source item.
const RelationDerivedFrom = "derived-from"

// Carrier processing statuses understood by the catalogue.
const (
	CarrierStatusInProgress = "in-progress"
	CarrierStatusComplete   = "complete"
	CarrierStatusFailed     = "failed"
)

// CarrierRecord is the catalogue's view of one digitised tape.
type CarrierRecord struct {
	ID             string   `json:"id"`
	SourceItemID   string   `json:"source_item_id"`
	SourceFile     string   `json:"source_file"`
	Mode           string   `json:"mode"`
	FrameRate      float64  `json:"frame_rate"`
	DurationFrames int64    `json:"duration_frames"`
	Codecs         []string `json:"codecs"`
	Extension      string   `json:"extension"`
}

// SegmentRecord is one human-entered programme segment on a carrier.
type SegmentRecord struct {
	ItemID        string `json:"item_id"`
	Sequence      int    `json:"sequence"`
	StartTimecode string `json:"start_timecode"`
	EndTimecode   string `json:"end_timecode"`
	Title         string `json:"title"`
}

// ItemMetadata is the technical metadata attached to a newly created item.
type ItemMetadata struct {
	SourceItemID   string   `json:"source_item_id"`
	Title          string   `json:"title"`
	Note           string   `json:"note"`
	DurationFrames int64    `json:"duration_frames"`
	FrameRate      float64  `json:"frame_rate"`
	Codecs         []string `json:"codecs"`
	Digest         string   `json:"digest"`
	Extension      string   `json:"extension"`
}

// Client is the catalogue operation set used by the engine.
type Client interface {
	// GetCarrier returns the carrier record and its segments ordered by
	// sequence number.
	GetCarrier(ctx context.Context, id string) (*CarrierRecord, []SegmentRecord, error)
	// CreateItem creates a new catalogued item and returns its identifier.
	CreateItem(ctx context.Context, meta ItemMetadata) (string, error)
	// CreateRelationship links childID to parentID with the given kind.
	CreateRelationship(ctx context.Context, childID, parentID, kind string) error
	// SetCarrierStatus updates the carrier's processing status.
	SetCarrierStatus(ctx context.Context, id, status string) error
	// FindDerivedItem returns the identifier of an item already derived from
	// sourceItemID, or the empty string when none exists.
	FindDerivedItem(ctx context.Context, sourceItemID string) (string, error)
}
