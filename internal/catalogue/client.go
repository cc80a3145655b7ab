package catalogue

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"reelsplit/internal/config"
	"reelsplit/internal/services"
)

// RESTClient implements Client against the collections catalogue HTTP API.
type RESTClient struct {
	resty *resty.Client
}

// New constructs a catalogue client from configuration. Transport-level
// retries are left to the caller's services.Retry budget so that read and
// write classification stays with the engine.
func New(cfg *config.Config) *RESTClient {
	client := resty.New()
	client.SetBaseURL(cfg.Catalogue.BaseURL)
	client.SetHeader("accept", "application/json")
	if cfg.Catalogue.APIKey != "" {
		client.SetAuthToken(cfg.Catalogue.APIKey)
	}
	client.SetTimeout(time.Duration(cfg.Catalogue.TimeoutSeconds) * time.Second)
	client.SetDisableWarn(true)
	return &RESTClient{resty: client}
}

type carrierPayload struct {
	Carrier  CarrierRecord   `json:"carrier"`
	Segments []SegmentRecord `json:"segments"`
}

// GetCarrier fetches the carrier record and its ordered segments.
func (c *RESTClient) GetCarrier(ctx context.Context, id string) (*CarrierRecord, []SegmentRecord, error) {
	var payload carrierPayload
	resp, err := c.resty.R().
		SetContext(ctx).
		SetResult(&payload).
		Get("/carriers/" + id)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrCatalogueUnavailable, "catalogue", "get carrier", id, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil, services.Wrap(services.ErrNotFound, "catalogue", "get carrier", fmt.Sprintf("carrier %s not in catalogue", id), nil)
	}
	if resp.IsError() {
		return nil, nil, services.Wrap(services.ErrCatalogueUnavailable, "catalogue", "get carrier", httpDetail(resp), nil)
	}
	carrier := payload.Carrier
	return &carrier, payload.Segments, nil
}

type createItemResponse struct {
	ID string `json:"id"`
}

// CreateItem creates a new item record carrying technical metadata.
func (c *RESTClient) CreateItem(ctx context.Context, meta ItemMetadata) (string, error) {
	var result createItemResponse
	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(meta).
		SetResult(&result).
		Post("/items")
	if err != nil {
		return "", services.Wrap(services.ErrCatalogueWrite, "catalogue", "create item", meta.Title, err)
	}
	if resp.IsError() {
		return "", services.Wrap(services.ErrCatalogueWrite, "catalogue", "create item", httpDetail(resp), nil)
	}
	if result.ID == "" {
		return "", services.Wrap(services.ErrCatalogueWrite, "catalogue", "create item", "catalogue returned no item id", nil)
	}
	return result.ID, nil
}

// CreateRelationship links a new item to its source item.
func (c *RESTClient) CreateRelationship(ctx context.Context, childID, parentID, kind string) error {
	body := map[string]string{
		"child_id":  childID,
		"parent_id": parentID,
		"kind":      kind,
	}
	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(body).
		Post("/relationships")
	if err != nil {
		return services.Wrap(services.ErrCatalogueWrite, "catalogue", "create relationship", childID, err)
	}
	if resp.IsError() {
		return services.Wrap(services.ErrCatalogueWrite, "catalogue", "create relationship", httpDetail(resp), nil)
	}
	return nil
}

// SetCarrierStatus updates the carrier processing status.
func (c *RESTClient) SetCarrierStatus(ctx context.Context, id, status string) error {
	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(map[string]string{"status": status}).
		Put("/carriers/" + id + "/status")
	if err != nil {
		return services.Wrap(services.ErrCatalogueWrite, "catalogue", "set carrier status", id, err)
	}
	if resp.IsError() {
		return services.Wrap(services.ErrCatalogueWrite, "catalogue", "set carrier status", httpDetail(resp), nil)
	}
	return nil
}

type derivedItemsResponse struct {
	Items []createItemResponse `json:"items"`
}

// FindDerivedItem looks up an existing item derived from the source item.
func (c *RESTClient) FindDerivedItem(ctx context.Context, sourceItemID string) (string, error) {
	var result derivedItemsResponse
	resp, err := c.resty.R().
		SetContext(ctx).
		SetQueryParam("derived_from", sourceItemID).
		SetResult(&result).
		Get("/items")
	if err != nil {
		return "", services.Wrap(services.ErrCatalogueUnavailable, "catalogue", "find derived item", sourceItemID, err)
	}
	if resp.IsError() {
		return "", services.Wrap(services.ErrCatalogueUnavailable, "catalogue", "find derived item", httpDetail(resp), nil)
	}
	if len(result.Items) == 0 {
		return "", nil
	}
	return result.Items[0].ID, nil
}

func httpDetail(resp *resty.Response) string {
	return fmt.Sprintf("unexpected status %d: %s", resp.StatusCode(), resp.String())
}

var _ Client = (*RESTClient)(nil)
