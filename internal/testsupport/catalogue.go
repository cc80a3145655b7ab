package testsupport

import (
	"context"
	"fmt"
	"sync"

	"reelsplit/internal/catalogue"
	"reelsplit/internal/services"
)

// FakeCatalogue is an in-memory catalogue.Client for tests. Zero value is
// usable; populate Carriers/Segments before calling GetCarrier.
type FakeCatalogue struct {
	mu sync.Mutex

	Carriers map[string]*catalogue.CarrierRecord
	Segments map[string][]catalogue.SegmentRecord

	CreatedItems    []catalogue.ItemMetadata
	Relationships   [][3]string
	CarrierStatuses map[string]string
	DerivedItems    map[string]string

	GetCarrierErr    error
	CreateItemErr    error
	RelationshipErr  error
	SetStatusErr     error
	FindDerivedErr   error
	GetCarrierCalls  int
	CreateItemCalls  int
	SetStatusCalls   int
	nextItemSequence int
}

// NewFakeCatalogue returns an empty fake ready for population.
func NewFakeCatalogue() *FakeCatalogue {
	return &FakeCatalogue{
		Carriers:        map[string]*catalogue.CarrierRecord{},
		Segments:        map[string][]catalogue.SegmentRecord{},
		CarrierStatuses: map[string]string{},
		DerivedItems:    map[string]string{},
	}
}

// AddCarrier registers a carrier record and its segments.
func (f *FakeCatalogue) AddCarrier(record catalogue.CarrierRecord, segments ...catalogue.SegmentRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := record
	f.Carriers[record.ID] = &copied
	f.Segments[record.ID] = append([]catalogue.SegmentRecord{}, segments...)
}

func (f *FakeCatalogue) GetCarrier(_ context.Context, id string) (*catalogue.CarrierRecord, []catalogue.SegmentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetCarrierCalls++
	if f.GetCarrierErr != nil {
		return nil, nil, f.GetCarrierErr
	}
	record, ok := f.Carriers[id]
	if !ok {
		return nil, nil, services.Wrap(services.ErrNotFound, "catalogue", "get carrier", id, nil)
	}
	copied := *record
	return &copied, append([]catalogue.SegmentRecord{}, f.Segments[id]...), nil
}

func (f *FakeCatalogue) CreateItem(_ context.Context, meta catalogue.ItemMetadata) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateItemCalls++
	if f.CreateItemErr != nil {
		return "", f.CreateItemErr
	}
	f.CreatedItems = append(f.CreatedItems, meta)
	f.nextItemSequence++
	return fmt.Sprintf("C-9%04d", f.nextItemSequence), nil
}

func (f *FakeCatalogue) CreateRelationship(_ context.Context, childID, parentID, kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RelationshipErr != nil {
		return f.RelationshipErr
	}
	f.Relationships = append(f.Relationships, [3]string{childID, parentID, kind})
	return nil
}

func (f *FakeCatalogue) SetCarrierStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SetStatusCalls++
	if f.SetStatusErr != nil {
		return f.SetStatusErr
	}
	f.CarrierStatuses[id] = status
	return nil
}

func (f *FakeCatalogue) FindDerivedItem(_ context.Context, sourceItemID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FindDerivedErr != nil {
		return "", f.FindDerivedErr
	}
	return f.DerivedItems[sourceItemID], nil
}

var _ catalogue.Client = (*FakeCatalogue)(nil)
