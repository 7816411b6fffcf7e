package service

import (
	"context"
	"sync"

	"toll_plaza/internal/domain"
	"toll_plaza/internal/repository"
)

type fakeDetector struct {
	detections []domain.Detection
	err        error
	calls      int
}

func (f *fakeDetector) Detect(_ context.Context, _ []byte) ([]domain.Detection, error) {
	f.calls++
	return f.detections, f.err
}

type fakeRecognizer struct {
	text  *domain.RecognizedText
	err   error
	calls int
	hints []*domain.RegionHint
	// onCall runs before the fake answers, e.g. to cancel the caller's context.
	onCall func()
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ []byte, hint *domain.RegionHint) (*domain.RecognizedText, error) {
	f.calls++
	f.hints = append(f.hints, hint)
	if f.onCall != nil {
		f.onCall()
	}
	return f.text, f.err
}

type fakeRegistry struct {
	mu       sync.Mutex
	vehicles map[string]*domain.VehicleRecord
	recent   *domain.VehicleRecord
	err      error
	// nilRecord makes every lookup answer (nil, nil).
	nilRecord bool
	lookups   []string
}

func (f *fakeRegistry) FindByLicense(ctx context.Context, license string) (*domain.VehicleRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, license)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.nilRecord {
		return nil, nil
	}
	if v, ok := f.vehicles[license]; ok {
		return v, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRegistry) FindMostRecent(_ context.Context) (*domain.VehicleRecord, error) {
	if f.recent == nil {
		return nil, repository.ErrNotFound
	}
	return f.recent, nil
}

type fakeTollEvents struct {
	mu          sync.Mutex
	created     []*domain.TollEvent
	err         error
	prunedDays  []int
	pruneResult int64
}

func (f *fakeTollEvents) Create(_ context.Context, e *domain.TollEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	e.ID = int64(len(f.created) + 1)
	f.created = append(f.created, e)
	return nil
}

func (f *fakeTollEvents) FindRecent(_ context.Context, limit int) ([]domain.TollEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.TollEvent{}
	for i := len(f.created) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *f.created[i])
	}
	return out, nil
}

func (f *fakeTollEvents) DeleteOlderThan(_ context.Context, days int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prunedDays = append(f.prunedDays, days)
	return f.pruneResult, nil
}

func plateText(full string) *domain.RecognizedText {
	return domain.NewRecognizedText(full, []float64{0.99, 0.9, 0.0, 0.7})
}

func sampleVehicle() *domain.VehicleRecord {
	return &domain.VehicleRecord{
		ID:          7,
		License:     "ঢাকা-মেট্রো-গ-১২-৩৪৫৬",
		Owner:       "Rahim Uddin",
		VehicleType: "car",
		TollAmount:  100,
	}
}
