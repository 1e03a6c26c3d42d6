package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"studypath/internal/domain"
)

// OnboardingStore persists the wizard's accumulated data and step number
// so the flow can resume after a restart.
type OnboardingStore struct {
	kv KV
}

// NewOnboardingStore creates an onboarding store over the given KV.
func NewOnboardingStore(kv KV) *OnboardingStore {
	return &OnboardingStore{kv: kv}
}

// LoadData reads the accumulated form data. An absent or corrupt blob
// hydrates as empty data.
func (s *OnboardingStore) LoadData(ctx context.Context) (domain.OnboardingData, error) {
	var data domain.OnboardingData
	raw, err := s.kv.Load(ctx, OnboardingDataKey())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return data, nil
		}
		return data, err
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		_ = s.kv.Clear(ctx, OnboardingDataKey())
		return domain.OnboardingData{}, nil
	}
	return data, nil
}

// SaveData persists the merged form data.
func (s *OnboardingStore) SaveData(ctx context.Context, data domain.OnboardingData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.kv.Save(ctx, OnboardingDataKey(), raw)
}

// LoadStep reads the persisted step number, defaulting to 1.
func (s *OnboardingStore) LoadStep(ctx context.Context) (int, error) {
	raw, err := s.kv.Load(ctx, OnboardingStepKey())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 1, nil
		}
		return 1, err
	}
	step, err := strconv.Atoi(string(raw))
	if err != nil || step < 1 || step > 4 {
		_ = s.kv.Clear(ctx, OnboardingStepKey())
		return 1, nil
	}
	return step, nil
}

// SaveStep persists the current step number.
func (s *OnboardingStore) SaveStep(ctx context.Context, step int) error {
	return s.kv.Save(ctx, OnboardingStepKey(), []byte(strconv.Itoa(step)))
}

// Clear removes both persisted blobs, used after a successful submission
// or an explicit reset.
func (s *OnboardingStore) Clear(ctx context.Context) error {
	if err := s.kv.Clear(ctx, OnboardingDataKey()); err != nil {
		return err
	}
	return s.kv.Clear(ctx, OnboardingStepKey())
}
