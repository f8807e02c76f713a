package mocks

import (
	"context"

	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

// MockSettler records settlements and fails them while Err is set.
type MockSettler struct {
	Settlements []*models.Settlement
	Err         error
}

func (s *MockSettler) Settle(ctx context.Context, settlement *models.Settlement) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	s.Settlements = append(s.Settlements, settlement)
	return settlement.Label, nil
}
