package mocks

import (
	"context"
	"sync"

	"gitlab.com/crypto_project/core/delegate_vault/src/models"
)

type MockJournal struct {
	mu      sync.Mutex
	Entries []models.JournalEntry
	Err     error
}

func (j *MockJournal) Record(ctx context.Context, entry models.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Err != nil {
		return j.Err
	}
	j.Entries = append(j.Entries, entry)
	return nil
}

func (j *MockJournal) Recorded() []models.JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]models.JournalEntry(nil), j.Entries...)
}
