package mocks

import (
	"sync"
	"time"
)

// MockStatsdClient counts stats instead of sending them.
type MockStatsdClient struct {
	mu     sync.Mutex
	Counts map[string]int64
	Gauges map[string]int64
}

func NewMockedStatsdClient() *MockStatsdClient {
	return &MockStatsdClient{Counts: map[string]int64{}, Gauges: map[string]int64{}}
}

func (sd *MockStatsdClient) Inc(statName string) {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	sd.Counts[statName]++
}

func (sd *MockStatsdClient) Timing(statName string, value int64) {

}

func (sd *MockStatsdClient) TimingDuration(statName string, value time.Duration) {

}

func (sd *MockStatsdClient) Gauge(statName string, value int64) {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	sd.Gauges[statName] = value
}

func (sd *MockStatsdClient) Count(statName string) int64 {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	return sd.Counts[statName]
}
