package interfaces

import "time"

type IStatsClient interface {
	Inc(statName string)
	Timing(statName string, value int64)
	TimingDuration(statName string, value time.Duration)
	Gauge(statName string, value int64)
}
