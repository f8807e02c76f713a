package statsd_client

import (
	"fmt"
	"time"

	"github.com/cactus/go-statsd-client/statsd"
	"go.uber.org/zap"
)

// StatsdClient with a nil Client drops every stat, so a failed Init disables metrics
// without failing the service.
type StatsdClient struct {
	Client *statsd.Statter
	Log    *zap.Logger
}

func (sd *StatsdClient) Init(host string, port int, prefix string) {
	if sd.Log == nil {
		sd.Log, _ = zap.NewProduction()
	}
	if host == "" {
		sd.Log.Info("no statsd host, stats disabled")
		return
	}
	sd.Log.Info("connecting",
		zap.String("host", host),
		zap.Int("port", port),
	)
	config := &statsd.ClientConfig{
		Address:       fmt.Sprintf("%s:%d", host, port),
		Prefix:        prefix,
		FlushInterval: 1000 * time.Millisecond, // fixed max delay for alerts
	}
	client, err := statsd.NewClientWithConfig(config)
	if err != nil {
		sd.Log.Error("StatsD init error, disabling stats", zap.Error(err))
		return
	}
	sd.Client = &client
	sd.Log.Info("StatsD init successful.")
}

func (sd *StatsdClient) Inc(statName string) {
	if sd.Client != nil {
		err := (*sd.Client).Inc(statName, 1, 1.0)
		if err != nil {
			sd.Log.Error("Error on Statsd Inc", zap.Error(err))
		}
	}
}

func (sd *StatsdClient) Timing(statName string, value int64) {
	if sd.Client != nil {
		err := (*sd.Client).Timing(statName, value, 1.0)
		if err != nil {
			sd.Log.Error("Error on Statsd Timing", zap.Error(err))
		}
	}
}

func (sd *StatsdClient) TimingDuration(statName string, value time.Duration) {
	if sd.Client != nil {
		err := (*sd.Client).TimingDuration(statName, value, 1.0)
		if err != nil {
			sd.Log.Error("Error on Statsd TimeDuration", zap.Error(err))
		}
	}
}

func (sd *StatsdClient) Gauge(statName string, value int64) {
	if sd.Client != nil {
		err := (*sd.Client).Gauge(statName, value, 1.0)
		if err != nil {
			sd.Log.Error("Error on Statsd Gauge", zap.Error(err))
		}
	}
}

func (sd *StatsdClient) Close() {
	if sd.Client != nil {
		_ = (*sd.Client).Close()
	}
}
