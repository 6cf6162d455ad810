package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	movingaverage "github.com/RobinUS2/golang-moving-average"
)

const statsWindow = 20

// StatsMonitor keeps reconciliation stats and logs a report every
// interval.
type StatsMonitor struct {
	mu       sync.Mutex
	messages int
	passes   int
	changed  int
	deleted  int
	passDur  *movingaverage.MovingAverage
	interval time.Duration

	logger *logger.Logger
}

func NewStatsMonitor(interval time.Duration, log *logger.Logger) *StatsMonitor {
	return &StatsMonitor{
		passDur:  movingaverage.New(statsWindow),
		interval: interval,
		logger:   log,
	}
}

// ObserveMessage counts one received autoupdate message.
func (m *StatsMonitor) ObserveMessage() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages++
}

// ObserveReconciliation records one committed reconciliation pass.
func (m *StatsMonitor) ObserveReconciliation(duration time.Duration, changed, deleted int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.passDur.Add(float64(duration/time.Microsecond) / 1000.0)
	m.passes++
	m.changed += changed
	m.deleted += deleted
}

func (m *StatsMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.report()
		}
	}
}

// Report is a snapshot of one stats period.
type Report struct {
	MessagesPerSecond float64
	PassesPerSecond   float64
	Changed           int
	Deleted           int
	AvgPassMillis     float64
}

func (m *StatsMonitor) report() Report {
	m.mu.Lock()
	seconds := m.interval.Seconds()
	r := Report{
		MessagesPerSecond: float64(m.messages) / seconds,
		PassesPerSecond:   float64(m.passes) / seconds,
		Changed:           m.changed,
		Deleted:           m.deleted,
		AvgPassMillis:     m.passDur.Avg(),
	}
	m.messages, m.passes, m.changed, m.deleted = 0, 0, 0, 0
	m.mu.Unlock()

	m.logger.Info().
		Str("func", "StatsMonitor.report").
		Float64("messages_per_sec", r.MessagesPerSecond).
		Float64("passes_per_sec", r.PassesPerSecond).
		Int("changed", r.Changed).
		Int("deleted", r.Deleted).
		Float64("avg_pass_ms", r.AvgPassMillis).
		Msg("autoupdate stats")
	return r
}
