// Package monitoring samples server health gauges and logs them.
package monitoring

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Probe reports the current value of a gauge such as active matches
type Probe func() int

// Monitor periodically samples the goroutine count and registered probes.
// It warns when goroutines pass the alert threshold, at most once per
// cooldown.
type Monitor struct {
	mu             sync.RWMutex
	baseline       int
	current        int
	peak           int
	checkInterval  time.Duration
	alertThreshold int
	alertCooldown  time.Duration
	lastAlert      time.Time
	probes         map[string]Probe
	gauges         map[string]int

	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
	now      func() time.Time
	logger   zerolog.Logger
}

// Options configures a Monitor. Zero values select the defaults.
type Options struct {
	CheckInterval  time.Duration
	AlertThreshold int
	AlertCooldown  time.Duration
	Now            func() time.Time
}

// New creates a monitor; call Start to begin sampling
func New(opts Options, logger zerolog.Logger) *Monitor {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = 30 * time.Second
	}
	if opts.AlertThreshold <= 0 {
		opts.AlertThreshold = 1000
	}
	if opts.AlertCooldown <= 0 {
		opts.AlertCooldown = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	baseline := runtime.NumGoroutine()
	return &Monitor{
		baseline:       baseline,
		current:        baseline,
		peak:           baseline,
		checkInterval:  opts.CheckInterval,
		alertThreshold: opts.AlertThreshold,
		alertCooldown:  opts.AlertCooldown,
		probes:         make(map[string]Probe),
		gauges:         make(map[string]int),
		stopChan:       make(chan struct{}),
		now:            opts.Now,
		logger:         logger.With().Str("component", "Monitor").Logger(),
	}
}

// RegisterProbe adds a named gauge sampled on every check
func (m *Monitor) RegisterProbe(name string, p Probe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probes[name] = p
}

// Start begins periodic sampling
func (m *Monitor) Start() {
	m.wg.Add(1)
	go m.run()
	m.logger.Info().Int("baseline", m.baseline).Msg("Started monitoring")
}

// Stop ends sampling. It is safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
	m.wg.Wait()
}

func (m *Monitor) run() {
	defer m.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().Interface("panic", r).Msg("Monitor panicked")
		}
	}()

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Check()
		case <-m.stopChan:
			return
		}
	}
}

// Check samples every gauge once and logs the result
func (m *Monitor) Check() Metrics {
	m.mu.RLock()
	probes := make(map[string]Probe, len(m.probes))
	for name, p := range m.probes {
		probes[name] = p
	}
	m.mu.RUnlock()

	// probes may take their own locks
	gauges := make(map[string]int, len(probes))
	for name, p := range probes {
		gauges[name] = p()
	}
	current := runtime.NumGoroutine()
	now := m.now()

	m.mu.Lock()
	m.current = current
	if current > m.peak {
		m.peak = current
	}
	m.gauges = gauges
	shouldAlert := current > m.alertThreshold && now.Sub(m.lastAlert) > m.alertCooldown
	if shouldAlert {
		m.lastAlert = now
	}
	metrics := m.metricsLocked()
	m.mu.Unlock()

	ev := m.logger.Debug().
		Int("goroutines", metrics.Goroutines).
		Int("baseline", metrics.Baseline).
		Int("peak", metrics.Peak)
	for _, name := range sortedKeys(gauges) {
		ev = ev.Int(name, gauges[name])
	}
	ev.Msg("Server metrics")

	if shouldAlert {
		m.logger.Warn().
			Int("goroutines", current).
			Int("threshold", m.alertThreshold).
			Msg("High goroutine count detected - possible leak")
	}
	return metrics
}

// Metrics returns the most recent sample
func (m *Monitor) Metrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metricsLocked()
}

func (m *Monitor) metricsLocked() Metrics {
	gauges := make(map[string]int, len(m.gauges))
	for k, v := range m.gauges {
		gauges[k] = v
	}
	return Metrics{
		Goroutines: m.current,
		Baseline:   m.baseline,
		Peak:       m.peak,
		Growth:     m.current - m.baseline,
		Gauges:     gauges,
	}
}

// Metrics contains one sample
type Metrics struct {
	Goroutines int            `json:"goroutines"`
	Baseline   int            `json:"baseline"`
	Peak       int            `json:"peak"`
	Growth     int            `json:"growth"`
	Gauges     map[string]int `json:"gauges"`
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
