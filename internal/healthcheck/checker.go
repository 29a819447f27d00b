package healthcheck

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Performs periodic health checks on the service's dependencies
type Checker struct {
	mu          sync.RWMutex
	targets     map[string]Pinger
	status      map[string]*Status
	interval    time.Duration
	timeout     time.Duration
	maxFailures int
	logger      *zap.Logger
	now         func() time.Time
}

// Holds health checker configuration
type Config struct {
	Interval    time.Duration // How often to check (default: 10s)
	Timeout     time.Duration // Ping timeout (default: 2s)
	MaxFailures int           // Failures before marking unhealthy (default: 1)
}

func NewChecker(targets map[string]Pinger, cfg Config, logger *zap.Logger) *Checker {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 1
	}

	checker := &Checker{
		targets:     targets,
		status:      make(map[string]*Status, len(targets)),
		interval:    cfg.Interval,
		timeout:     cfg.Timeout,
		maxFailures: cfg.MaxFailures,
		logger:      logger,
		now:         time.Now,
	}

	// Assume healthy until the first check says otherwise
	for name := range targets {
		checker.status[name] = &Status{Target: name, IsHealthy: true}
	}

	return checker
}

// Start checks every target immediately and then on each interval until ctx
// is cancelled.
func (c *Checker) Start(ctx context.Context) {
	c.CheckAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.CheckAll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Pings every target concurrently and records the results
func (c *Checker) CheckAll(ctx context.Context) {
	var wg sync.WaitGroup

	for name, target := range c.targets {
		wg.Add(1)
		go func(name string, target Pinger) {
			defer wg.Done()
			c.checkTarget(ctx, name, target)
		}(name, target)
	}

	wg.Wait()
}

func (c *Checker) checkTarget(ctx context.Context, name string, target Pinger) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := target.Ping(ctx); err != nil {
		c.recordFailure(name, err)
		return
	}
	c.recordSuccess(name)
}

// Records a successful health check
func (c *Checker) recordSuccess(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	status := c.status[name]
	status.LastCheck = now
	status.LastSuccess = now
	status.FailureCount = 0
	status.LastError = ""

	if !status.IsHealthy {
		c.logger.Info("dependency is healthy again", zap.String("target", name))
		status.IsHealthy = true
	}
}

// Records a failed health check
func (c *Checker) recordFailure(name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	status := c.status[name]
	status.LastCheck = now
	status.LastFailure = now
	status.LastError = err.Error()
	status.FailureCount++

	if status.IsHealthy && status.FailureCount >= c.maxFailures {
		c.logger.Warn("dependency is unhealthy",
			zap.String("target", name),
			zap.Int("failures", status.FailureCount),
			zap.Error(err),
		)
		status.IsHealthy = false
	}
}

// Returns a copy of every target's status, sorted by name
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	statuses := make([]Status, 0, len(c.status))
	for _, status := range c.status {
		statuses = append(statuses, *status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Target < statuses[j].Target })

	return statuses
}

// Returns the overall health status
func (c *Checker) OverallHealth() HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	healthyCount := 0
	for _, status := range c.status {
		if status.IsHealthy {
			healthyCount++
		}
	}

	switch {
	case healthyCount == len(c.status):
		return Healthy
	case healthyCount == 0:
		return Unhealthy
	default:
		return Degraded
	}
}
