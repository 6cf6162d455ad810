// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
)

// HealthPoller brings the client back online. While offline it probes the
// health endpoint every interval and reports online on the first success.
type HealthPoller struct {
	checker      HealthChecker
	connectivity ConnectivityTracker
	healthURL    string
	interval     time.Duration

	logger *logger.Logger
}

func NewHealthPoller(
	checker HealthChecker,
	connectivity ConnectivityTracker,
	healthURL string,
	interval time.Duration,
	log *logger.Logger,
) *HealthPoller {
	return &HealthPoller{
		checker:      checker,
		connectivity: connectivity,
		healthURL:    healthURL,
		interval:     interval,
		logger:       log,
	}
}

func (p *HealthPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *HealthPoller) poll(ctx context.Context) {
	if p.connectivity.IsOnline() {
		return
	}

	if err := p.checker.CheckHealth(ctx, p.healthURL); err != nil {
		p.logger.Debug().Err(err).Str("func", "HealthPoller.poll").Msg("server still unavailable")
		return
	}
	p.connectivity.GoOnline()
}
