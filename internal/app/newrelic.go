package app

import (
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"

	"rideengine/internal/config"
)

// NewNewRelic starts the APM agent. It returns (nil, nil) when the agent is
// disabled or has no license key.
func NewNewRelic(cfg config.NewRelicConfig) (*newrelic.Application, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return nil, nil
	}

	nrApp, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
	if err != nil {
		return nil, fmt.Errorf("start new relic: %w", err)
	}
	return nrApp, nil
}
