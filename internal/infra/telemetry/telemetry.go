package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Grimm02938/COCMarket/internal/infra/config"
)

// Provider bundles the Prometheus plumbing shared by the HTTP layer.
type Provider struct {
	registerer prometheus.Registerer
	buildInfo  *prometheus.GaugeVec
}

// Attach registers service-level collectors and returns a provider handle.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	reg := prometheus.DefaultRegisterer

	buildInfo := promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cocmarket",
		Name:      "build_info",
		Help:      "Constant gauge labeled with the running service name and environment.",
	}, []string{"service", "env"})
	buildInfo.WithLabelValues(cfg.App.Name, cfg.App.Env).Set(1)

	return &Provider{
		registerer: reg,
		buildInfo:  buildInfo,
	}, nil
}

// Registerer exposes the registerer that request-level collectors should attach to.
func (p *Provider) Registerer() prometheus.Registerer {
	if p == nil || p.registerer == nil {
		return prometheus.DefaultRegisterer
	}
	return p.registerer
}
