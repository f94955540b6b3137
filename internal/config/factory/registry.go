package factory

import (
	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/enforcer/internal/evaluator"
	"github.com/smykla-skalski/enforcer/internal/vocabulary"
	"github.com/smykla-skalski/enforcer/pkg/config"
	"github.com/smykla-skalski/enforcer/pkg/logger"
)

// RegistryBuilder builds an evaluator registry from configuration.
type RegistryBuilder struct {
	factory *PolicyFactory
	log     logger.Logger
}

// NewRegistryBuilder creates a new RegistryBuilder.
func NewRegistryBuilder(log logger.Logger) *RegistryBuilder {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &RegistryBuilder{
		factory: NewPolicyFactory(log),
		log:     log,
	}
}

// Build creates a registry holding every enabled policy that is not listed in
// global.disabled_policies. Registration order is implementation, todo
// tracking, bypass.
func (b *RegistryBuilder) Build(cfg *config.Config) (*evaluator.Registry, error) {
	base, err := vocabulary.Default()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load vocabulary")
	}

	if cfg == nil {
		cfg = &config.Config{}
	}

	policies := cfg.GetPolicies()
	global := cfg.GetGlobal()
	table := base.Extend(extension(policies))

	candidates := []struct {
		enabled bool
		create  func() evaluator.Registration
	}{
		{
			enabled: policies.GetImplementation().IsEnabled(),
			create: func() evaluator.Registration {
				return b.factory.CreateImplementation(table, policies.GetImplementation())
			},
		},
		{
			enabled: policies.GetTodoTracking().IsEnabled(),
			create: func() evaluator.Registration {
				return b.factory.CreateTodoTracking(table, policies.GetTodoTracking())
			},
		},
		{
			enabled: policies.GetBypass().IsEnabled(),
			create: func() evaluator.Registration {
				return b.factory.CreateBypass(table, policies.GetBypass())
			},
		},
	}

	registry := evaluator.NewRegistry()

	for _, c := range candidates {
		if !c.enabled {
			continue
		}

		reg := c.create()
		if global.IsPolicyDisabled(reg.Evaluator.Name()) {
			b.log.Debug("policy disabled", "policy", reg.Evaluator.Name())

			continue
		}

		registry.Register(reg)
	}

	b.log.Debug("registry built", "evaluator_count", registry.Count())

	return registry, nil
}
