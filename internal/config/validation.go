// Package config provides internal configuration loading and processing.
package config

import (
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/enforcer/internal/evaluators/bypass"
	"github.com/smykla-skalski/enforcer/internal/evaluators/implementation"
	"github.com/smykla-skalski/enforcer/internal/evaluators/todo"
	"github.com/smykla-skalski/enforcer/pkg/config"
)

var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidSeverity is returned when a severity value is invalid.
	ErrInvalidSeverity = errors.New("invalid severity value")

	// ErrEmptyValue is returned when a required value is empty.
	ErrEmptyValue = errors.New("empty value not allowed")

	// ErrInvalidOption is returned when an option value is invalid.
	ErrInvalidOption = errors.New("invalid option value")

	// ErrUnknownPolicy is returned when a policy name is not registered.
	ErrUnknownPolicy = errors.New("unknown policy")
)

// PolicyNames lists every built-in policy in registration order.
var PolicyNames = []string{implementation.Name, todo.Name, bypass.Name}

// Validator validates configuration semantics.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the entire configuration.
// Returns an error describing all validation failures.
func (v *Validator) Validate(cfg *config.Config) error {
	if cfg == nil {
		return errors.WithMessage(ErrInvalidConfig, "config is nil")
	}

	var validationErrors []error

	if cfg.Version < 0 || cfg.Version > config.CurrentConfigVersion {
		validationErrors = append(validationErrors, errors.Wrapf(
			ErrInvalidOption,
			"version must be between 0 and %d, got %d",
			config.CurrentConfigVersion,
			cfg.Version,
		))
	}

	if cfg.Global != nil {
		if err := v.validateGlobalConfig(cfg.Global); err != nil {
			validationErrors = append(validationErrors, errors.Wrap(err, "global"))
		}
	}

	if cfg.Policies != nil {
		if err := v.validatePoliciesConfig(cfg.Policies); err != nil {
			validationErrors = append(validationErrors, err)
		}
	}

	if cfg.CrashDump != nil {
		if err := v.validateCrashDumpConfig(cfg.CrashDump); err != nil {
			validationErrors = append(validationErrors, errors.Wrap(err, "crash_dump"))
		}
	}

	if len(validationErrors) > 0 {
		return errors.WithSecondaryError(
			errors.Wrapf(
				ErrInvalidConfig,
				"validation failed with %d error(s)",
				len(validationErrors),
			),
			combineErrors(validationErrors),
		)
	}

	return nil
}

// validateGlobalConfig validates global configuration.
func (*Validator) validateGlobalConfig(cfg *config.GlobalConfig) error {
	var validationErrors []error

	if constraint := cfg.GetHookVersionConstraint(); constraint != "" {
		if _, err := semver.NewConstraint(constraint); err != nil {
			validationErrors = append(validationErrors, errors.Wrapf(
				errors.CombineErrors(ErrInvalidOption, err),
				"hook_version_constraint %q",
				constraint,
			))
		}
	}

	for _, name := range cfg.DisabledPolicies {
		if !slices.Contains(PolicyNames, name) {
			validationErrors = append(validationErrors, errors.Wrapf(
				ErrUnknownPolicy,
				"disabled_policies: %q (known: %v)",
				name,
				PolicyNames,
			))
		}
	}

	return combineErrors(validationErrors)
}

// validatePoliciesConfig validates every policy section.
func (v *Validator) validatePoliciesConfig(cfg *config.PoliciesConfig) error {
	var validationErrors []error

	if cfg.Implementation != nil {
		if err := v.validateImplementationConfig(cfg.Implementation); err != nil {
			validationErrors = append(validationErrors, errors.Wrap(err, "policies.implementation"))
		}
	}

	if cfg.TodoTracking != nil {
		if err := v.validateTodoTrackingConfig(cfg.TodoTracking); err != nil {
			validationErrors = append(validationErrors, errors.Wrap(err, "policies.todo_tracking"))
		}
	}

	if cfg.Bypass != nil {
		if err := v.validateBypassConfig(cfg.Bypass); err != nil {
			validationErrors = append(validationErrors, errors.Wrap(err, "policies.bypass"))
		}
	}

	return combineErrors(validationErrors)
}

func (v *Validator) validateImplementationConfig(cfg *config.ImplementationPolicyConfig) error {
	if err := v.validateBaseConfig(&cfg.PolicyConfig); err != nil {
		return err
	}

	if slices.Contains(cfg.ExtraKeywords, "") {
		return errors.WithMessage(ErrEmptyValue, "extra_keywords")
	}

	if slices.Contains(cfg.OverridePhrases, "") {
		return errors.WithMessage(ErrEmptyValue, "override_phrases")
	}

	return nil
}

func (v *Validator) validateTodoTrackingConfig(cfg *config.TodoTrackingPolicyConfig) error {
	if err := v.validateBaseConfig(&cfg.PolicyConfig); err != nil {
		return err
	}

	if cfg.GetMinCapabilities() < 0 {
		return errors.Wrapf(ErrInvalidOption, "min_capabilities must be >= 0, got %d", cfg.GetMinCapabilities())
	}

	if cfg.GetMinEditUnits() < 0 {
		return errors.Wrapf(ErrInvalidOption, "min_edit_units must be >= 0, got %d", cfg.GetMinEditUnits())
	}

	if slices.Contains(cfg.TrackingMarkers, "") {
		return errors.WithMessage(ErrEmptyValue, "tracking_markers")
	}

	return nil
}

func (v *Validator) validateBypassConfig(cfg *config.BypassPolicyConfig) error {
	if err := v.validateBaseConfig(&cfg.PolicyConfig); err != nil {
		return err
	}

	for _, pattern := range cfg.ExemptPaths {
		if pattern == "" || !doublestar.ValidatePattern(pattern) {
			return errors.Wrapf(ErrInvalidOption, "exempt_paths: invalid glob %q", pattern)
		}
	}

	if slices.Contains(cfg.EvidenceFields, "") {
		return errors.WithMessage(ErrEmptyValue, "evidence_fields")
	}

	return nil
}

func (*Validator) validateCrashDumpConfig(cfg *config.CrashDumpConfig) error {
	if cfg.GetMaxDumps() < 0 {
		return errors.Wrapf(ErrInvalidOption, "max_dumps must be >= 0, got %d", cfg.GetMaxDumps())
	}

	return nil
}

// validateBaseConfig validates fields shared by all policies.
func (*Validator) validateBaseConfig(cfg *config.PolicyConfig) error {
	if cfg.Severity != config.SeverityUnknown && !cfg.Severity.IsASeverity() {
		return errors.Wrapf(
			ErrInvalidSeverity,
			"must be %q or %q, got %q",
			config.SeverityError.String(),
			config.SeverityWarning.String(),
			cfg.Severity.String(),
		)
	}

	return nil
}

// combineErrors combines multiple errors into a single error.
func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return errors.Join(errs...)
}
