package config

import (
	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/enforcer/pkg/config"
)

// ErrHookVersionMismatch is returned when the binary does not satisfy the
// configured hook_version_constraint.
var ErrHookVersionMismatch = errors.New("hook version does not satisfy constraint")

// CheckHookVersion verifies the binary version against the configured
// constraint. Versions that are not valid semver, such as development builds,
// always pass.
func CheckHookVersion(cfg *config.Config, version string) error {
	constraint := cfg.GetGlobal().GetHookVersionConstraint()
	if constraint == "" {
		return nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(errors.CombineErrors(ErrInvalidOption, err), "hook_version_constraint %q", constraint)
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return nil //nolint:nilerr // development builds carry no semver
	}

	if !c.Check(v) {
		return errors.Wrapf(ErrHookVersionMismatch, "version %s, constraint %q", v, constraint)
	}

	return nil
}
