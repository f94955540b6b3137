package config

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/v2"

	"github.com/smykla-skalski/enforcer/pkg/config"
)

// CustomDecoderConfig returns the mapstructure configuration used to decode
// koanf values. Strings from TOML and ENFORCER_* variables are parsed into
// config.Duration and config.Severity. Numbers reach those types through
// weak typing.
func CustomDecoderConfig() *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringHook(parseDuration),
			stringHook(parseSeverity),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		Squash:           true,
	}
}

// unmarshalConf returns the koanf unmarshal configuration decoding into out.
func unmarshalConf(out any) koanf.UnmarshalConf {
	dc := CustomDecoderConfig()
	dc.Result = out

	return koanf.UnmarshalConf{
		Tag:           "koanf",
		DecoderConfig: dc,
	}
}

// stringHook converts string values destined for T with parse. Other values
// pass through unchanged.
func stringHook[T any](parse func(string) (T, error)) mapstructure.DecodeHookFuncType {
	target := reflect.TypeFor[T]()

	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != target {
			return data, nil
		}

		s, ok := data.(string)
		if !ok {
			return data, nil
		}

		return parse(s)
	}
}

func parseDuration(s string) (config.Duration, error) {
	var d config.Duration

	err := d.UnmarshalText([]byte(s))

	return d, err
}

// parseSeverity treats an empty string as unset so the policy default applies.
func parseSeverity(s string) (config.Severity, error) {
	if s == "" {
		return config.SeverityUnknown, nil
	}

	return config.ParseSeverity(s)
}
