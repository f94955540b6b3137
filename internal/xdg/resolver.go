package xdg

import "path/filepath"

const configFileName = "config.toml"

// PathResolver locates the global configuration file.
type PathResolver interface {
	GlobalConfigFile() string
}

// ResolverFunc adapts a function to PathResolver.
type ResolverFunc func() string

// GlobalConfigFile calls f.
func (f ResolverFunc) GlobalConfigFile() string { return f() }

// DefaultResolver follows XDG_CONFIG_HOME and the user's home directory.
func DefaultResolver() PathResolver {
	return ResolverFunc(GlobalConfigFile)
}

// ResolverFor returns a resolver rooted at homeDir. XDG variables are ignored
// so the result does not depend on the caller's environment.
func ResolverFor(homeDir string) PathResolver {
	return ResolverFunc(func() string {
		return filepath.Join(homeDir, ".config", appName, configFileName)
	})
}
