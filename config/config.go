// Package config holds the site configuration sections.
package config

// Initialize triggers the init() registrations in this package.
// Called from main before config.InitConfig runs.
func Initialize() {
	// keep the side effect of loading this package
}
