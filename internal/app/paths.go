// Package app provides the application configuration and wiring.
package app

import (
	"github.com/spf13/viper"
)

// Default locations.
const (
	DefaultDockerRoot = "/var/lib/docker"
	DefaultOutputDir  = "."
)

// ConfigureViper sets up viper with standard config file search paths.
// Config file: dexplore.toml
// Search paths (in order): current directory, ~/.config/dexplore, /etc/dexplore
func ConfigureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.SetConfigName("dexplore")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/dexplore")
	v.AddConfigPath("/etc/dexplore")
}
