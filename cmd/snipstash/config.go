package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configDirName  = ".snipstash"
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyServer = "server"
	cfgKeyToken  = "token"

	defaultServer = "http://localhost:8080"
)

// configDir returns ~/.snipstash, creating it if needed.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	dir := filepath.Join(home, configDirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// loadConfig reads ~/.snipstash/config.yaml. A missing file is not an
// error; defaults apply.
func loadConfig() (*viper.Viper, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault(cfgKeyServer, defaultServer)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

// saveConfig writes the current config values back to config.yaml. Used
// by login and logout to persist or drop the token.
func saveConfig() error {
	dir, err := configDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, configFileName+"."+configFileType)
	if err := cfg.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	// The file holds the auth token.
	return os.Chmod(path, 0o600)
}
