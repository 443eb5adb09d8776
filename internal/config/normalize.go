package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConvert()
	c.normalizeWatch()
	c.normalizeWeb()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InputDir, err = expandPath(c.Paths.InputDir); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.UploadDir) == "" {
		c.Paths.UploadDir = defaultUploadDir
	}
	if c.Paths.UploadDir, err = expandPath(c.Paths.UploadDir); err != nil {
		return fmt.Errorf("paths.upload_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeConvert() {
	c.Convert.Binary = strings.TrimSpace(c.Convert.Binary)
	if c.Convert.Workers == 0 {
		c.Convert.Workers = defaultWorkers
	}
}

func (c *Config) normalizeWatch() {
	if c.Watch.PollIntervalMs == 0 {
		c.Watch.PollIntervalMs = defaultPollIntervalMs
	}
	if c.Watch.StabilityThreshold == 0 {
		c.Watch.StabilityThreshold = defaultStabilityThreshold
	}
}

// An empty bind stays empty; it means the upload server is disabled.
func (c *Config) normalizeWeb() {
	c.Web.Bind = strings.TrimSpace(c.Web.Bind)
	c.Web.AuthToken = strings.TrimSpace(c.Web.AuthToken)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
