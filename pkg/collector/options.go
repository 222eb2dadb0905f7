package collector

import "go.uber.org/zap"

// Option configures the interactive collector.
type Option func(*Interactive)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(c *Interactive) {
		if driver != nil {
			c.driver = driver
		}
	}
}

// WithLayoutPreview toggles printing the template layout before prompting.
func WithLayoutPreview(enabled bool) Option {
	return func(c *Interactive) {
		c.showLayout = enabled
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Interactive) {
		if logger != nil {
			c.logger = logger
		}
	}
}
