package plan

// Config holds the validator thresholds.
type Config struct {
	// WarnRatio is the projected relative load at or above which the
	// validator emits a near-capacity warning. Capacity itself is always an
	// error boundary, never configurable.
	WarnRatio float64 `json:"warn_ratio"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.WarnRatio <= 0 {
		c.WarnRatio = 0.9
	}
}

// Validate checks threshold bounds.
func (c Config) Validate() error {
	if c.WarnRatio > 1 {
		return errWarnRatio
	}
	return nil
}
