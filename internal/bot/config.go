package bot

// Config carries the bot's runtime settings. main builds it from the
// environment and passes it down; nothing here is read from env directly.
type Config struct {
	Token        string // Telegram bot token
	AdminID      int64  // treated as admin alongside DB-flagged users; 0 for none
	ReviewLimit  int    // due cards pulled into one session
	DrillSize    int    // questions per /drill
	ForecastDays int    // horizon of /forecast
}

// withDefaults fills unset fields with sensible values.
func (c Config) withDefaults() Config {
	if c.ReviewLimit <= 0 {
		c.ReviewLimit = 100
	}
	if c.DrillSize <= 0 {
		c.DrillSize = 10
	}
	if c.ForecastDays <= 0 {
		c.ForecastDays = 7
	}
	return c
}
