package coach

// Config holds generation settings for coach requests.
type Config struct {
	AnalysisMaxTokens       int
	AnalysisTemperature     float64
	ConversationMaxTokens   int
	ConversationTemperature float64

	// HistoryLimit caps how many earlier turns are sent with a conversation
	// request. Older turns are dropped first.
	HistoryLimit int
}

// DefaultConfig returns the settings used by the CLI and HTTP server.
func DefaultConfig() Config {
	return Config{
		AnalysisMaxTokens:       800,
		AnalysisTemperature:     0.2,
		ConversationMaxTokens:   400,
		ConversationTemperature: 0.7,
		HistoryLimit:            12,
	}
}
