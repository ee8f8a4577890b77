package logger

import "go.uber.org/zap"

// New builds the application logger: JSON at info level in production,
// human-readable at debug level otherwise. Output goes to stderr unless
// outputPaths is given.
func New(env string, outputPaths ...string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if env == "production" {
		cfg = zap.NewProductionConfig()
	}
	if len(outputPaths) > 0 {
		cfg.OutputPaths = outputPaths
		cfg.ErrorOutputPaths = outputPaths
	}
	return cfg.Build()
}
