package common

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and the key runtime settings
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.Print(config.App.Name, GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("url", fmt.Sprintf("http://%s:%d%s", config.Server.Host, config.Server.Port, config.App.APIPrefix)).
		Str("ai_provider", string(config.AI.DefaultProvider)).
		Str("progress_backend", config.Progress.Backend).
		Msg("Ideas Matter starting")
}
