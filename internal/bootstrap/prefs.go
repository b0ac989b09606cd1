package bootstrap

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/osse101/marketsync/internal/config"
	"github.com/osse101/marketsync/internal/prefs"
)

// ApplyPreferences loads the preferences file and lets its topic list
// replace the configured topics. An explicit FEED_TOPICS wins over the file.
func ApplyPreferences(cfg *config.Config, store *prefs.Store) (prefs.Prefs, error) {
	p, err := store.Load()
	if err != nil {
		return prefs.Prefs{}, fmt.Errorf("%s: %w", ErrMsgFailedLoadPrefs, err)
	}

	topics, ok, err := p.TopicSet()
	if err != nil {
		return prefs.Prefs{}, fmt.Errorf("%s: %w", ErrMsgFailedLoadPrefs, err)
	}
	if !ok {
		return p, nil
	}

	if _, set := os.LookupEnv(config.EnvFeedTopics); set {
		slog.Info(LogMsgPrefsIgnored, "prefs_topics", topics.Strings())
		return p, nil
	}

	cfg.Topics = topics
	slog.Info(LogMsgPrefsApplied, "topics", topics.Strings())
	return p, nil
}
