package bridge

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/componentbridge/internal/codec"
	"github.com/GriffinCanCode/componentbridge/internal/theme"
)

// applyThemes replaces the custom stylesheets with data["themes"].
func (b *Bridge) applyThemes(data any) {
	if b.State() == StateClosed {
		return
	}
	urls := themeURLs(codec.Object(data)["themes"])
	if b.cfg.LogMessages {
		b.logger.Debug("Activating themes", zap.Strings("urls", urls))
	}
	if b.cfg.StyleSheets == nil {
		b.logger.Debug("No stylesheet set configured, themes ignored")
		return
	}

	injected, err := theme.Activate(b.cfg.StyleSheets, urls)
	if err != nil {
		b.logger.Warn("Theme activation incomplete", zap.Error(err), zap.Int("injected", injected))
	}
	b.metrics.IncThemesActivated()
}

// themeURLs accepts []string or a decoded JSON array.
func themeURLs(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		urls := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				urls = append(urls, s)
			}
		}
		return urls
	default:
		return nil
	}
}
