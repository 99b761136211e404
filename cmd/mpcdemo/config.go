package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/motionmpc/coreengine/internal/width"
	"github.com/motionmpc/coreengine/internal/xlog"
)

// sessionFile is the shape of the TOML session file this demo loads its
// shared parameters from.
type sessionFile struct {
	Parties         int            `toml:"parties"`
	MaxBatch        int            `toml:"max_batch"`
	LoggingSeverity string         `toml:"logging_severity"`
	SPCounts        map[string]int `toml:"sp_counts"`
}

func loadSessionFile(path string) (*sessionFile, error) {
	var sf sessionFile
	if _, err := toml.DecodeFile(path, &sf); err != nil {
		return nil, fmt.Errorf("mpcdemo: load session file %q: %w", path, err)
	}
	if sf.Parties < 2 {
		return nil, fmt.Errorf("mpcdemo: session file %q: parties must be >= 2", path)
	}
	return &sf, nil
}

var widthNames = map[string]width.Width{
	"w8":   width.W8,
	"w16":  width.W16,
	"w32":  width.W32,
	"w64":  width.W64,
	"w128": width.W128,
}

func (sf *sessionFile) spCounts() (map[width.Width]int, error) {
	counts := make(map[width.Width]int, len(sf.SPCounts))
	for name, n := range sf.SPCounts {
		w, ok := widthNames[name]
		if !ok {
			return nil, fmt.Errorf("mpcdemo: unknown width %q in sp_counts", name)
		}
		counts[w] = n
	}
	return counts, nil
}

func (sf *sessionFile) severity() xlog.Level {
	switch sf.LoggingSeverity {
	case "trace":
		return xlog.LevelTrace
	case "debug":
		return xlog.LevelDebug
	case "warning":
		return xlog.LevelWarning
	case "error":
		return xlog.LevelError
	case "disabled":
		return xlog.LevelDisabled
	default:
		return xlog.LevelInfo
	}
}
