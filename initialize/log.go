package initialize

import (
	"fmt"
	"io"
	"os"

	"telecloud/global"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// setupLogger configures the process logger: console writer to stdout,
// or an append-only file when log.path is set.
func setupLogger(level, path string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		w = file
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	global.Logger = log.Output(zerolog.ConsoleWriter{Out: w}).Level(lvl)
	return nil
}
