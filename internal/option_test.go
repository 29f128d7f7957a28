package internal

import (
	"io"
	"log/slog"
	"testing"
)

func TestOptionsApply(t *testing.T) {
	cfg := &Config{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app := &application{}
	for _, opt := range []Option{WithConfig(cfg), WithLogger(logger)} {
		opt(app)
	}

	if app.config != cfg {
		t.Error("WithConfig did not set the config")
	}
	if app.logger != logger {
		t.Error("WithLogger did not set the logger")
	}
}
