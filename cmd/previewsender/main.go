package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
)

func main() {
	f, err := os.OpenFile("debug.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer func() {
			if err := f.Close(); err != nil {
				slog.Warn("failed to close log file", "error", err)
			}
		}()
	}

	if err := fang.Execute(context.Background(), newRootCmd()); err != nil {
		os.Exit(1)
	}
}
