// Command instastudiod runs the InstaStudio daemon in the foreground. It is a
// thin bootstrap around the same run loop the CLI's hidden `daemon run`
// subcommand uses, intended for service managers like systemd.
package main

import (
	"context"
	"log"

	"instastudio/internal/config"
	"instastudio/internal/daemonrun"
)

func main() {
	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}
	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{
		LogLevel: cfg.Logging.Level,
	}); err != nil {
		log.Fatalf("daemon: %v", err)
	}
}
