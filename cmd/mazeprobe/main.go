// Command mazeprobe runs end-to-end checks against a running mazeserver.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lawnchairsociety/mazeforge/internal/logger"
	"github.com/lawnchairsociety/mazeforge/internal/probe"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "Maze server websocket URL")
	verbose := flag.Bool("v", false, "Verbose output - log each check as it runs")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall time limit")
	flag.Parse()

	level := "WARN"
	if *verbose {
		level = "DEBUG"
	}
	logger.SetOutput(os.Stderr, "text", level)

	fmt.Printf("Running probes against %s\n", *url)
	fmt.Println("Make sure the maze server is running!")
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	results := probe.RunAll(ctx, *url)
	if _, failed := probe.PrintResults(os.Stdout, results); failed > 0 {
		os.Exit(1)
	}
}
