// Package console implements the administrative command line of §4.8: an
// interactive prompt accepting save, stats, chunk <cx> <cy> and stop.
package console

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/sablefrost/terra/server/service"
)

// Console is the admin-facing REPL bound to a running Service.
type Console struct {
	svc    *service.Service
	log    *slog.Logger
	stop   func()
	prefix string
}

// New returns a Console bound to svc. stop is invoked when the operator
// runs the "stop" command, and is expected to begin graceful shutdown.
func New(svc *service.Service, log *slog.Logger, stop func()) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{svc: svc, log: log, stop: stop, prefix: "terra> "}
}

// Run starts the interactive prompt. It blocks until the operator issues
// "stop" or ctx is cancelled.
func (c *Console) Run(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		prompt.New(
			c.execute,
			c.complete,
			prompt.OptionPrefix(c.prefix),
			prompt.OptionTitle("terra-console"),
		).Run()
	}()

	select {
	case <-ctx.Done():
	case <-done:
	}
}

func (c *Console) execute(line string) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "save":
		n := c.svc.SaveAll()
		fmt.Printf("saved %d chunks\n", n)
	case "stats":
		fmt.Printf("seed=%d cached_chunks=%d\n", c.svc.Seed(), c.svc.CachedChunks())
	case "chunk":
		c.execChunk(fields)
	case "stop":
		fmt.Println("shutting down...")
		if c.stop != nil {
			c.stop()
		}
	case "help":
		fmt.Println("commands: save, stats, chunk <cx> <cy>, stop, help")
	default:
		fmt.Printf("unknown command %q, try help\n", fields[0])
	}
}

func (c *Console) execChunk(fields []string) {
	if len(fields) != 3 {
		fmt.Println("usage: chunk <cx> <cy>")
		return
	}
	cx, err := strconv.ParseInt(fields[1], 10, 32)
	if err != nil {
		fmt.Printf("invalid cx %q\n", fields[1])
		return
	}
	cy, err := strconv.ParseInt(fields[2], 10, 32)
	if err != nil {
		fmt.Printf("invalid cy %q\n", fields[2])
		return
	}
	chunk, err := c.svc.GetChunk(int32(cx), int32(cy))
	if err != nil {
		fmt.Printf("failed to load chunk: %v\n", err)
		return
	}
	fmt.Printf("chunk (%d,%d) generated=%v modified=%v\n", chunk.CX, chunk.CY, chunk.Generated, chunk.Modified)
}

func (c *Console) complete(d prompt.Document) []prompt.Suggest {
	suggestions := []prompt.Suggest{
		{Text: "save", Description: "persist every cached chunk to disk"},
		{Text: "stats", Description: "print seed and cache occupancy"},
		{Text: "chunk", Description: "load and report on a single chunk"},
		{Text: "stop", Description: "begin graceful shutdown"},
		{Text: "help", Description: "list available commands"},
	}
	return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
}
