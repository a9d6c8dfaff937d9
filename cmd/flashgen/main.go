// Command flashgen generates flashcards from a document, web page, video
// transcript or text on the command line.
//
// Usage:
//
//	flashgen --method pdf --type scored --file notes.pdf
//	flashgen --method youtube --type basic --url https://youtu.be/dQw4w9WgXcQ --json
//	echo "Mitochondria produce ATP." | flashgen --method text --type cloze
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/scry-flashgen/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := (&cli{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		loadConfig: config.Load,
	}).run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
