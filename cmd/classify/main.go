// Command classify sends one batch of posts to the model and prints the raw
// response.
//
// Usage:
//
//	classify [-in posts.json] [-timeout 2m]
//
// Posts are read from -in, or stdin when -in is empty or "-", as a JSON array
// or an object with a "posts" array.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JaimeStill/beacon/internal/config"
	"github.com/JaimeStill/beacon/internal/infrastructure"
	"github.com/JaimeStill/beacon/internal/responder"
	"github.com/JaimeStill/beacon/pkg/lifecycle"
)

func main() {
	var (
		in      = flag.String("in", "", "Posts file (default stdin)")
		timeout = flag.Duration("timeout", 2*time.Minute, "Request timeout (0 for none)")
	)
	flag.Parse()

	if err := run(*in, *timeout, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "classify:", err)
		os.Exit(1)
	}
}

func run(in string, timeout time.Duration, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.LoadResponder()
	if err != nil {
		return err
	}

	posts, err := readPosts(in, stdin)
	if err != nil {
		return err
	}

	logger := infrastructure.NewLogger(&cfg.Logging, os.Stderr)
	lc := lifecycle.New()
	defer lc.Shutdown(time.Second)

	rsp, err := infrastructure.NewResponder(lc, &cfg.Gemini, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return classify(ctx, rsp, posts, stdout)
}

type classifier interface {
	Classify(ctx context.Context, posts []responder.PostRecord) (string, error)
}

func classify(ctx context.Context, c classifier, posts []responder.PostRecord, w io.Writer) error {
	raw, err := c.Classify(ctx, posts)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, raw)
	return err
}

func readPosts(path string, stdin io.Reader) ([]responder.PostRecord, error) {
	if path == "" || path == "-" {
		return responder.DecodePosts(stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open posts: %w", err)
	}
	defer f.Close()

	return responder.DecodePosts(f)
}
