package cmd

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/pixhash/internal/apperr"
	"github.com/AnyUserName/pixhash/internal/service"
)

var invokeTimeout time.Duration

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Handle one JSON request from stdin",
	Long: `Reads a request such as

  {"path": "photos/cat.jpg", "algorithm": "Gradient", "hash_size": 64}

from stdin and writes either the response JSON or an error body

  {"error": {"kind": "FetchError", "fetch_kind": "NotFound", "message": "..."}}

to stdout. The process exits non-zero on error. The whole call is bounded by
--timeout.`,
	Args: cobra.NoArgs,
	RunE: runInvoke,
}

func init() {
	invokeCmd.Flags().DurationVarP(&invokeTimeout, "timeout", "t", 30*time.Second, "wall-clock limit for the request")
	rootCmd.AddCommand(invokeCmd)
}

func runInvoke(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	resp, err := invoke(cmd.Context(), cmd.InOrStdin())
	if err != nil {
		if werr := writeJSON(out, service.NewErrorBody(err)); werr != nil {
			return werr
		}
		return fmt.Errorf("%w: %v", errReported, err)
	}
	return writeJSON(out, resp)
}

func invoke(parent context.Context, in io.Reader) (*service.Response, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	req, err := service.ParseRequest(data)
	if err != nil {
		return nil, err
	}

	defaults, err := cfg.HashDefaults()
	if err != nil {
		return nil, err
	}

	ctx := parent
	if invokeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, invokeTimeout)
		defer cancel()
	}
	store, err := newFetcher(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	fetcher := &trackedFetcher{Fetcher: store}
	svc, err := buildService(fetcher, defaults)
	if err != nil {
		return nil, err
	}

	// Decode and hash do not observe ctx, so the deadline is enforced here.
	type result struct {
		resp *service.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := svc.Handle(ctx, req)
		done <- result{resp, err}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-ctx.Done():
		if !fetcher.fetched.Load() {
			return nil, apperr.Fetch(apperr.FetchNetwork, req.Path, ctx.Err())
		}
		return nil, fmt.Errorf("request %q: %w", req.Path, ctx.Err())
	}
}

// trackedFetcher records whether the object arrived, so a deadline can be
// attributed to the fetch or to the decode and hash that follow it.
type trackedFetcher struct {
	service.Fetcher
	fetched atomic.Bool
}

func (f *trackedFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	data, err := f.Fetcher.Fetch(ctx, path)
	if err == nil {
		f.fetched.Store(true)
	}
	return data, err
}
