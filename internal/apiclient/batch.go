package apiclient

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// BatchItem is one independent write of a batch.
type BatchItem struct {
	Key string
	Run func(ctx context.Context) error
}

type BatchItemResult struct {
	Key string `json:"key"`
	Err error  `json:"-"`
}

func (r BatchItemResult) OK() bool { return r.Err == nil }

// BatchResult keeps the outcome of every item, in submission order.
type BatchResult struct {
	Items []BatchItemResult
}

func (r BatchResult) OK() bool {
	return len(r.Failed()) == 0
}

func (r BatchResult) Failed() []BatchItemResult {
	out := []BatchItemResult{}
	for _, it := range r.Items {
		if it.Err != nil {
			out = append(out, it)
		}
	}
	return out
}

func (r BatchResult) Succeeded() []string {
	out := []string{}
	for _, it := range r.Items {
		if it.Err == nil {
			out = append(out, it.Key)
		}
	}
	return out
}

// Err joins the failures, each prefixed with its key; nil when all succeeded.
func (r BatchResult) Err() error {
	var errs []error
	for _, it := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", it.Key, it.Err))
	}
	return errors.Join(errs...)
}

// RunBatch fans the items out concurrently (at most limit at a time, 0 for
// unlimited) and waits for all of them. One failure never cancels the others.
func RunBatch(ctx context.Context, limit int, items []BatchItem) BatchResult {
	res := BatchResult{Items: make([]BatchItemResult, len(items))}
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, it := range items {
		res.Items[i].Key = it.Key
		g.Go(func() error {
			res.Items[i].Err = it.Run(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return res
}
