// Package tools routes decoded tool calls to the retrieval operations.
// Both protocol adapters share this dispatcher, so a search answered over
// the streaming transport carries the same payload bytes as the
// synchronous one.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/vecgate/internal/domain"
)

// Tool names accepted by Dispatch.
const (
	ToolSearch = "search"
	ToolFetch  = "fetch"
)

// Dispatcher decodes tool arguments and invokes the matching operation.
type Dispatcher struct {
	search Searcher
	fetch  Fetcher
}

// New creates a dispatcher over the two retrieval operations.
func New(search Searcher, fetch Fetcher) *Dispatcher {
	return &Dispatcher{search: search, fetch: fetch}
}

// Task is one bound tool call, ready to execute. The result is the
// response envelope for serialization.
type Task func(ctx context.Context) any

type searchArgs struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type fetchArgs struct {
	ObjectIDs []string `json:"object_ids"`
}

// Prepare validates the call shape and binds its arguments. Unknown tool
// names fail with domain.ErrUnknownTool, argument decoding failures with
// domain.ErrInvalidArguments. The returned task never fails: operation
// degradation shows up as empty results in the envelope.
func (d *Dispatcher) Prepare(call domain.ToolCall) (Task, error) {
	switch call.Tool {
	case ToolSearch:
		var args searchArgs
		if err := decodeArgs(call.Arguments, &args); err != nil {
			return nil, err
		}
		return func(ctx context.Context) any {
			return domain.SearchPage{Results: d.search.Search(ctx, args.Query, args.TopK)}
		}, nil

	case ToolFetch:
		var args fetchArgs
		if err := decodeArgs(call.Arguments, &args); err != nil {
			return nil, err
		}
		return func(ctx context.Context) any {
			return domain.FetchPage{Objects: d.fetch.Fetch(ctx, args.ObjectIDs)}
		}, nil

	default:
		return nil, fmt.Errorf("tool %q: %w", call.Tool, domain.ErrUnknownTool)
	}
}

// Dispatch executes one tool call and returns its result envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, call domain.ToolCall) (any, error) {
	task, err := d.Prepare(call)
	if err != nil {
		return nil, err
	}
	return task(ctx), nil
}

// decodeArgs unmarshals the raw arguments. Absent arguments decode to the
// zero value of the target, matching a call with an empty object.
func decodeArgs(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidArguments, err.Error())
	}
	return nil
}
