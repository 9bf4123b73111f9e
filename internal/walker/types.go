package walker

import (
	"context"
	"time"

	"makeroom/internal/classify"
	"makeroom/internal/encoding"
)

// Classifier decides whether a file qualifies for conversion.
type Classifier interface {
	Classify(ctx context.Context, path string) (classify.Classification, error)
}

// Converter produces the re-encoded sibling of a qualifying file.
type Converter interface {
	OutputPath(path string, kind classify.Kind) string
	Convert(ctx context.Context, path string, kind classify.Kind) (encoding.Result, error)
}

// Options are the parameters of one walk.
type Options struct {
	Recursive bool
	Budget    int64
	DryRun    bool
}

// Action is what happened to a visited file.
type Action string

const (
	ActionSkipped   Action = "skipped"
	ActionConverted Action = "converted"
	ActionReported  Action = "reported"
	ActionFailed    Action = "failed"
)

// Skip reasons recorded on skipped outcomes.
const (
	ReasonNotMedia         = "not media"
	ReasonAlreadyEfficient = "already efficient"
	ReasonOutputExists     = "output exists"
	ReasonVanished         = "vanished"
	ReasonClassifyFailed   = "classification failed"
)

// Outcome records the fate of one media file.
type Outcome struct {
	Path        string
	Kind        classify.Kind
	Action      Action
	Reason      string
	CRF         int
	InputBytes  int64
	Output      string
	OutputBytes int64
	Elapsed     time.Duration
	Err         error
}

// Result summarises a walk.
type Result struct {
	Root           string
	Options        Options
	BytesProcessed int64
	OutputBytes    int64
	Visited        int
	Converted      int
	Reported       int
	Skipped        int
	Failed         int
	BudgetReached  bool
	Interrupted    bool
	Elapsed        time.Duration
	Outcomes       []Outcome
}

// Reclaimed estimates the bytes a run frees once originals are removed.
func (r Result) Reclaimed() int64 {
	var saved int64
	for _, outcome := range r.Outcomes {
		if outcome.Action == ActionConverted {
			saved += outcome.InputBytes - outcome.OutputBytes
		}
	}
	return saved
}
