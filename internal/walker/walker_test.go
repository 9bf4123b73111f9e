package walker_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"makeroom/internal/classify"
	"makeroom/internal/config"
	"makeroom/internal/encoding"
	"makeroom/internal/logging"
	"makeroom/internal/services"
	"makeroom/internal/testsupport"
	"makeroom/internal/walker"
)

// fakeClassifier answers by file name: names starting with "v" are videos
// needing conversion, "e" are efficient videos, "j" are JPEGs, anything else
// is not media.
type fakeClassifier struct {
	calls []string
	fail  map[string]error
}

func (f *fakeClassifier) Classify(_ context.Context, path string) (classify.Classification, error) {
	f.calls = append(f.calls, filepath.Base(path))
	if err := f.fail[filepath.Base(path)]; err != nil {
		return classify.Classification{Path: path}, err
	}
	if _, err := os.Stat(path); err != nil {
		return classify.Classification{Path: path}, err
	}
	out := classify.Classification{Path: path, CRF: classify.UnknownCRF}
	switch filepath.Base(path)[0] {
	case 'v':
		out.Kind = classify.KindVideo
		out.Efficiency = classify.EfficiencyNeedsConversion
		out.Qualifies = true
	case 'e':
		out.Kind = classify.KindVideo
		out.Efficiency = classify.EfficiencyEfficient
		out.CRF = 28
	case 'j':
		out.Kind = classify.KindJPEG
		out.Qualifies = true
	default:
		out.Kind = classify.KindOther
	}
	return out, nil
}

// fakeConverter writes a 10-byte sibling for every conversion.
type fakeConverter struct {
	calls  []string
	fail   map[string]error
	before func(path string)
}

func (f *fakeConverter) OutputPath(path string, kind classify.Kind) string {
	return encoding.OutputPath(config.Default().Video, path, kind)
}

func (f *fakeConverter) Convert(_ context.Context, path string, kind classify.Kind) (encoding.Result, error) {
	f.calls = append(f.calls, filepath.Base(path))
	if f.before != nil {
		f.before(path)
	}
	out := f.OutputPath(path, kind)
	if err := f.fail[filepath.Base(path)]; err != nil {
		return encoding.Result{Input: path, Output: out}, err
	}
	if err := os.WriteFile(out, []byte("0123456789"), 0o644); err != nil {
		return encoding.Result{}, err
	}
	return encoding.Result{Input: path, Output: out, Kind: kind, OutputBytes: 10}, nil
}

func newWalker(c walker.Classifier, conv walker.Converter) *walker.Walker {
	return walker.New(c, conv, logging.NewNop())
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestWalkConvertsOnlyInefficientVideo(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "v-h264.mp4"), 50_000)
	testsupport.WriteFile(t, filepath.Join(dir, "e-x265.mp4"), 2_000)

	conv := &fakeConverter{}
	result, err := newWalker(&fakeClassifier{}, conv).Walk(context.Background(), dir, walker.Options{Budget: 100_000})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}

	if result.BytesProcessed != 50_000 {
		t.Fatalf("expected 50000 bytes processed, got %d", result.BytesProcessed)
	}
	if result.Converted != 1 || result.Skipped != 1 {
		t.Fatalf("unexpected counts %+v", result)
	}
	want := []string{"e-x265.mp4", "v-h264-c.mp4", "v-h264.mp4"}
	if got := listNames(t, dir); !slices.Equal(got, want) {
		t.Fatalf("unexpected directory contents %v", got)
	}
	if result.OutputBytes != 10 || result.Reclaimed() != 50_000-10 {
		t.Fatalf("unexpected output accounting: %d reclaimed=%d", result.OutputBytes, result.Reclaimed())
	}
}

func TestWalkSingleFileIgnoresBudget(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "j-photo.jpg")
	testsupport.WriteFile(t, photo, 5_000)

	result, err := newWalker(&fakeClassifier{}, &fakeConverter{}).Walk(context.Background(), photo, walker.Options{Budget: 1})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if result.Converted != 1 {
		t.Fatalf("expected single file to convert, got %+v", result)
	}
	if _, err := os.Stat(filepath.Join(dir, "j-photo.avif")); err != nil {
		t.Fatalf("expected avif sibling: %v", err)
	}
	if result.BudgetReached {
		t.Fatal("single-file runs are uncapped")
	}
}

func TestWalkSingleFileWithZeroBudget(t *testing.T) {
	photo := filepath.Join(t.TempDir(), "j-photo.jpg")
	testsupport.WriteFile(t, photo, 100)

	if _, err := newWalker(&fakeClassifier{}, &fakeConverter{}).Walk(context.Background(), photo, walker.Options{}); err != nil {
		t.Fatalf("single file should not need a budget: %v", err)
	}
}

func TestWalkEarlyTermination(t *testing.T) {
	tests := []struct {
		name   string
		sizes  []int64
		budget int64
		want   []string
	}{
		// Same shape as 3 GB then 2 GB under a 4 GB budget: the second file
		// starts below the budget, so it is processed and the walk stops after it.
		{name: "kth file crosses budget and is processed", sizes: []int64{300, 200, 100}, budget: 400, want: []string{"v0", "v1"}},
		{name: "exact hit stops", sizes: []int64{200, 200, 100}, budget: 400, want: []string{"v0", "v1"}},
		{name: "first file alone exceeds", sizes: []int64{500, 100}, budget: 400, want: []string{"v0"}},
		{name: "budget never reached", sizes: []int64{100, 100, 100}, budget: 1_000, want: []string{"v0", "v1", "v2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			var total int64
			for i, size := range tt.sizes {
				testsupport.WriteFile(t, filepath.Join(dir, "v"+string(rune('0'+i))+".mkv"), size)
			}
			for i := range tt.want {
				total += tt.sizes[i]
			}

			classifier := &fakeClassifier{}
			conv := &fakeConverter{}
			result, err := newWalker(classifier, conv).Walk(context.Background(), dir, walker.Options{Budget: tt.budget})
			if err != nil {
				t.Fatalf("Walk returned error: %v", err)
			}
			got := make([]string, 0, len(conv.calls))
			for _, name := range conv.calls {
				got = append(got, strings.TrimSuffix(name, ".mkv"))
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("converted %v, want %v", got, tt.want)
			}
			if len(classifier.calls) != len(tt.want) {
				t.Fatalf("files after the stop must not be classified: %v", classifier.calls)
			}
			if result.BytesProcessed != total {
				t.Fatalf("bytes processed %d, want %d", result.BytesProcessed, total)
			}
		})
	}
}

func TestWalkSkippedFilesDoNotAdvanceBudget(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "a-notes.txt"), 10_000)
	testsupport.WriteFile(t, filepath.Join(dir, "e-done.mp4"), 10_000)
	testsupport.WriteFile(t, filepath.Join(dir, "v-next.mp4"), 100)

	conv := &fakeConverter{}
	result, err := newWalker(&fakeClassifier{}, conv).Walk(context.Background(), dir, walker.Options{Budget: 500})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if result.BytesProcessed != 100 || !slices.Equal(conv.calls, []string{"v-next.mp4"}) {
		t.Fatalf("unexpected result %+v calls=%v", result, conv.calls)
	}
}

func TestWalkDryRunHasNoSideEffects(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "j-a.jpg"), 300)
	testsupport.WriteFile(t, filepath.Join(dir, "v-b.mp4"), 300)
	testsupport.WriteFile(t, filepath.Join(dir, "v-c.mp4"), 300)
	before := listNames(t, dir)

	conv := &fakeConverter{}
	dry, err := newWalker(&fakeClassifier{}, conv).Walk(context.Background(), dir, walker.Options{Budget: 500, DryRun: true})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if len(conv.calls) != 0 {
		t.Fatalf("dry run must not convert: %v", conv.calls)
	}
	if after := listNames(t, dir); !slices.Equal(before, after) {
		t.Fatalf("dry run changed directory: %v -> %v", before, after)
	}
	for _, name := range before {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || info.Size() != 300 {
			t.Fatalf("dry run changed %s: %v", name, err)
		}
	}

	live, err := newWalker(&fakeClassifier{}, &fakeConverter{}).Walk(context.Background(), dir, walker.Options{Budget: 500})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if dry.BytesProcessed != live.BytesProcessed || dry.Reported != live.Converted {
		t.Fatalf("dry run should preview the real run: dry=%+v live=%+v", dry, live)
	}
}

func TestWalkRecursionOrder(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "b", "v2.mp4"), 10)
	testsupport.WriteFile(t, filepath.Join(dir, "a", "c", "v1.mp4"), 10)
	testsupport.WriteFile(t, filepath.Join(dir, "v3.mp4"), 10)
	testsupport.WriteFile(t, filepath.Join(dir, "a", "v0.mp4"), 10)

	conv := &fakeConverter{}
	if _, err := newWalker(&fakeClassifier{}, conv).Walk(context.Background(), dir, walker.Options{Budget: 1_000, Recursive: true}); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	want := []string{"v1.mp4", "v0.mp4", "v2.mp4", "v3.mp4"}
	if !slices.Equal(conv.calls, want) {
		t.Fatalf("visit order %v, want %v", conv.calls, want)
	}
}

func TestWalkNonRecursiveSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "nested", "v-deep.mp4"), 10)
	testsupport.WriteFile(t, filepath.Join(dir, "v-top.mp4"), 10)

	classifier := &fakeClassifier{}
	conv := &fakeConverter{}
	if _, err := newWalker(classifier, conv).Walk(context.Background(), dir, walker.Options{Budget: 1_000}); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if !slices.Equal(conv.calls, []string{"v-top.mp4"}) || slices.Contains(classifier.calls, "v-deep.mp4") {
		t.Fatalf("non-recursive walk visited nested files: %v", classifier.calls)
	}
}

func TestWalkStopsBeforeListingAfterBudget(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "a", "v-big.mp4"), 1_000)
	testsupport.WriteFile(t, filepath.Join(dir, "b", "v-later.mp4"), 10)

	classifier := &fakeClassifier{}
	result, err := newWalker(classifier, &fakeConverter{}).Walk(context.Background(), dir, walker.Options{Budget: 500, Recursive: true})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if !result.BudgetReached {
		t.Fatal("expected budget reached")
	}
	if !slices.Equal(classifier.calls, []string{"v-big.mp4"}) {
		t.Fatalf("nothing after the budget should be visited: %v", classifier.calls)
	}
}

func TestWalkNeverFollowsSymlinkedDirectories(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(outside, "v-elsewhere.mp4"), 10)
	if err := os.Symlink(outside, filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	classifier := &fakeClassifier{}
	if _, err := newWalker(classifier, &fakeConverter{}).Walk(context.Background(), dir, walker.Options{Budget: 1_000, Recursive: true}); err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if len(classifier.calls) != 0 {
		t.Fatalf("symlinked directory was descended: %v", classifier.calls)
	}
}

func TestWalkVanishedFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "v-first.mp4"), 10)
	second := filepath.Join(dir, "v-second.mp4")
	testsupport.WriteFile(t, second, 10)
	testsupport.WriteFile(t, filepath.Join(dir, "v-third.mp4"), 10)

	conv := &fakeConverter{before: func(path string) {
		if filepath.Base(path) == "v-first.mp4" {
			_ = os.Remove(second)
		}
	}}
	result, err := newWalker(&fakeClassifier{}, conv).Walk(context.Background(), dir, walker.Options{Budget: 1_000})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if !slices.Equal(conv.calls, []string{"v-first.mp4", "v-third.mp4"}) {
		t.Fatalf("unexpected conversions %v", conv.calls)
	}
	if result.BytesProcessed != 20 || result.Failed != 0 {
		t.Fatalf("vanished file must be skipped silently: %+v", result)
	}
}

// removingClassifier deletes a file right after classifying it, as if it
// were moved away before the encoder could open it.
type removingClassifier struct {
	fakeClassifier
	remove string
}

func (r *removingClassifier) Classify(ctx context.Context, path string) (classify.Classification, error) {
	out, err := r.fakeClassifier.Classify(ctx, path)
	if filepath.Base(path) == r.remove {
		_ = os.Remove(path)
	}
	return out, err
}

func TestWalkInputRemovedBeforeEncodeIsSkipped(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithStubScript("ffmpeg", "#!/bin/sh\necho 'No such file or directory' >&2\nexit 1\n"),
	)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "v0.mkv"), 100)

	classifier := &removingClassifier{remove: "v0.mkv"}
	w := walker.New(classifier, encoding.New(cfg, logging.NewNop()), logging.NewNop())
	result, err := w.Walk(context.Background(), dir, walker.Options{Budget: 1_000})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if result.Failed != 0 || result.Skipped != 1 || result.BytesProcessed != 0 {
		t.Fatalf("removed input must be skipped silently: %+v", result)
	}
	if len(result.Outcomes) != 0 {
		t.Fatalf("vanished files leave no outcome, got %+v", result.Outcomes)
	}
}

func TestWalkConversionFailureContinues(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "v-bad.mp4"), 100)
	testsupport.WriteFile(t, filepath.Join(dir, "v-good.mp4"), 100)

	boom := services.Wrap(services.ErrExternalTool, "encoding", "ffmpeg", "Invalid data found", errors.New("exit status 1"))
	conv := &fakeConverter{fail: map[string]error{"v-bad.mp4": boom}}
	result, err := newWalker(&fakeClassifier{}, conv).Walk(context.Background(), dir, walker.Options{Budget: 1_000})
	if err != nil {
		t.Fatalf("per-file failures must not fail the walk: %v", err)
	}
	if result.Failed != 1 || result.Converted != 1 {
		t.Fatalf("unexpected counts %+v", result)
	}
	if result.BytesProcessed != 100 {
		t.Fatalf("failed conversions must not advance the budget, got %d", result.BytesProcessed)
	}
	if !errors.Is(result.Outcomes[0].Err, services.ErrExternalTool) {
		t.Fatalf("expected failure recorded on outcome, got %+v", result.Outcomes[0])
	}
}

func TestWalkClassificationFailureContinues(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "v-broken.mp4"), 100)
	testsupport.WriteFile(t, filepath.Join(dir, "v-fine.mp4"), 100)

	classifier := &fakeClassifier{fail: map[string]error{
		"v-broken.mp4": services.Wrap(services.ErrExternalTool, "classify", "mediainfo", "read encoder settings", errors.New("exit status 1")),
	}}
	conv := &fakeConverter{}
	result, err := newWalker(classifier, conv).Walk(context.Background(), dir, walker.Options{Budget: 1_000})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if !slices.Equal(conv.calls, []string{"v-fine.mp4"}) || result.Skipped != 1 {
		t.Fatalf("unexpected result %+v calls=%v", result, conv.calls)
	}
}

func TestWalkExistingOutputIsSkipped(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "v-clip.mp4"), 100)
	testsupport.WriteFile(t, filepath.Join(dir, "v-clip-c.mp4"), 10)

	conv := &fakeConverter{}
	result, err := newWalker(&fakeClassifier{}, conv).Walk(context.Background(), dir, walker.Options{Budget: 1_000})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	// v-clip-c.mp4 itself still qualifies under the fake and converts to v-clip-c-c.mp4.
	if slices.Contains(conv.calls, "v-clip.mp4") {
		t.Fatalf("existing output must not be overwritten: %v", conv.calls)
	}
	var reasons []string
	for _, outcome := range result.Outcomes {
		reasons = append(reasons, outcome.Reason)
	}
	if !slices.Contains(reasons, walker.ReasonOutputExists) {
		t.Fatalf("expected output-exists skip, got %v", reasons)
	}
}

func TestWalkCancellationStopsBetweenFiles(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "v-1.mp4"), 10)
	testsupport.WriteFile(t, filepath.Join(dir, "v-2.mp4"), 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conv := &fakeConverter{before: func(string) { cancel() }}
	result, err := newWalker(&fakeClassifier{}, conv).Walk(ctx, dir, walker.Options{Budget: 1_000})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}
	if !result.Interrupted || len(conv.calls) != 1 {
		t.Fatalf("expected interruption after first file: %+v calls=%v", result, conv.calls)
	}
}

func TestWalkRootErrors(t *testing.T) {
	w := newWalker(&fakeClassifier{}, &fakeConverter{})

	_, err := w.Walk(context.Background(), filepath.Join(t.TempDir(), "missing"), walker.Options{Budget: 1})
	if !errors.Is(err, services.ErrNotFound) || !services.IsSetupFailure(err) {
		t.Fatalf("expected not-found setup failure, got %v", err)
	}

	_, err = w.Walk(context.Background(), t.TempDir(), walker.Options{Budget: 0})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for zero budget, got %v", err)
	}

	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed for root")
	}
	locked := t.TempDir()
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })
	_, err = w.Walk(context.Background(), locked, walker.Options{Budget: 1})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unreadable root, got %v", err)
	}
}
