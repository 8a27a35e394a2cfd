// Package runner drives a dataset adapter end to end: load records, render
// prompts, call the model, parse and score replies, aggregate accuracy.
package runner

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stellarlinkco/mcq-eval/internal/adapter"
	"github.com/stellarlinkco/mcq-eval/internal/dataset"
	"github.com/stellarlinkco/mcq-eval/internal/llm"
	"github.com/stellarlinkco/mcq-eval/internal/metrics"
)

type Runner struct {
	Provider llm.Provider
}

// Options configures one evaluation run.
type Options struct {
	DatasetPath string   // Path or name resolved under WorkDir
	WorkDir     string   // Base dir for relative dataset names
	Subsets     []string // Empty = adapter's default subset list
	FewShot     int      // Exemplars from the head of the train split
	Limit       int      // Max eval records per subset, 0 = all
	OutputType  adapter.OutputType
	MaxTokens   int
	Temperature float64
}

// QuestionResult is one scored question.
type QuestionResult struct {
	ID      string
	Gold    string
	Pred    string
	Score   float64
	Latency time.Duration
	Tokens  int
	Error   string
}

// SubsetResult aggregates one subset.
type SubsetResult struct {
	Subset   string
	Accuracy float64
	Results  []QuestionResult
}

// Result aggregates a whole run.
type Result struct {
	Adapter     string
	Model       string
	Subsets     []SubsetResult
	Accuracy    float64
	TotalTime   time.Duration
	TotalTokens int
}

// Run evaluates every eval-split record of the requested subsets. Provider
// errors mark the question failed and evaluation continues; context
// cancellation stops the run with the partial result.
func (r *Runner) Run(ctx context.Context, ad adapter.Adapter, opts Options) (*Result, error) {
	if r == nil {
		return nil, errors.New("runner: nil runner")
	}
	if ctx == nil {
		return nil, errors.New("runner: nil context")
	}
	if r.Provider == nil {
		return nil, errors.New("runner: nil provider")
	}
	if ad == nil {
		return nil, errors.New("runner: nil adapter")
	}

	info := ad.Info()
	subsets := opts.Subsets
	if len(subsets) == 0 {
		subsets = info.SubsetList
	}
	outputType := opts.OutputType
	if outputType == "" {
		outputType = adapter.OutputGeneration
	}

	start := time.Now()
	ds, err := ad.LoadFromDisk(ctx, opts.DatasetPath, opts.WorkDir, subsets)
	if err != nil {
		return nil, err
	}

	out := &Result{
		Adapter: strings.TrimSpace(info.Name),
		Model:   strings.TrimSpace(r.Provider.Name()),
	}

	var allScores []float64
	for _, subset := range subsets {
		records := ds.Records(subset, info.EvalSplit)
		if len(records) == 0 {
			continue
		}
		if opts.Limit > 0 && len(records) > opts.Limit {
			records = records[:opts.Limit]
		}

		fewShot := headOfSplit(ds.Records(subset, info.TrainSplit), opts.FewShot)

		sr := SubsetResult{
			Subset:  subset,
			Results: make([]QuestionResult, 0, len(records)),
		}
		var scores []float64

		for _, rec := range records {
			if err := ctx.Err(); err != nil {
				sr.Accuracy = metrics.AverageAccuracy(scores)
				out.Subsets = append(out.Subsets, sr)
				allScores = append(allScores, scores...)
				finish(out, allScores, start)
				return out, err
			}

			qr := r.evalQuestion(ctx, ad, rec, subset, fewShot, outputType, opts)
			out.TotalTokens += qr.Tokens
			scores = append(scores, qr.Score)
			sr.Results = append(sr.Results, qr)
		}

		sr.Accuracy = metrics.AverageAccuracy(scores)
		out.Subsets = append(out.Subsets, sr)
		allScores = append(allScores, scores...)
	}

	if len(out.Subsets) == 0 {
		return nil, errors.New("runner: no records found for requested subsets")
	}

	finish(out, allScores, start)
	return out, nil
}

func (r *Runner) evalQuestion(
	ctx context.Context,
	ad adapter.Adapter,
	rec dataset.Record,
	subset string,
	fewShot []dataset.Record,
	outputType adapter.OutputType,
	opts Options,
) QuestionResult {
	qr := QuestionResult{
		ID:   strings.TrimSpace(rec.ID),
		Gold: ad.GoldAnswer(rec),
	}

	prompt, err := ad.GenPrompt(rec, subset, fewShot)
	if err != nil {
		qr.Error = err.Error()
		return qr
	}
	if prompt == nil || len(prompt.Data) == 0 {
		qr.Error = "runner: empty prompt"
		return qr
	}

	req := &llm.Request{
		Messages:    []llm.Message{{Role: "user", Content: prompt.Data[0]}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	resp, err := r.Provider.Complete(ctx, req)
	if resp != nil {
		qr.Latency = time.Duration(resp.LatencyMs) * time.Millisecond
		qr.Tokens = resp.Usage.InputTokens + resp.Usage.OutputTokens
	}
	if err != nil {
		qr.Error = err.Error()
		return qr
	}
	if resp == nil {
		qr.Error = "runner: nil response"
		return qr
	}

	qr.Pred = ad.ParsePrediction(resp.Text, outputType)
	qr.Score = ad.Match(qr.Gold, qr.Pred)
	return qr
}

func headOfSplit(records []dataset.Record, n int) []dataset.Record {
	if n <= 0 || len(records) == 0 {
		return nil
	}
	if n > len(records) {
		n = len(records)
	}
	return records[:n]
}

func finish(out *Result, scores []float64, start time.Time) {
	out.Accuracy = metrics.AverageAccuracy(scores)
	out.TotalTime = time.Since(start)
}
