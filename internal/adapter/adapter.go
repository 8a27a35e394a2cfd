// Package adapter defines dataset adapters: the bridge between raw benchmark
// files on disk and the evaluation loop. An adapter knows how to load its
// dataset, turn a record into a model prompt, and score a model reply.
package adapter

import (
	"context"

	"github.com/stellarlinkco/mcq-eval/internal/dataset"
)

// OutputType is the mode a model is driven in for a dataset.
type OutputType string

const (
	// OutputMultipleChoice means the harness already obtains a discrete
	// choice from the model; replies need no parsing.
	OutputMultipleChoice OutputType = "multiple_choice"
	// OutputGeneration means free-form text generation; replies are parsed
	// for an answer letter.
	OutputGeneration OutputType = "generation"
)

// Prompt is the container the evaluation loop consumes.
type Prompt struct {
	Data []string `json:"data"`
}

// Info is the registration metadata for a dataset adapter.
type Info struct {
	Name           string       `json:"name"`
	PrettyName     string       `json:"pretty_name"`
	Description    string       `json:"description"`
	Tags           []string     `json:"tags"`
	DatasetID      string       `json:"dataset_id"`
	OutputTypes    []OutputType `json:"output_types"`
	SubsetList     []string     `json:"subset_list"`
	MetricList     []string     `json:"metric_list"`
	FewShotNum     int          `json:"few_shot_num"`
	TrainSplit     string       `json:"train_split"`
	EvalSplit      string       `json:"eval_split"`
	PromptTemplate string       `json:"-"`
	QueryTemplate  string       `json:"-"`
}

// Adapter is the capability set the evaluation loop needs from a dataset.
type Adapter interface {
	Info() Info

	// LoadFromDisk builds the subset -> split -> records mapping. Missing
	// files are skipped, not errors.
	LoadFromDisk(ctx context.Context, nameOrPath, workDir string, subsets []string) (dataset.Dataset, error)

	// GenPrompt renders one record, with optional few-shot exemplars, into
	// a model-ready prompt.
	GenPrompt(input dataset.Record, subset string, fewShot []dataset.Record) (*Prompt, error)

	// GoldAnswer extracts the reference label from a record.
	GoldAnswer(input dataset.Record) string

	// ParsePrediction extracts the predicted label from raw model output.
	ParsePrediction(raw string, output OutputType) string

	// Match scores a prediction against the gold label in [0, 1].
	Match(gold, pred string) float64
}
