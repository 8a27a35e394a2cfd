package adapter

import (
	"context"
	"errors"
	"strings"

	"github.com/stellarlinkco/mcq-eval/internal/dataset"
	"github.com/stellarlinkco/mcq-eval/internal/metrics"
	"github.com/stellarlinkco/mcq-eval/internal/respparse"
)

const (
	generalMCQPromptTemplate = "请回答问题，并选出其中的正确答案。你的回答的最后一行应该是这样的格式：“答案是：LETTER”（不带引号），其中 LETTER 是 A、B、C、D 中的一个。\n{query}"
	generalMCQQueryTemplate  = "问题：{question}\n{choices}\n答案: {answer}\n\n"
)

// GeneralMCQ evaluates custom multiple-choice datasets: per-subset dev/val
// files in JSONL or CSV form, choice letters A..J, exact-match scoring.
type GeneralMCQ struct {
	info Info
}

// NewGeneralMCQ constructs the general MCQ adapter with its canonical
// registration metadata.
func NewGeneralMCQ() *GeneralMCQ {
	return &GeneralMCQ{
		info: Info{
			Name:        "general_mcq",
			PrettyName:  "General-MCQ",
			Description: "A general multiple-choice question answering dataset for custom evaluation.",
			Tags:        []string{"MCQ", "Custom"},
			DatasetID:   "general_mcq",
			OutputTypes: []OutputType{
				OutputMultipleChoice,
				OutputGeneration,
			},
			SubsetList:     []string{"default"},
			MetricList:     []string{metrics.AverageAccuracyName},
			FewShotNum:     0,
			TrainSplit:     "dev",
			EvalSplit:      "val",
			PromptTemplate: generalMCQPromptTemplate,
			QueryTemplate:  generalMCQQueryTemplate,
		},
	}
}

// Info returns the adapter's registration metadata.
func (a *GeneralMCQ) Info() Info {
	if a == nil {
		return Info{}
	}
	return a.info
}

// LoadFromDisk reads `{subset}_{split}` files for the adapter's train and
// eval splits, trying .jsonl before .csv for each pair.
func (a *GeneralMCQ) LoadFromDisk(ctx context.Context, nameOrPath, workDir string, subsets []string) (dataset.Dataset, error) {
	if a == nil {
		return nil, errors.New("adapter: nil adapter")
	}
	if len(subsets) == 0 {
		subsets = a.info.SubsetList
	}
	return dataset.LoadFromDisk(ctx, nameOrPath, workDir, subsets, []string{a.info.TrainSplit, a.info.EvalSplit})
}

// GenPrompt renders the target record after the few-shot exemplars. Exemplars
// carry their answers; the target's answer slot is left open and trailing
// whitespace is stripped so the model continues from the bare 答案: marker.
func (a *GeneralMCQ) GenPrompt(input dataset.Record, subset string, fewShot []dataset.Record) (*Prompt, error) {
	if a == nil {
		return nil, errors.New("adapter: nil adapter")
	}

	rendered := make([]string, 0, len(fewShot))
	for _, sample := range fewShot {
		s, err := a.formatExample(sample, true)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, s)
	}

	query := ""
	if len(rendered) > 0 {
		query = strings.Join(rendered, "\n") + "\n"
	}

	target, err := a.formatExample(input, false)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query) + target

	full := strings.ReplaceAll(a.info.PromptTemplate, "{query}", query)
	return &Prompt{Data: []string{full}}, nil
}

// GoldAnswer returns the record's gold choice letter, empty when absent.
func (a *GeneralMCQ) GoldAnswer(input dataset.Record) string {
	return input.Answer
}

// ParsePrediction extracts the predicted letter. In multiple-choice mode the
// raw result already is the choice; in generation mode the first recognizable
// option letter in the text wins, or "" when none is found.
func (a *GeneralMCQ) ParsePrediction(raw string, output OutputType) string {
	if output == OutputMultipleChoice {
		return raw
	}
	return respparse.FirstOption(raw, dataset.ChoiceLetters)
}

// Match is exact, case-sensitive string equality.
func (a *GeneralMCQ) Match(gold, pred string) float64 {
	return metrics.ExactMatch(gold, pred)
}

// formatExample renders one record through the query template. Absent choice
// letters are skipped; an absent question (or absent answer, when the answer
// is included) is an error surfaced to the caller.
func (a *GeneralMCQ) formatExample(input dataset.Record, includeAnswer bool) (string, error) {
	if input.Question == "" {
		return "", errors.New("adapter: record missing question")
	}

	var choices []string
	for _, letter := range dataset.ChoiceLetters {
		text, ok := input.Choice(letter)
		if !ok {
			continue
		}
		choices = append(choices, letter+". "+text)
	}

	answer := ""
	if includeAnswer {
		if input.Answer == "" {
			return "", errors.New("adapter: record missing answer")
		}
		answer = input.Answer
	}

	out := strings.NewReplacer(
		"{question}", input.Question,
		"{choices}", strings.Join(choices, "\n"),
		"{answer}", answer,
	).Replace(a.info.QueryTemplate)

	if !includeAnswer {
		out = strings.TrimRightFunc(out, func(r rune) bool {
			return r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
	}
	return out, nil
}
