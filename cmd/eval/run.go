package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/mcq-eval/internal/adapter"
	"github.com/stellarlinkco/mcq-eval/internal/config"
	"github.com/stellarlinkco/mcq-eval/internal/leaderboard"
	"github.com/stellarlinkco/mcq-eval/internal/llm"
	"github.com/stellarlinkco/mcq-eval/internal/runner"
)

type runOptions struct {
	adapterName string
	datasetPath string
	subsets     []string
	fewShot     int
	limit       int
	outputType  string
	provider    string
	model       string
	noSave      bool
}

func newRunCmd(st *cliState) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate a model on a multiple-choice dataset",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(st.configPath)
			if err != nil {
				return err
			}
			st.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.adapterName, "adapter", "general_mcq", "dataset adapter name")
	cmd.Flags().StringVar(&opts.datasetPath, "dataset", "", "dataset path, or name resolved under the configured work dir")
	cmd.Flags().StringSliceVar(&opts.subsets, "subsets", nil, "subset names (default: adapter's subset list)")
	cmd.Flags().IntVar(&opts.fewShot, "few-shot", -1, "few-shot exemplar count (-1 = adapter default)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "max eval records per subset (0 = all)")
	cmd.Flags().StringVar(&opts.outputType, "output-type", "", "generation|multiple_choice")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "provider name (overrides config)")
	cmd.Flags().StringVar(&opts.model, "model", "", "model name (overrides config)")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "skip saving results to the leaderboard")

	return cmd
}

func runEval(cmd *cobra.Command, st *cliState, opts *runOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("run: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("run: nil options")
	}
	if strings.TrimSpace(opts.datasetPath) == "" {
		return fmt.Errorf("run: missing --dataset")
	}

	registry := newAdapterRegistry()
	ad, ok := registry.Get(opts.adapterName)
	if !ok {
		return fmt.Errorf("run: unknown adapter %q (available: %s)", opts.adapterName, strings.Join(registry.Names(), ", "))
	}
	info := ad.Info()

	outputType, err := resolveOutputType(info, opts.outputType, st.cfg.Evaluation.OutputType)
	if err != nil {
		return err
	}

	provider, modelName, err := resolveProvider(st.cfg, opts.provider, opts.model)
	if err != nil {
		return err
	}

	fewShot := opts.fewShot
	if fewShot < 0 {
		fewShot = st.cfg.Evaluation.FewShot
		if fewShot <= 0 {
			fewShot = info.FewShotNum
		}
	}
	limit := opts.limit
	if limit <= 0 {
		limit = st.cfg.Evaluation.Limit
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := &runner.Runner{Provider: provider}
	res, runErr := r.Run(ctx, ad, runner.Options{
		DatasetPath: opts.datasetPath,
		WorkDir:     st.cfg.Evaluation.WorkDir,
		Subsets:     opts.subsets,
		FewShot:     fewShot,
		Limit:       limit,
		OutputType:  outputType,
		MaxTokens:   st.cfg.Evaluation.MaxTokens,
		Temperature: st.cfg.Evaluation.Temperature,
	})
	if runErr != nil {
		return runErr
	}
	res.Model = modelName

	out := cmd.OutOrStdout()
	for _, sr := range res.Subsets {
		correct := countCorrect(sr.Results)
		fmt.Fprintf(out, "subset=%s accuracy=%.4f (%d/%d)\n", sr.Subset, sr.Accuracy, correct, len(sr.Results))
	}
	fmt.Fprintf(out, "dataset=%s model=%s accuracy=%.4f time_ms=%d tokens=%d\n",
		res.Adapter, res.Model, res.Accuracy, res.TotalTime.Milliseconds(), res.TotalTokens)

	if opts.noSave {
		return nil
	}
	return saveResults(cmd.Context(), st.cfg, provider.Name(), modelName, fewShot, res)
}

func saveResults(ctx context.Context, cfg *config.Config, providerName, modelName string, fewShot int, res *runner.Result) error {
	lb, err := openLeaderboardStore(cfg)
	if err != nil {
		return err
	}
	defer lb.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	for _, sr := range res.Subsets {
		entry := &leaderboard.Entry{
			Model:     modelName,
			Provider:  providerName,
			Dataset:   res.Adapter,
			Subset:    sr.Subset,
			Accuracy:  sr.Accuracy,
			Questions: len(sr.Results),
			Correct:   countCorrect(sr.Results),
			FewShot:   fewShot,
			Latency:   res.TotalTime.Milliseconds(),
			Tokens:    res.TotalTokens,
			EvalDate:  time.Now().UTC(),
		}
		if err := lb.Save(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func countCorrect(results []runner.QuestionResult) int {
	n := 0
	for _, qr := range results {
		if qr.Score >= 1.0-1e-9 {
			n++
		}
	}
	return n
}

func resolveOutputType(info adapter.Info, flagValue, cfgValue string) (adapter.OutputType, error) {
	raw := strings.ToLower(strings.TrimSpace(flagValue))
	if raw == "" {
		raw = strings.ToLower(strings.TrimSpace(cfgValue))
	}
	if raw == "" {
		return adapter.OutputGeneration, nil
	}

	ot := adapter.OutputType(raw)
	for _, supported := range info.OutputTypes {
		if ot == supported {
			return ot, nil
		}
	}
	return "", fmt.Errorf("run: output type %q not supported by adapter %q", raw, info.Name)
}

func resolveProvider(cfg *config.Config, providerFlag, modelFlag string) (llm.Provider, string, error) {
	if cfg == nil {
		return nil, "", fmt.Errorf("run: missing config")
	}

	providerName := strings.TrimSpace(providerFlag)
	if model := strings.TrimSpace(modelFlag); model != "" {
		// A model override needs to reach the provider constructor, so
		// rebuild the provider config with it.
		name := providerName
		if name == "" {
			name = strings.TrimSpace(cfg.LLM.DefaultProvider)
		}
		if name == "anthropic" {
			name = "claude"
		}
		pcfg, ok := cfg.LLM.Providers[name]
		if !ok {
			return nil, "", fmt.Errorf("run: provider %q not configured", name)
		}
		pcfg.Model = model
		cfgCopy := *cfg
		cfgCopy.LLM.Providers = map[string]config.ProviderConfig{name: pcfg}
		p, err := llm.ProviderFromConfig(&cfgCopy, name)
		if err != nil {
			return nil, "", err
		}
		return p, model, nil
	}

	p, err := llm.ProviderFromConfig(cfg, providerName)
	if err != nil {
		return nil, "", err
	}

	name := providerName
	if name == "" {
		name = strings.TrimSpace(cfg.LLM.DefaultProvider)
	}
	if name == "anthropic" {
		name = "claude"
	}
	modelName := strings.TrimSpace(cfg.LLM.Providers[name].Model)
	if modelName == "" {
		modelName = "default"
	}
	return p, modelName, nil
}
