package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kapu/culturesphere-go/internal/config"
	"github.com/kapu/culturesphere-go/internal/domain"
	"github.com/kapu/culturesphere-go/internal/service/qloo"
	"github.com/kapu/culturesphere-go/internal/service/taste"
	"github.com/kapu/culturesphere-go/internal/util"
)

type tasteService interface {
	GetUserTastes(ctx context.Context, userInput, domainKey, apiKey string) domain.TasteResult
}

type probeResult struct {
	Domain  string
	Result  domain.TasteResult
	Elapsed time.Duration
}

type probeOptions struct {
	domains     []string
	query       string
	concurrency int
	timeout     time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := probeOptions{}

	cmd := &cobra.Command{
		Use:   "probe_domains",
		Short: "Run the Qloo taste pipeline against each configured domain",
		Long: `probe_domains resolves the query in every domain of the profile table and
prints the status trail and recommendation names, to check search types,
insight filters and sample entity IDs against the live API.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.domains, "domains", nil, "domains to probe (default: all configured)")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "search query; empty probes sample entities only")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", 3, "maximum domains probed at once")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "overall probe deadline")

	return cmd
}

func run(ctx context.Context, out io.Writer, opts probeOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := util.NewLogger(cfg.LogOptions())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Qloo.APIKey == "" {
		return fmt.Errorf("QLOO_API_KEY is required for probing")
	}

	profiles, err := domain.LoadProfiles(cfg.Qloo.DomainProfilesFile)
	if err != nil {
		return err
	}

	client := qloo.NewClient(qloo.ClientConfig{BaseURL: cfg.Qloo.BaseURL, Timeout: cfg.Qloo.Timeout}, logger)
	orchestrator := taste.NewOrchestrator(profiles,
		qloo.NewEntityResolver(client, logger),
		qloo.NewInsightFetcher(client, logger),
		logger)

	domains := opts.domains
	if len(domains) == 0 {
		domains = profiles.Domains()
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	logger.Info("Probing domains", zap.Strings("domains", domains), zap.Int("concurrency", opts.concurrency))
	results := probe(ctx, orchestrator, domains, opts.query, cfg.Qloo.APIKey, opts.concurrency)
	printResults(out, results)
	return nil
}

// probe runs each domain concurrently; stages within a domain stay sequential.
func probe(ctx context.Context, tastes tasteService, domains []string, query, apiKey string, concurrency int) []probeResult {
	if concurrency < 1 {
		concurrency = 1
	}

	p := pool.NewWithResults[probeResult]().WithMaxGoroutines(concurrency)
	for _, d := range domains {
		p.Go(func() probeResult {
			start := time.Now()
			result := tastes.GetUserTastes(ctx, query, d, apiKey)
			return probeResult{Domain: d, Result: result, Elapsed: time.Since(start)}
		})
	}

	results := p.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].Domain < results[j].Domain })
	return results
}

func printResults(out io.Writer, results []probeResult) {
	for _, r := range results {
		fmt.Fprintf(out, "== %s (%s)\n", r.Domain, r.Elapsed.Round(time.Millisecond))
		for _, stage := range r.Result.Stages {
			if strings.TrimSpace(stage.Text) == "" {
				continue
			}
			fmt.Fprintf(out, "  [%s] %s\n", stage.Stage, stage.Text)
		}
		names := r.Result.RecommendationNames()
		if len(names) == 0 {
			fmt.Fprintln(out, "  recommendations: none")
			continue
		}
		fmt.Fprintf(out, "  recommendations: %s\n", strings.Join(names, ", "))
	}
}
