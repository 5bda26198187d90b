package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/KhanhRomVN/termi-tool/internal/annotate"
	"github.com/KhanhRomVN/termi-tool/internal/config"
	"github.com/KhanhRomVN/termi-tool/internal/errclass"
	"github.com/KhanhRomVN/termi-tool/internal/gemini"
	"github.com/KhanhRomVN/termi-tool/internal/rotator"
)

// NewAnnotateCommand creates the annotate command
func NewAnnotateCommand(cfg *config.Config) *cobra.Command {
	var (
		dir           string
		contextDesc   string
		model         string
		maxCycles     int
		metricsListen string
	)

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Annotate a directory of images with Gemini",
		Long: `Annotate every image in a directory with prefix/suffix descriptions.

Results are streamed to annotations.jsonl inside the image directory.
When an account hits its quota the run switches to the next one; after
a full cycle of failures it cools down and retries from the start of
the cycle. An image whose annotation exhausts the retry bound is
skipped and the batch continues.

Examples:
  termi-tool annotate --dir ./screenshots --context "UI screenshots of a code editor"
  termi-tool annotate --dir ./photos --context "street photography" --max-cycles 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			names, err := store.Names()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return errclass.UserError{
					Message:    "No accounts registered",
					Suggestion: "Add one with 'termi-tool accounts add <account>'",
				}
			}

			if metricsListen != "" {
				annotate.InitMetrics()
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", promhttp.Handler())
					if err := http.ListenAndServe(metricsListen, mux); err != nil {
						cfg.Logger.Warn("metrics listener stopped: %v", err)
					}
				}()
				cfg.Logger.Info("serving metrics on %s/metrics", metricsListen)
			}

			if model == "" {
				model = cfg.Model()
			}
			client := gemini.NewClient(model)

			rotOpts := rotator.Options{
				Cooldown: cfg.Cooldown(),
				Pause:    cfg.Pause(),
				Logger:   cfg.Logger,
			}
			rotOpts.MaxCycles = cfg.MaxCycles()
			if cmd.Flags().Changed("max-cycles") {
				rotOpts.MaxCycles = maxCycles
			}

			annotator, err := annotate.New(store, client.AnnotateImage, rotOpts)
			if err != nil {
				return err
			}
			defer annotator.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := annotator.Run(ctx, dir, contextDesc)
			if err != nil {
				return err
			}

			cfg.Logger.Info("done: %d/%d image(s) annotated, %d annotation(s) written",
				result.Annotated, result.Images, result.Annotations)
			if result.Failed > 0 {
				cfg.Logger.Warn("%d image(s) skipped after exhausting all accounts", result.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory containing the images (required)")
	cmd.Flags().StringVar(&contextDesc, "context", "", "Description of what the images show (required)")
	cmd.Flags().StringVar(&model, "model", "", "Gemini model to use (default from config, then "+gemini.DefaultModel+")")
	cmd.Flags().IntVar(&maxCycles, "max-cycles", 0, "Abort an image after this many full rotation cycles (0 = retry forever)")
	cmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	_ = cmd.MarkFlagRequired("dir")
	_ = cmd.MarkFlagRequired("context")

	return cmd
}
