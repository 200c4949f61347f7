package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"go-solar-inspector/internal/analyzer"
	"go-solar-inspector/internal/config"
	"go-solar-inspector/internal/container"
	"go-solar-inspector/pkg/models"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "inspector",
		Usage: "analyze solar construction site images from the command line",
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "analyze one or more site images (paths, URLs or azblob:// refs)",
				ArgsUsage: "<image-ref> [image-ref...]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "workers", Usage: "concurrent analyses (0 = one per CPU)"},
					&cli.BoolFlag{Name: "pdf", Usage: "render a PDF report per image"},
					&cli.BoolFlag{Name: "enrich", Usage: "request AI commentary (needs OPENAI_API_KEY)"},
				},
				Action: analyzeAction,
			},
			{
				Name:  "thresholds",
				Usage: "inspect or retune the stage classification thresholds",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "print the active thresholds",
						Action: thresholdsShowAction,
					},
					{
						Name:   "recalc",
						Usage:  "recalculate thresholds from the feedback log",
						Action: thresholdsRecalcAction,
					},
				},
			},
			{
				Name:      "feedback",
				Usage:     "record a supervisor verdict on a prediction",
				ArgsUsage: "<image-ref>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "predicted", Required: true, Usage: "stage the system predicted"},
					&cli.BoolFlag{Name: "correct", Usage: "the prediction was correct"},
					&cli.StringFlag{Name: "corrected", Usage: "actual stage when the prediction was wrong"},
					&cli.StringFlag{Name: "comments", Usage: "free-text notes"},
					&cli.Float64Flag{Name: "edge-density", Usage: "edge density of the reviewed image"},
					&cli.Float64Flag{Name: "blue-ratio", Usage: "blue ratio of the reviewed image"},
				},
				Action: feedbackAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newContainer() (*container.Container, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	return container.NewContainer(cfg)
}

// batchResult pairs an image reference with its outcome for JSON output.
type batchResult struct {
	ImageRef string                     `json:"image_ref"`
	Response *models.InspectionResponse `json:"response,omitempty"`
	Error    string                     `json:"error,omitempty"`
}

func analyzeAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("at least one image reference is required", 1)
	}

	ctn, err := newContainer()
	if err != nil {
		return err
	}
	defer ctn.Close()

	svc := ctn.Service()
	refs := c.Args().Slice()

	pool := analyzer.NewWorkerPool(c.Int("workers"))
	pool.Start()
	defer pool.Close()

	results := make([]batchResult, len(refs))
	var mu sync.Mutex

	for i, ref := range refs {
		i, ref := i, ref
		pool.Submit(func() {
			resp, err := svc.Inspect(context.Background(), models.InspectionRequest{
				ImageRef:  ref,
				Enrich:    c.Bool("enrich"),
				RenderPDF: c.Bool("pdf"),
			})

			mu.Lock()
			defer mu.Unlock()
			results[i] = batchResult{ImageRef: ref, Response: resp}
			if err != nil {
				results[i].Error = err.Error()
			}
		})
	}
	pool.Wait()

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return err
	}

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d analyses failed", failed, len(refs)), 1)
	}
	return nil
}

func thresholdsShowAction(c *cli.Context) error {
	ctn, err := newContainer()
	if err != nil {
		return err
	}
	defer ctn.Close()

	return printJSON(ctn.Service().CurrentThresholds())
}

func thresholdsRecalcAction(c *cli.Context) error {
	ctn, err := newContainer()
	if err != nil {
		return err
	}
	defer ctn.Close()

	thresholds, stats, err := ctn.Service().RecalculateThresholds(context.Background())
	if err != nil {
		return err
	}

	return printJSON(map[string]interface{}{
		"thresholds":  thresholds,
		"stage_stats": stats,
	})
}

func feedbackAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("exactly one image reference is required", 1)
	}

	ctn, err := newContainer()
	if err != nil {
		return err
	}
	defer ctn.Close()

	req := models.FeedbackRequest{
		ImageRef:       c.Args().First(),
		PredictedStage: c.String("predicted"),
		Correct:        c.Bool("correct"),
		CorrectedStage: c.String("corrected"),
		Comments:       c.String("comments"),
		EdgeDensity:    c.Float64("edge-density"),
		BlueRatio:      c.Float64("blue-ratio"),
	}

	if err := ctn.Service().SubmitFeedback(context.Background(), req); err != nil {
		return err
	}

	fmt.Println("feedback recorded")
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
