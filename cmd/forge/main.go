// Command forge generates one complete fair-play mystery from the command
// line: it runs the full pipeline and writes every artifact plus the final
// result bundle into the output directory.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"mysteryforge/internal/config"
	"mysteryforge/internal/llm"
	"mysteryforge/internal/orch"
	"mysteryforge/internal/progress"
	"mysteryforge/internal/store"
	"mysteryforge/internal/types"
)

func main() {
	theme := flag.String("theme", "", "story theme (required)")
	era := flag.String("era", "", "time period, e.g. '1920s'")
	location := flag.String("location", "", "location preset, e.g. 'country house'")
	tone := flag.String("tone", "", "narrative tone")
	axis := flag.String("axis", "whodunit", "primary mystery axis: whodunit, howdunit, alibi")
	castSize := flag.Int("cast", 0, "requested cast size")
	castNames := flag.String("names", "", "comma-separated character names to include")
	length := flag.Int("length", 0, "approximate target word count")
	style := flag.String("style", "", "narrative style")
	skipNovelty := flag.Bool("skip-novelty", false, "skip the novelty audit")
	threshold := flag.Float64("threshold", 0, "novelty similarity threshold (0 = default)")
	corpus := flag.String("corpus", "", "path to the seed-case corpus JSON")
	outDir := flag.String("out", "out", "output directory")
	model := flag.String("model", "", "backend model id (overrides FORGE_MODEL)")
	project := flag.String("project", "", "project identifier")
	fake := flag.Bool("fake", false, "use the deterministic fake backend")
	flag.Parse()

	if *theme == "" {
		log.Fatal("-theme is required")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if *model != "" {
		cfg.Backend.Model = *model
	}

	ctx := context.Background()
	cli, err := buildClient(ctx, cfg, *fake)
	if err != nil {
		log.Fatal(err)
	}
	defer cli.Close()

	o := orch.New(cli)
	o.Store = buildStore(cfg)

	req := types.GenerationRequest{
		RunID:               uuid.NewString(),
		ProjectID:           *project,
		Theme:               *theme,
		Era:                 *era,
		LocationPreset:      *location,
		Tone:                *tone,
		PrimaryAxis:         *axis,
		CastSize:            *castSize,
		CastNames:           splitNames(*castNames),
		TargetLength:        *length,
		NarrativeStyle:      *style,
		SkipNoveltyCheck:    *skipNovelty,
		SimilarityThreshold: *threshold,
		SeedCorpusPath:      *corpus,
	}

	log.Printf("run %s: generating %q mystery with %s", req.RunID, req.Theme, cli.Name())
	start := time.Now()

	res, err := o.Run(ctx, req, progress.Func(func(ev progress.Event) {
		log.Printf("[%3d%%] %s: %s", ev.Percentage, ev.Stage, ev.Message)
	}))
	if err != nil {
		var gf *orch.GenerationFailure
		if errors.As(err, &gf) {
			for _, w := range gf.Warnings {
				log.Printf("warning: %s", w)
			}
			for _, e := range gf.Errors {
				log.Printf("error: %s", e)
			}
		}
		log.Fatal(err)
	}

	for _, kind := range types.Kinds() {
		if art := res.Artifacts.ByKind(kind); art != nil {
			writeJSON(*outDir, string(kind)+".json", art)
		}
	}
	writeJSON(*outDir, "result.json", res)

	for _, w := range res.Warnings {
		log.Printf("warning: %s", w)
	}
	log.Printf("run %s: %s in %s ($%.4f) -> %s",
		res.Metadata.RunID, res.Status, time.Since(start).Round(time.Millisecond),
		res.Metadata.TotalCost, *outDir)
}

func buildClient(ctx context.Context, cfg *config.Config, fake bool) (llm.Client, error) {
	var base llm.Client
	if fake {
		base = llm.NewFakeClient()
	} else {
		if cfg.Backend.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set (or pass -fake)")
		}
		cli, err := llm.NewGeminiClient(ctx, cfg.Backend.Model)
		if err != nil {
			return nil, err
		}
		base = cli
	}
	return llm.Wrap(base,
		llm.WithLogging(nil),
		llm.Retry(3, 500*time.Millisecond),
		llm.RateLimit(cfg.Backend.RPS, 2),
	), nil
}

// buildStore assembles the persistence fanout from whatever backends the
// environment configures; a run with no backends simply is not persisted.
func buildStore(cfg *config.Config) store.RunStore {
	var stores []store.RunStore
	if cfg.Store.PostgresDSN != "" {
		pg, err := store.NewPostgresStore(cfg.Store.PostgresDSN)
		if err != nil {
			log.Printf("postgres store disabled: %v", err)
		} else {
			stores = append(stores, pg)
		}
	}
	if cfg.Artifact.Enabled {
		s3, err := store.NewS3Store(store.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			log.Printf("s3 store disabled: %v", err)
		} else {
			stores = append(stores, s3)
		}
	}
	switch len(stores) {
	case 0:
		return nil
	case 1:
		return stores[0]
	default:
		return store.NewFanout(stores...)
	}
}

func splitNames(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func writeJSON(dir, name string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", name, err)
	}
}
