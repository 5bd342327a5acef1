package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/TomasNiDo/study-baddie-ai/config"
	"github.com/TomasNiDo/study-baddie-ai/layout"
	canvasrenderer "github.com/TomasNiDo/study-baddie-ai/renderer/canvas"
	"github.com/TomasNiDo/study-baddie-ai/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:            "study-baddie",
		Usage:           "typeset markdown study summaries onto ruled notebook pages",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
		},
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "paginate a markdown file and write PDF or PNG pages",
				ArgsUsage: "<input.md>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "notes.pdf", Usage: "output `FILE` (.pdf or .png)"},
					&cli.StringFlag{Name: "title", Usage: "document title (default: input file name)"},
					&cli.StringFlag{Name: "debug-json", Usage: "also dump the page layout as JSON to `FILE`"},
				},
				Action: renderAction,
			},
			{
				Name:      "watch",
				Usage:     "re-render the output whenever the markdown file changes",
				ArgsUsage: "<input.md>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "notes.pdf", Usage: "output `FILE` (.pdf or .png)"},
					&cli.StringFlag{Name: "title", Usage: "document title (default: input file name)"},
				},
				Action: watchAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup(cmd *cli.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}
	log, err := cfg.Logging.Prepare()
	if err != nil {
		return nil, nil, fmt.Errorf("prepare logging: %w", err)
	}
	return cfg, log, nil
}

func inputAndTitle(cmd *cli.Command) (string, string, error) {
	if cmd.NArg() != 1 {
		return "", "", fmt.Errorf("expected exactly one markdown input file")
	}
	input := cmd.Args().First()
	title := cmd.String("title")
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	return input, title, nil
}

func renderAction(_ context.Context, cmd *cli.Command) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	input, title, err := inputAndTitle(cmd)
	if err != nil {
		return err
	}
	source, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	r := canvasrenderer.NewRenderer()
	sess := session.New(r, cfg.LayoutContext(), cfg.Debounce(), log)
	defer sess.Close()

	sess.Set(title, string(source))
	if err := sess.Flush(); err != nil {
		return err
	}
	result, ready := sess.Snapshot()
	if !ready {
		return fmt.Errorf("pagination did not complete")
	}

	if path := cmd.String("debug-json"); path != "" {
		if err := layout.WriteDebugJSON(result, path); err != nil {
			return fmt.Errorf("write debug JSON: %w", err)
		}
	}

	if err := writeOutput(r, result, cmd.String("out")); err != nil {
		return err
	}
	log.Info("rendered", zap.String("in", input), zap.Int("pages", len(result.Pages)), zap.String("out", cmd.String("out")))
	return nil
}

func watchAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	input, title, err := inputAndTitle(cmd)
	if err != nil {
		return err
	}
	out := cmd.String("out")

	r := canvasrenderer.NewRenderer()
	sess := session.New(r, cfg.LayoutContext(), cfg.Debounce(), log)
	defer sess.Close()
	sess.OnUpdate(func(result *layout.Result) {
		if err := writeOutput(r, result, out); err != nil {
			log.Error("write output", zap.Error(err))
			return
		}
		log.Info("re-rendered", zap.Int("pages", len(result.Pages)), zap.String("out", out))
	})

	reload := func() {
		source, err := os.ReadFile(input)
		if err != nil {
			log.Error("read input", zap.Error(err))
			return
		}
		sess.Set(title, string(source))
	}
	reload()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	// Watch the directory: editors commonly replace the file on save, which
	// would drop a watch on the file itself.
	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("watch %s: %w", input, err)
	}
	log.Info("watching", zap.String("in", input))

	target := filepath.Clean(input)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		}
	}
}

// writeOutput writes the result as PDF or as one PNG per page, chosen by the
// output extension.
func writeOutput(r *canvasrenderer.Renderer, result *layout.Result, out string) error {
	switch strings.ToLower(filepath.Ext(out)) {
	case ".png":
		pages, err := r.RenderPNG(result)
		if err != nil {
			return err
		}
		if len(pages) == 1 {
			return os.WriteFile(out, pages[0], 0o644)
		}
		base := strings.TrimSuffix(out, filepath.Ext(out))
		for i, data := range pages {
			name := fmt.Sprintf("%s-%d.png", base, i+1)
			if err := os.WriteFile(name, data, 0o644); err != nil {
				return err
			}
		}
		return nil
	default:
		data, err := r.Render(result)
		if err != nil {
			return err
		}
		if dir := filepath.Dir(out); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}
		return os.WriteFile(out, data, 0o644)
	}
}
