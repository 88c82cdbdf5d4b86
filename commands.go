package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"

	"moodboard/internal/composer"
	"moodboard/internal/domain"
	"moodboard/internal/export"
	"moodboard/internal/storage"
	"moodboard/internal/templates"
)

// withRepositories resolves the config and opens its storage for one
// command run.
func withRepositories(ctx context.Context, command *cli.Command, fn func(*storage.Repositories) error) error {
	cfg, err := configFrom(command)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	repos, err := storage.OpenRepositories(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return err
	}
	defer repos.Close()
	return fn(repos)
}

// ── export ─────────────────────────────────────────────────

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Render a page of a saved scene to a PNG wireframe",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "scene", Usage: "Scene ID", Required: true},
			&cli.IntFlag{Name: "page", Usage: "Page index", Value: 0},
			&cli.FloatFlag{Name: "scale", Usage: "Pixel scale", Value: 1},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output PNG file", Required: true},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			return withRepositories(ctx, command, func(repos *storage.Repositories) error {
				scene, err := repos.Scenes.GetScene(ctx, command.String("scene"))
				if err != nil {
					return err
				}
				page := int(command.Int("page"))
				if page < 0 || page >= scene.TotalPages {
					return fmt.Errorf("page %d out of range (0-%d)", page, scene.TotalPages-1)
				}
				out := command.String("out")
				if err := export.WritePNG(out, composer.PageStateOf(*scene, page), command.Float("scale")); err != nil {
					return err
				}
				fmt.Printf("%s page %d -> %s\n", scene.Name, page, out)
				return nil
			})
		},
	}
}

// ── templates ──────────────────────────────────────────────

func templatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "Inspect layout templates",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List built-in and user templates",
				Action: func(ctx context.Context, command *cli.Command) error {
					cfg, err := configFrom(command)
					if err != nil {
						return err
					}
					reg := templates.NewRegistry(nil)
					if _, err := os.Stat(cfg.TemplatesPath()); err == nil {
						if _, err := reg.LoadDir(cfg.TemplatesPath()); err != nil {
							return err
						}
					}
					tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tNAME\tCELLS")
					for _, t := range reg.List() {
						fmt.Fprintf(tw, "%s\t%s\t%d\n", t.ID, t.Name, len(t.Cells))
					}
					return tw.Flush()
				},
			},
			{
				Name:      "validate",
				Usage:     "Check template files against the template schema",
				ArgsUsage: "FILE...",
				Action: func(ctx context.Context, command *cli.Command) error {
					files := command.Args().Slice()
					if len(files) == 0 {
						return fmt.Errorf("no template files given")
					}
					var failed int
					for _, f := range files {
						data, err := os.ReadFile(f)
						if err == nil {
							_, err = templates.Parse(data)
						}
						if err != nil {
							failed++
							fmt.Printf("%s: %v\n", f, err)
							continue
						}
						fmt.Printf("%s: ok\n", f)
					}
					if failed > 0 {
						return fmt.Errorf("%d of %d templates invalid", failed, len(files))
					}
					return nil
				},
			},
		},
	}
}

// ── scenes ─────────────────────────────────────────────────

func scenesCommand() *cli.Command {
	return &cli.Command{
		Name:  "scenes",
		Usage: "Manage saved scenes",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved scenes",
				Action: func(ctx context.Context, command *cli.Command) error {
					return withRepositories(ctx, command, func(repos *storage.Repositories) error {
						list, err := repos.Scenes.ListScenes(ctx)
						if err != nil {
							return err
						}
						tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
						fmt.Fprintln(tw, "ID\tNAME\tPAGES\tNODES\tUPDATED")
						for _, s := range list {
							fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", s.ID, s.Name, s.TotalPages, s.NodeCount, s.UpdatedAt.Format("2006-01-02 15:04"))
						}
						return tw.Flush()
					})
				},
			},
			{
				Name:      "import",
				Usage:     "Store a scene document from a JSON file",
				ArgsUsage: "FILE",
				Action: func(ctx context.Context, command *cli.Command) error {
					path := command.Args().First()
					if path == "" {
						return fmt.Errorf("scene file is required")
					}
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					var doc domain.Document
					if err := json.Unmarshal(data, &doc); err != nil {
						return fmt.Errorf("parse %s: %w", path, err)
					}
					if err := doc.Validate(); err != nil {
						return err
					}
					scene := domain.NewScene(doc)
					return withRepositories(ctx, command, func(repos *storage.Repositories) error {
						if err := repos.Scenes.SaveScene(ctx, &scene); err != nil {
							return err
						}
						fmt.Printf("imported %s (%d nodes, %d pages)\n", scene.ID, len(scene.Nodes), scene.TotalPages)
						return nil
					})
				},
			},
		},
	}
}
