package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roofkit/roof-customizer/internal/catalog"
	"github.com/roofkit/roof-customizer/internal/config"
	"github.com/roofkit/roof-customizer/internal/logging"
	"github.com/roofkit/roof-customizer/internal/metrics"
	"github.com/roofkit/roof-customizer/internal/resolver"
	"github.com/roofkit/roof-customizer/internal/roof"
	"github.com/roofkit/roof-customizer/internal/server"
	"github.com/roofkit/roof-customizer/internal/tui"
)

type rootOptions struct {
	configPath  string
	catalogPath string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "roof",
		Short:         "Roof customizer: resolve roof configurations to preview images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to roof.yaml")
	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "override catalog file merged over the built-in one")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newResolveCmd(opts),
		newCatalogCmd(opts),
		newTUICmd(opts),
	)
	return cmd
}

// load reads configuration and applies the persistent flag overrides.
func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.catalogPath != "" {
		cfg.CatalogPath = o.catalogPath
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

func (o *rootOptions) resolver(cfg config.Config) (*resolver.CatalogResolver, error) {
	cat, err := catalog.NewLoader().Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	return resolver.New(cat, nil), nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var httpAddr, grpcAddr, assetDir string
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and gRPC health endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("http") {
				cfg.HTTPAddr = httpAddr
			}
			if cmd.Flags().Changed("grpc") {
				cfg.GRPCAddr = grpcAddr
			}
			if cmd.Flags().Changed("assets") {
				cfg.AssetDir = assetDir
			}
			if cmd.Flags().Changed("watch") {
				cfg.Watch = watch
			}

			log, err := logging.New(cfg.Log)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer log.Sync()

			srv, err := server.New(cfg, log, metrics.New())
			if err != nil {
				log.Error("startup failed", zap.Error(err))
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "HTTP listen address")
	cmd.Flags().StringVar(&grpcAddr, "grpc", "", "gRPC listen address")
	cmd.Flags().StringVar(&assetDir, "assets", "", "directory holding preview images")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the override catalog when it changes")
	return cmd
}

type resolveFlags struct {
	color    string
	style    string
	material string
	windows  int
	height   int
	length   int
	raw      bool
	asJSON   bool
}

func (f resolveFlags) selection() roof.Selection {
	sel := roof.Selection{
		Color:       f.color,
		Style:       f.style,
		Material:    f.material,
		WindowCount: f.windows,
		Height:      f.height,
		Length:      f.length,
	}
	if f.raw {
		return sel
	}
	return sel.Clamped()
}

func newResolveCmd(opts *rootOptions) *cobra.Command {
	def := roof.DefaultSelection()
	f := resolveFlags{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a roof selection to its preview asset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			r, err := opts.resolver(cfg)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), r.Resolve(f.selection()), f.asJSON)
		},
	}
	cmd.Flags().StringVar(&f.color, "color", def.Color, "roof color")
	cmd.Flags().StringVar(&f.style, "style", def.Style, "roof style (gable, hip)")
	cmd.Flags().StringVar(&f.material, "material", def.Material, "roof material")
	cmd.Flags().IntVar(&f.windows, "windows", def.WindowCount, "window count (1-3)")
	cmd.Flags().IntVar(&f.height, "height", def.Height, "height (1-3, blue gable tile with one window only)")
	cmd.Flags().IntVar(&f.length, "length", def.Length, "length (1-3, blue gable tile with one window only)")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "do not clamp numeric values to the control range")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print JSON")
	return cmd
}

func printResult(w io.Writer, res resolver.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	note := ""
	if res.Fallback {
		note = " (default)"
	}
	_, err := fmt.Fprintf(w, "key:   %s\nasset: %s%s\n\n%s\n", res.Key, res.Asset, note, res.Summary)
	return err
}

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate asset catalogs",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print every catalog entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			cat, err := catalog.NewLoader().Load(cfg.CatalogPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range cat.Entries() {
				fmt.Fprintf(out, "%-24s %s\n", e.Key, e.Asset)
			}
			fmt.Fprintf(out, "%-24s %s\n", "(default)", cat.Default())
			return nil
		},
	}

	var standalone bool
	validate := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a catalog file merged over the built-in catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.catalogPath
			if len(args) == 1 {
				path = args[0]
			}
			if standalone {
				if path == "" {
					return fmt.Errorf("--standalone needs a catalog file")
				}
				cat, err := loadStandalone(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok: %d entries, default %s\n", cat.Len(), cat.Default())
				return nil
			}
			if path != "" {
				if _, err := os.Stat(path); err != nil {
					return err
				}
			}
			cat, err := catalog.NewLoader().Load(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d entries, default %s\n", cat.Len(), cat.Default())
			return nil
		},
	}
	validate.Flags().BoolVar(&standalone, "standalone", false, "validate the file on its own, without the built-in entries")

	cmd.AddCommand(list, validate)
	return cmd
}

// loadStandalone validates a catalog file that must be complete by itself.
func loadStandalone(path string) (*catalog.Catalog, error) {
	raw, err := catalog.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return catalog.New(raw)
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Configure a roof interactively in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			r, err := opts.resolver(cfg)
			if err != nil {
				return err
			}
			sel, err := tui.Run(r)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), r.Resolve(sel), false)
		},
	}
}
