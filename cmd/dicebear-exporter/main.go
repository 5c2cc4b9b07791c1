package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	dicebearexporter "github.com/kataras/dicebear-exporter"
	"github.com/kataras/dicebear-exporter/internal/config"
	"github.com/kataras/dicebear-exporter/internal/logging"
	"github.com/kataras/dicebear-exporter/internal/server"
	"github.com/kataras/dicebear-exporter/pkg/export"
	"github.com/kataras/dicebear-exporter/pkg/formatter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const version = dicebearexporter.Version

var (
	manifestPath string
	outputFile   string
	figmaURL     string
	accessToken  string
	showReport   bool
	reportFile   string
	verbose      bool

	serveAddr string

	initOutput    string
	initVersion   string
	initPrecision int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dicebear-exporter",
		Short: "Build DiceBear avatar style definitions",
		Long:  "A tool to build DiceBear avatar style definition files from a manifest, with node markup taken from the manifest or rendered through the Figma API",
		Run:   run,
	}

	rootCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Export manifest, YAML or JSON (required)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "definition.json", "Output definition file, - for stdout")
	rootCmd.Flags().StringVarP(&figmaURL, "url", "u", "", "Figma file URL (optional, renders nodes through the Figma API)")
	rootCmd.Flags().StringVarP(&accessToken, "token", "t", "", "Figma Personal Access Token (default $"+config.EnvFigmaToken+")")
	rootCmd.Flags().BoolVar(&showReport, "report", false, "Print a build report")
	rootCmd.Flags().StringVar(&reportFile, "report-file", "", "Write the build report as markdown to this file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print debug messages")

	rootCmd.MarkFlagRequired("manifest")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve definition builds over HTTP",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default $"+config.EnvAddr+" or "+config.DefaultAddr+")")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a manifest from a Figma file",
		Long:  "Scaffold a manifest from a Figma file. The URL names the avatar frame first, then the nodes holding component sets and colors/<group> swatches",
		Run:   scaffold,
	}
	initCmd.Flags().StringVarP(&figmaURL, "url", "u", "", "Figma file URL with node-id (required)")
	initCmd.Flags().StringVarP(&accessToken, "token", "t", "", "Figma Personal Access Token (default $"+config.EnvFigmaToken+")")
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "avatar.yml", "Output manifest file (.yml, .yaml or .json), - for stdout")
	initCmd.Flags().StringVar(&initVersion, "dicebear-version", "", "Target DiceBear version (default 9.x)")
	initCmd.Flags().IntVar(&initPrecision, "precision", 0, "Decimal precision of exported paths")
	initCmd.MarkFlagRequired("url")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dicebear-exporter version %s\n", version)
		},
	}

	rootCmd.AddCommand(initCmd, serveCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	// Messages go to stderr when the definition itself is written to stdout.
	var out io.Writer = os.Stdout
	if outputFile == "-" {
		out = os.Stderr
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)

	cyan.Fprintln(out, "\n🎨 DiceBear Definition Exporter")
	cyan.Fprintln(out, "================================")
	cyan.Fprintln(out)

	cfg, err := config.New()
	if err != nil {
		red.Fprintf(out, "Error: %v\n", err)
		os.Exit(1)
	}
	if accessToken == "" {
		accessToken = cfg.FigmaToken
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := dicebearexporter.Run(ctx, dicebearexporter.Options{
		ManifestPath: manifestPath,
		FileURL:      figmaURL,
		AccessToken:  accessToken,
		Logger:       &cliLogger{out: out, verbose: verbose},
	})
	if err != nil {
		red.Fprintf(out, "Error: %v\n", err)
		os.Exit(1)
	}

	// Display build stats.
	summary := result.Summary
	variants := 0
	for _, group := range summary.Components {
		variants += len(group.Variants)
	}
	emitted := 0
	for _, c := range summary.Colors {
		if c.Emitted {
			emitted++
		}
	}
	cyan.Fprintln(out, "\n📊 Build Summary:")
	fmt.Fprintf(out, "  • Mode: %s\n", summary.Mode)
	fmt.Fprintf(out, "  • Size: %g\n", summary.Size)
	fmt.Fprintf(out, "  • Components: %d group(s), %d variant(s)\n", len(summary.Components), variants)
	fmt.Fprintf(out, "  • Colors: %d of %d group(s) emitted\n", emitted, len(summary.Colors))
	if len(summary.AdditionalOptions) > 0 {
		fmt.Fprintf(out, "  • Additional Options: %d\n", len(summary.AdditionalOptions))
	}

	if showReport || reportFile != "" {
		markdown := formatter.ToMarkdown(summary, result.Title)

		if reportFile != "" {
			if err := os.WriteFile(reportFile, []byte(markdown), 0644); err != nil {
				red.Fprintf(out, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		if showReport {
			rendered, err := formatter.Render(markdown)
			if err != nil {
				rendered = markdown
			}
			fmt.Fprintln(out, rendered)
		}
	}

	if outputFile == "-" {
		fmt.Println(result.Definition)
		return
	}

	// Write definition to file.
	green.Fprintf(out, "\n💾 Writing to %s... ", outputFile)
	if err := os.WriteFile(outputFile, []byte(result.Definition+"\n"), 0644); err != nil {
		red.Fprintf(out, "✗\n")
		red.Fprintf(out, "Error: %v\n", err)
		os.Exit(1)
	}
	green.Fprintln(out, "✓")

	green.Fprintf(out, "\n✨ Successfully built definition %s\n\n", outputFile)
}

func scaffold(cmd *cobra.Command, args []string) {
	var out io.Writer = os.Stdout
	if initOutput == "-" {
		out = os.Stderr
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	cfg, err := config.New()
	if err != nil {
		red.Fprintf(out, "Error: %v\n", err)
		os.Exit(1)
	}
	if accessToken == "" {
		accessToken = cfg.FigmaToken
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := dicebearexporter.Scaffold(ctx, dicebearexporter.ScaffoldOptions{
		FileURL:         figmaURL,
		AccessToken:     accessToken,
		DicebearVersion: initVersion,
		Precision:       initPrecision,
		Logger:          &cliLogger{out: out},
	})
	if err != nil {
		red.Fprintf(out, "Error: %v\n", err)
		os.Exit(1)
	}

	if initOutput == "-" {
		if err := export.Write(os.Stdout, m, export.FormatYAML); err != nil {
			red.Fprintf(out, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	green.Fprintf(out, "\n💾 Writing to %s... ", initOutput)
	if err := writeManifest(initOutput, m); err != nil {
		red.Fprintf(out, "✗\n")
		red.Fprintf(out, "Error: %v\n", err)
		os.Exit(1)
	}
	green.Fprintln(out, "✓")
}

func writeManifest(path string, m *export.Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Write(f, m, export.FormatFromPath(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := logging.New(cfg.Level(), cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Addr:    cfg.Addr,
		Version: version,
		Logger:  logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errc
}

// cliLogger implements dicebearexporter.Logger with colored terminal output.
type cliLogger struct {
	out     io.Writer
	verbose bool
}

func (l *cliLogger) Debugf(format string, args ...any) {
	if l.verbose {
		color.New(color.FgHiBlack).Fprintf(l.out, format+"\n", args...)
	}
}

func (l *cliLogger) Infof(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(l.out, format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(l.out, "⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Fprintf(l.out, "✗ "+format+"\n", args...)
}
