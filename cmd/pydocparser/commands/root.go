package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"pydocparser/lib/httpcache"
	"pydocparser/lib/outputs"
	"pydocparser/lib/scrapers/pydocs"
	"pydocparser/lib/session"
	"pydocparser/lib/telemetry"
	"pydocparser/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var (
	outputFlag string
	clearCache bool
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "pydocparser <mode>",
	Short: "pydocparser collects release notes, versions, PEP statuses and the documentation archive from python.org.",
	Long: fmt.Sprintf(
		"pydocparser collects release notes, versions, PEP statuses and the documentation archive from python.org.\n\nModes: %s",
		strings.Join(pydocs.ModeNames(), ", "),
	),
	ValidArgs:     pydocs.ModeNames(),
	Args:          cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&outputFlag, "output", "o", "", "output format: pretty, page or file (prints plain lines when omitted)")
	flags.BoolVarP(&clearCache, "clear-cache", "c", false, "clear the http cache before running")
	flags.StringVar(&configPath, "config", "pydocparser.json5", "path to the json5 config file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log debug messages")
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		serviceutil.Fatal("pydocparser failed", err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	telemetry.InitSlog(os.Stderr, verbose)

	slog.Info("parser started")
	slog.Info(
		"command line arguments",
		"mode", args[0],
		"output", outputFlag,
		"clear_cache", clearCache,
		"config", configPath,
	)

	mode, ok := pydocs.LookupMode(args[0])
	if !ok {
		return fmt.Errorf("unknown mode %q", args[0])
	}
	format, err := outputs.ParseFormat(outputFlag)
	if err != nil {
		return err
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	tel, err := telemetry.Setup(ctx, "pydocparser", config.Telemetry)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := tel.Shutdown(shutdownCtx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	}()

	store, err := openCache(ctx, config)
	if err != nil {
		return err
	}
	defer store.Close()

	sess := session.New(store, config.Http)
	if clearCache {
		err = sess.ClearCache(ctx)
		if err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		slog.Info("cache cleared")
	}

	bars := newProgressBars(os.Stderr)
	parser := pydocs.NewParser(sess, pydocs.Options{
		MainDocUrl:   config.MainDocUrl,
		PepUrl:       config.PepUrl,
		DownloadsDir: config.DownloadsDir,
		Progress:     bars,
	})
	rows, err := mode.Run(parser, ctx)
	bars.Stop()
	if err != nil {
		return fmt.Errorf("%s: %w", mode.Name, err)
	}

	_, err = outputs.Write(rows, outputs.Options{
		Format:     format,
		Mode:       mode.Name,
		HasHeader:  mode.HasHeader,
		ResultsDir: config.ResultsDir,
		PageSize:   config.Output.PageSize,
		Stdout:     cmd.OutOrStdout(),
	})
	if err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	slog.Info("parser finished")
	return nil
}

func openCache(ctx context.Context, config Config) (*httpcache.Store, error) {
	db, err := config.Cache.OpenDB(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	store, err := httpcache.NewStore(ctx, db, config.Cache.TTL())
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
