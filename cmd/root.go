package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AnyUserName/pixhash/internal/config"
	"github.com/AnyUserName/pixhash/internal/logging"
	"github.com/AnyUserName/pixhash/internal/raster"
	"github.com/AnyUserName/pixhash/internal/service"
	"github.com/AnyUserName/pixhash/internal/store/fsstore"
	"github.com/AnyUserName/pixhash/internal/store/s3store"
)

var (
	version    = "0.1.0"
	verbose    bool
	configPath string
	logFormat  string

	cfg *config.Config
	log *logrus.Logger
)

// errReported marks a failure whose details were already written to stdout.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "pixhash",
	Short: "Perceptual image hashing",
	Long: `pixhash computes compact perceptual fingerprints of images: visually
similar images produce hashes with a small Hamming distance.

Images are fetched from a local directory or an S3 bucket, decoded (PNG and
JPEG by default), reduced to a small luminance grid and hashed with one of
Mean, Gradient, VertGradient, DoubleGradient or Blockhash.`,
	Version:           version,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/pixhash/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (default from config)")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"pixhash %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// setup loads the configuration and builds the logger for every command.
func setup(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	opts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if verbose {
		opts.Level = "debug"
	}
	if logFormat != "" {
		opts.Format = logFormat
	}
	log, err = logging.New(opts)
	if err != nil {
		return err
	}
	log.WithField("store", cfg.Store.Backend).Debug("configuration loaded")
	return nil
}

// newRegistry builds the decoder set from [decode].
func newRegistry() (*raster.Registry, error) {
	return raster.NewRegistry(cfg.Decode.Formats, raster.WithMaxPixels(cfg.Decode.MaxPixels))
}

// newFetcher builds the configured store.
func newFetcher(ctx context.Context) (service.Fetcher, error) {
	switch cfg.Store.Backend {
	case "s3":
		return s3store.NewDefault(ctx, cfg.Store.Bucket, cfg.Store.Region)
	default:
		return fsstore.New(cfg.Store.Root)
	}
}

// newService wires store, decoder and defaults into a Service.
func newService(ctx context.Context, defaults service.Defaults) (*service.Service, error) {
	fetcher, err := newFetcher(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return buildService(fetcher, defaults)
}

func buildService(fetcher service.Fetcher, defaults service.Defaults) (*service.Service, error) {
	reg, err := newRegistry()
	if err != nil {
		return nil, err
	}
	log.Debugf("%s", reg.String())
	return service.New(fetcher, reg,
		service.WithDefaults(defaults),
		service.WithLogger(log),
	), nil
}

// requestDefaults resolves a preset name (or the [hash] section when empty).
func requestDefaults(preset string) (service.Defaults, error) {
	if preset != "" {
		return cfg.Preset(preset)
	}
	return cfg.HashDefaults()
}
