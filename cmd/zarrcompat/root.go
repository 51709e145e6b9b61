package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	capmanifest "github.com/BioImageTools/capability-manifest"
	"github.com/BioImageTools/capability-manifest/registry"
)

var (
	cfgFile string
	verbose bool
	logger  *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "zarrcompat",
	Short: "Check which OME-Zarr viewers can open a dataset",
	Long: `zarrcompat compares viewer capability manifests against a dataset's
structural metadata and reports which viewers can open it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "zarrcompat.yaml", "registry config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

// loadManifests loads every configured manifest, reporting unavailable
// locations on stderr without failing the command.
func loadManifests(ctx context.Context) ([]capmanifest.Manifest, error) {
	cfg, err := registry.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if len(cfg.Manifests) == 0 {
		return nil, fmt.Errorf("no manifests configured in %s", cfgFile)
	}

	client := registry.NewClient(cfg, registry.WithLogger(logger))
	manifests, failures := client.Load(ctx)
	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "warning: skipping manifest %s: %v\n", f.Location, f.Err)
	}
	if len(manifests) == 0 {
		return nil, fmt.Errorf("none of the %d configured manifests could be loaded", len(cfg.Manifests))
	}
	return manifests, nil
}
