package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	capmanifest "github.com/BioImageTools/capability-manifest"
	"github.com/BioImageTools/capability-manifest/registry"
)

var validateStrict bool

var validateCmd = &cobra.Command{
	Use:   "validate [manifest.yaml]",
	Short: "Validate a capability manifest document",
	Long: `Check that a capability manifest (YAML or JSON) satisfies the structural
requirements a registry enforces before a viewer declaration is used:
a non-empty name, a non-empty version, and a capabilities object.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read manifest: %w", err)
		}

		m, err := registry.ParseManifest(data)
		if err == nil && validateStrict {
			err = m.Validate(
				capmanifest.WithRejectUnknownCapabilities(),
				capmanifest.WithRequireLaunchURL(),
			)
		}
		if err != nil {
			var verr *capmanifest.ValidationError
			if errors.As(err, &verr) {
				fmt.Printf("%s: invalid\n", args[0])
				for _, p := range verr.Problems {
					fmt.Printf("  %s\n", p)
				}
				os.Exit(1)
			}
			return err
		}

		fmt.Printf("%s: valid (%s %s)\n", args[0], m.Name, m.Version)
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "reject unknown capability keys and require a launch URL")
	rootCmd.AddCommand(validateCmd)
}
