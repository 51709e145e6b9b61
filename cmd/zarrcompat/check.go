package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	capmanifest "github.com/BioImageTools/capability-manifest"
	"github.com/BioImageTools/capability-manifest/compat"
	"github.com/BioImageTools/capability-manifest/viewertoken"
	"github.com/BioImageTools/capability-manifest/zarr"
)

var (
	checkDetails bool
	checkURL     string
	checkViewer  string
)

var checkCmd = &cobra.Command{
	Use:   "check [dataset-metadata.json]",
	Short: "List viewers that can open a dataset",
	Long: `Evaluate every configured viewer capability manifest against the dataset's
root attributes document and list the viewers that can open it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read dataset metadata: %w", err)
		}
		desc, err := zarr.ParseDescriptor(data)
		if err != nil {
			return err
		}

		manifests, err := loadManifests(cmd.Context())
		if err != nil {
			return err
		}
		if checkViewer != "" {
			manifests, err = filterByToken(manifests, checkViewer)
			if err != nil {
				return err
			}
		}

		if !checkDetails {
			names := compat.CompatibleNames(manifests, desc)
			if len(names) == 0 {
				fmt.Println("No compatible viewers found.")
				return nil
			}
			fmt.Println(strings.Join(names, "\n"))
			return nil
		}

		selections := compat.CompatibleViewers(manifests, desc)
		if len(selections) == 0 {
			fmt.Println("No compatible viewers found.")
			printIncompatible(manifests, desc)
			return nil
		}
		for _, s := range selections {
			fmt.Printf("%s: compatible\n", s.Name)
			for _, w := range s.Result.Warnings {
				fmt.Printf("  warning (%s): %s\n", w.Capability, w.Message)
			}
			if checkURL != "" {
				if m := manifestByName(manifests, s.Name); m != nil {
					if launch := m.ResolveLaunchURL(checkURL); launch != "" {
						fmt.Printf("  open: %s\n", launch)
					}
				}
			}
		}
		return nil
	},
}

// printIncompatible explains why each viewer was rejected.
func printIncompatible(manifests []capmanifest.Manifest, desc *zarr.Descriptor) {
	for i := range manifests {
		r := compat.Evaluate(&manifests[i], desc)
		if r.Compatible {
			continue
		}
		fmt.Printf("%s: incompatible\n", manifests[i].Name)
		for _, e := range r.Errors {
			fmt.Printf("  error (%s): %s\n", e.Capability, e.Message)
		}
	}
}

func filterByToken(manifests []capmanifest.Manifest, ref string) ([]capmanifest.Manifest, error) {
	tok, err := viewertoken.Parse(ref)
	if err != nil {
		return nil, err
	}
	out := make([]capmanifest.Manifest, 0, 1)
	for _, m := range manifests {
		if tok.Matches(m.Name, m.Version) {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no configured manifest matches %q", tok)
	}
	return out, nil
}

func manifestByName(manifests []capmanifest.Manifest, name string) *capmanifest.Manifest {
	for i := range manifests {
		if manifests[i].Name == name {
			return &manifests[i]
		}
	}
	return nil
}

func init() {
	checkCmd.Flags().BoolVar(&checkDetails, "details", false, "show warnings and launch links")
	checkCmd.Flags().StringVar(&checkURL, "url", "", "dataset URL to substitute into launch templates")
	checkCmd.Flags().StringVar(&checkViewer, "viewer", "", "only check one viewer (name or name@version)")
	rootCmd.AddCommand(checkCmd)
}
