package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var viewersCmd = &cobra.Command{
	Use:   "viewers",
	Short: "List configured viewer declarations",
	Long:  `Fetch every configured capability manifest and display each viewer's name, version, and declared capabilities.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manifests, err := loadManifests(cmd.Context())
		if err != nil {
			return err
		}

		for _, m := range manifests {
			fmt.Printf("%s %s\n", m.Name, m.Version)
			if m.Repository != "" {
				fmt.Printf("  repository: %s\n", m.Repository)
			}
			if len(m.Capabilities.OMEZarrVersions) > 0 {
				vers := make([]string, 0, len(m.Capabilities.OMEZarrVersions))
				for _, v := range m.Capabilities.OMEZarrVersions {
					vers = append(vers, fmt.Sprintf("%v", v))
				}
				fmt.Printf("  ome-zarr versions: %s\n", strings.Join(vers, ", "))
			}
			if len(m.Capabilities.CompressionCodecs) > 0 {
				fmt.Printf("  codecs: %s\n", strings.Join(m.Capabilities.CompressionCodecs, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewersCmd)
}
