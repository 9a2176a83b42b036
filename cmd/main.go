package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	imgpaste "github.com/staticbackendhq/imgpaste"
	"github.com/staticbackendhq/imgpaste/config"
)

func main() {
	c := config.LoadConfig()

	if len(c.Port) == 0 {
		c.Port = "8099"
	}

	root := &cobra.Command{
		Use:           "imgpaste",
		Short:         "Upload pasted images to cloud storage and insert markdown references",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP host",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				imgpaste.Start(c)
			},
		},
		newPasteCmd(c),
		newUploadCmd(c),
		newSettingsCmd(c),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
