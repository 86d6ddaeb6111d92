package commands

import (
	"github.com/spf13/cobra"
)

// creates and returns the "devices" command
func devices(props *CommandProps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List renderers found by previous scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := props.Core.Devices()

			if err != nil {
				return err
			}

			printDevices(found)
			return nil
		},
	}

	return cmd
}
