package commands

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/minicast/minicast/internal/device"
	"github.com/spf13/cobra"
)

// creates and returns the "scan" command
func scan(props *CommandProps) *cobra.Command {
	var timeout int
	var ip string
	var cidr []string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Search the network for DLNA renderers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
				defer cancel()
			}

			if ip != "" {
				dev, err := props.Core.ScanIP(ctx, ip)

				if err != nil {
					return err
				}

				printDevices([]*device.Device{dev})
				return nil
			}

			var found []*device.Device
			var err error

			if len(cidr) > 0 {
				found, err = props.Core.ScanTargets(ctx, cidr)
			} else {
				found, err = props.Core.Scan(ctx)
			}

			if err != nil {
				return err
			}

			printDevices(found)
			return nil
		},
	}

	cmd.Flags().IntVarP(&timeout, "timeout", "t", 0, "cap the scan at this many seconds")
	cmd.Flags().StringVar(&ip, "ip", "", "target a single IP instead of multicast search")
	cmd.Flags().StringSliceVar(&cidr, "cidr", []string{}, "probe IPs or CIDR blocks for renderer descriptions")

	return cmd
}

func printDevices(devices []*device.Device) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)

	fmt.Fprintln(w, "NAME\tIP\tAVTRANSPORT\tUSN")

	for _, dev := range devices {
		ip := ""

		if u, err := url.Parse(dev.Location); err == nil {
			ip = u.Hostname()
		}

		avtransport := "pending"

		if dev.Playable() {
			avtransport = "ready"
		}

		fmt.Fprintf(
			w,
			"%s\t%s\t%s\t%s\n",
			dev.DisplayName(),
			ip,
			avtransport,
			dev.USN,
		)
	}

	w.Flush()
}
