package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// guessMime maps the interesting stream extensions; everything else is
// treated as mp4 which most renderers accept for http-get pushes
func guessMime(mediaURL string) string {
	lower := strings.ToLower(mediaURL)

	switch {
	case strings.Contains(lower, ".m3u8"):
		return "application/vnd.apple.mpegurl"
	case strings.Contains(lower, ".mpd"):
		return "application/dash+xml"
	case strings.Contains(lower, ".webm"):
		return "video/webm"
	case strings.Contains(lower, ".mkv"):
		return "video/x-matroska"
	case strings.Contains(lower, ".mp3"):
		return "audio/mpeg"
	default:
		return "video/mp4"
	}
}

// creates and returns the "play" command
func play(props *CommandProps) *cobra.Command {
	var mime string

	cmd := &cobra.Command{
		Use:   "play <renderer> <url>",
		Short: "Push a media url to a renderer (by USN or IP)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			mediaURL := args[1]

			if mime == "" {
				mime = guessMime(mediaURL)
			}

			report, err := props.Core.Play(cmd.Context(), target, mediaURL, mime)

			if err != nil {
				return err
			}

			fmt.Println(report.String())

			if !report.Success {
				return fmt.Errorf("renderer refused every strategy")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&mime, "mime", "", "mime type for the media url (guessed from the url when omitted)")

	return cmd
}
