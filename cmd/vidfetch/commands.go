package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sir_venger/vidstream/pkg/streamclient"
	"github.com/sir_venger/vidstream/pkg/streamproto"
)

type rootFlags struct {
	server string
	prefix string
	quiet  bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "vidfetch",
		Short:         "Client for the video streaming service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.server, "server", envOr("VIDSTREAM_SERVER", "http://localhost:8080"), "service base URL")
	root.PersistentFlags().StringVar(&flags.prefix, "prefix", streamproto.DefaultRoutePrefix, "video route prefix")
	root.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "disable progress output")

	root.AddCommand(newGetCmd(flags), newStatCmd(flags), newUploadCmd(flags))
	return root
}

func (f *rootFlags) client(out io.Writer) *streamclient.Client {
	opts := streamclient.Options{RoutePrefix: f.prefix}
	if !f.quiet {
		opts.Progress = out
	}
	return streamclient.New(f.server, opts)
}

func newGetCmd(flags *rootFlags) *cobra.Command {
	var (
		output string
		parts  int
	)

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Download a video using parallel range requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if output == "" {
				output = key
			}
			if parts < 1 {
				return fmt.Errorf("--parts must be positive, got %d", parts)
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}

			n, err := flags.client(cmd.ErrOrStderr()).Download(cmd.Context(), key, f, parts)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(output)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", green("saved"), output, gray(fmt.Sprintf("(%d bytes)", n)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file (default: key)")
	cmd.Flags().IntVar(&parts, "parts", 4, "number of concurrent range requests")
	return cmd
}

func newStatCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <key>",
		Short: "Show size and content type of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := flags.client(nil).Stat(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "key:           %s\n", info.Key)
			fmt.Fprintf(out, "size:          %d\n", info.Size)
			fmt.Fprintf(out, "content-type:  %s\n", info.ContentType)
			fmt.Fprintf(out, "accept-ranges: %t\n", info.AcceptRanges)
			return nil
		},
	}
}

func newUploadCmd(flags *rootFlags) *cobra.Command {
	var (
		title string
		meta  streamclient.UploadMeta
		tags  string
	)

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(title) == "" {
				return fmt.Errorf("--title is required")
			}
			if tags != "" {
				for _, t := range strings.Split(tags, ",") {
					if t = strings.TrimSpace(t); t != "" {
						meta.Tags = append(meta.Tags, t)
					}
				}
			}

			resp, err := flags.client(cmd.ErrOrStderr()).Upload(cmd.Context(), args[0], title, meta)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("uploaded"), resp.Filename)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "video title")
	cmd.Flags().StringVar(&meta.Description, "description", "", "video description")
	cmd.Flags().StringVar(&meta.Category, "category", "", "video category")
	cmd.Flags().StringVar(&tags, "tags", "", "comma separated tags")
	cmd.Flags().StringVar(&meta.Visibility, "visibility", "public", "video visibility")
	return cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
