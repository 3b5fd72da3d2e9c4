package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rescp17/previewsender/internal/config"
	"github.com/rescp17/previewsender/internal/util"
	"github.com/rescp17/previewsender/pkg/preview"
	"github.com/rescp17/previewsender/pkg/selection"
)

func newClassifyCmd(root *sendOptions) *cobra.Command {
	var asFile bool
	cmd := &cobra.Command{
		Use:   "classify paths...",
		Short: "Report how a selection would be previewed without opening the dialog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			items, err := selection.LoadAll(args)
			if err != nil {
				return err
			}
			session, err := preview.NewSession(items, preview.Options{
				AsMedia:      !asFile,
				Preferences:  &preview.MemoryPreferences{Collage: cfg.PreferCollage},
				CaptionLimit: cfg.CaptionLimit,
			})
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), session, items)
		},
	}
	cmd.Flags().BoolVar(&asFile, "as-file", false, "Classify as plain files")
	return cmd
}

func writeReport(w io.Writer, session *preview.Session, items []selection.Item) error {
	res := session.Classification()
	snap := session.Snapshot()

	if _, err := fmt.Fprintf(w, "%s\nmode: %s\ncategory: %s\ncollage: %t\n\n",
		snap.Title, snap.Mode, res.Category, res.Collage); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := fmt.Fprintf(w, "%s %s %s\n",
			util.PadRight(it.Name, 32), util.PadRight(it.MimeType, 24), util.FormatSize(it.Size)); err != nil {
			return err
		}
	}
	return nil
}
