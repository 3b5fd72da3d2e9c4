package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rescp17/previewsender/internal/config"
	"github.com/rescp17/previewsender/pkg/chat"
	"github.com/rescp17/previewsender/pkg/composer"
	"github.com/rescp17/previewsender/pkg/discovery"
	"github.com/rescp17/previewsender/pkg/media"
	"github.com/rescp17/previewsender/pkg/picker"
	"github.com/rescp17/previewsender/pkg/preview"
	"github.com/rescp17/previewsender/pkg/selection"
	"github.com/rescp17/previewsender/pkg/ui"
)

type sendOptions struct {
	asFile     bool
	peer       string
	configPath string
	caption    string
}

func newRootCmd() *cobra.Command {
	opts := &sendOptions{}
	cmd := &cobra.Command{
		Use:   "previewsender [paths...]",
		Short: "Preview files as media, files or an album and send them to a chat peer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, opts, args)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.Path(), "Config file")
	cmd.Flags().BoolVar(&opts.asFile, "as-file", false, "Open the preview in file mode")
	cmd.Flags().StringVar(&opts.peer, "peer", "", "Chat peer URL, e.g. http://192.168.1.7:8080")
	cmd.Flags().StringVar(&opts.caption, "caption", "", "Initial caption")

	cmd.AddCommand(newClassifyCmd(opts))
	cmd.AddCommand(newInboxCmd())
	return cmd
}

func runSend(cmd *cobra.Command, opts *sendOptions, paths []string) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		paths, err = pickFiles()
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return nil
		}
	}

	items, err := selection.LoadAll(paths)
	if err != nil {
		return err
	}
	session, err := preview.NewSession(items, preview.Options{
		AsMedia:      !opts.asFile,
		Preferences:  config.NewStore(cfg, opts.configPath),
		CaptionLimit: cfg.CaptionLimit,
	})
	if err != nil {
		return err
	}
	if opts.caption != "" {
		session.SetCaption(opts.caption)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	peerURL := resolvePeer(ctx, opts.peer, cfg)
	client := chat.NewClient(uuid.New().String(), peerURL)
	generator := &media.Generator{ThumbnailSize: cfg.ThumbnailSize, Workers: cfg.Workers}
	app := composer.NewApp(session, generator, client, composer.Options{
		DeriveTimeout: cfg.DeriveTimeout,
		SendTimeout:   cfg.SendTimeout,
		VerifyFiles:   true,
	})

	appErr := make(chan error, 1)
	go func() { appErr <- app.Run(ctx) }()

	final, err := tea.NewProgram(ui.New(app)).Run()
	cancel()
	if runErr := <-appErr; runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("App stopped with error", "error", runErr)
	}
	if err != nil {
		return fmt.Errorf("dialog failed: %w", err)
	}

	if n := ui.Sent(final); n > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Sent %d item(s) to %s\n", n, client.PeerURL())
	}
	return nil
}

func pickFiles() ([]string, error) {
	final, err := tea.NewProgram(picker.New()).Run()
	if err != nil {
		return nil, fmt.Errorf("file picker failed: %w", err)
	}
	return final.(picker.Model).Selected(), nil
}

// resolvePeer prefers the flag, then the config file, then the first peer
// found over mDNS. An empty result makes every send fail with chat.ErrNoPeer.
func resolvePeer(ctx context.Context, flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	if cfg.PeerURL != "" {
		return cfg.PeerURL
	}
	peer, err := discovery.FirstPeer(ctx, &discovery.MDNSAdapter{}, discovery.DefaultServiceType, cfg.DiscoveryTimeout)
	if err != nil {
		slog.Warn("No chat peer discovered", "error", err)
		return ""
	}
	slog.Info("Discovered chat peer", "name", peer.Name, "url", peer.URL())
	return peer.URL()
}
