package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rescp17/previewsender/pkg/chat"
	"github.com/rescp17/previewsender/pkg/discovery"
)

func newInboxCmd() *cobra.Command {
	var (
		port int
		dir  string
		name string
	)
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Run a local chat peer that prints what it receives",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if name == "" {
				name = "inbox-" + uuid.New().String()[:8]
			}
			return runInbox(ctx, cmd.OutOrStdout(), port, dir, name)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to store received files in")
	cmd.Flags().StringVar(&name, "name", "", "mDNS instance name")
	return cmd
}

func runInbox(ctx context.Context, out io.Writer, port int, dir, name string) error {
	inbox := chat.NewInbox(dir)
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", port, err)
	}
	srv := &http.Server{Handler: inbox.Handler(), ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("inbox server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		adapter := &discovery.MDNSAdapter{}
		err := adapter.Announce(ctx, discovery.ServiceInfo{
			Name:   name,
			Type:   discovery.DefaultServiceType,
			Domain: discovery.DefaultDomain,
			Port:   port,
		})
		if err != nil {
			slog.Warn("mDNS announcement stopped", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case msg := <-inbox.Notifications():
				printReceived(out, msg)
			}
		}
	})

	fmt.Fprintf(out, "Inbox %q listening on %s\n", name, ln.Addr())
	return g.Wait()
}

func printReceived(out io.Writer, msg chat.Received) {
	switch {
	case msg.Text != nil:
		fmt.Fprintf(out, "[%s] %s: %s\n", msg.Received.Format(time.TimeOnly), msg.From, msg.Text.Text)
	case msg.Media != nil:
		kind := "media"
		if msg.Media.Grouped {
			kind = "album"
		}
		fmt.Fprintf(out, "[%s] %s: %s of %d item(s)", msg.Received.Format(time.TimeOnly), msg.From, kind, len(msg.Media.Items))
		if msg.Media.Caption != "" {
			fmt.Fprintf(out, " %q", msg.Media.Caption)
		}
		fmt.Fprintln(out)
		for i, it := range msg.Media.Items {
			line := fmt.Sprintf("  - %s (%s, %d bytes)", it.Name, it.Kind, it.Size)
			if i < len(msg.Files) && msg.Files[i] != "" {
				line += " -> " + msg.Files[i]
			}
			fmt.Fprintln(out, line)
		}
	}
}
