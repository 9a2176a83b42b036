package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	imgpaste "github.com/staticbackendhq/imgpaste"
	"github.com/staticbackendhq/imgpaste/config"
	"github.com/staticbackendhq/imgpaste/editor"
	"github.com/staticbackendhq/imgpaste/logger"
	"github.com/staticbackendhq/imgpaste/paste"
	"github.com/staticbackendhq/imgpaste/settings"
	"golang.org/x/sync/errgroup"
)

var (
	errNotHandled = errors.New("paste not handled: not an image, offline or no provider configured")
	errUnchanged  = errors.New("upload failed, document left unchanged")
)

func printNotices(w io.Writer) paste.Notifier {
	return paste.NotifierFunc(func(msg string) {
		fmt.Fprintln(w, msg)
	})
}

func setup(ctx context.Context, c config.AppConfig, notifier paste.Notifier) (*paste.Orchestrator, *logger.Logger) {
	config.Current = c
	log := logger.Get(c)
	return imgpaste.Setup(ctx, c, settings.New(c, log), notifier, log), log
}

func readImage(path string) (paste.Item, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return paste.Item{}, err
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if len(mimeType) == 0 {
		mimeType = http.DetectContentType(b)
	}

	return paste.Item{MimeType: mimeType, Name: filepath.Base(path), Data: bytes.NewReader(b)}, nil
}

func newPasteCmd(c config.AppConfig) *cobra.Command {
	var cursor int

	cmd := &cobra.Command{
		Use:   "paste <document.md> <image>",
		Short: "Upload an image and insert its reference into a markdown file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			item, err := readImage(args[1])
			if err != nil {
				return err
			}

			o, _ := setup(ctx, c, printNotices(cmd.ErrOrStderr()))
			o.Connectivity = paste.DefaultProbe()
			defer o.Close()

			return pasteFile(ctx, o, args[0], item, cursor)
		},
	}

	cmd.Flags().IntVar(&cursor, "cursor", -1, "rune offset to insert at, end of document by default")
	return cmd
}

// pasteFile pastes item into the markdown file at path, cursor < 0 meaning
// the end of the document, and rewrites the file once the upload settled.
func pasteFile(ctx context.Context, o *paste.Orchestrator, path string, item paste.Item, cursor int) error {
	doc, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if cursor < 0 {
		cursor = len([]rune(string(doc)))
	}
	buf := editor.NewBuffer(string(doc), cursor)

	if !o.HandlePaste(ctx, buf, paste.Event{Items: []paste.Item{item}}) {
		return errNotHandled
	}
	o.Wait()

	// a failed upload removes its placeholder and nothing else
	if buf.String() == string(doc) {
		return errUnchanged
	}

	return os.WriteFile(path, []byte(buf.String()), 0644)
}

func newUploadCmd(c config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <image>...",
		Short: "Upload images concurrently and print their markdown references",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			o, log := setup(ctx, c, printNotices(cmd.ErrOrStderr()))
			defer o.Close()

			refs := make([]string, len(args))

			g, gCtx := errgroup.WithContext(ctx)
			for i, path := range args {
				i, path := i, path
				g.Go(func() error {
					item, err := readImage(path)
					if err != nil {
						return err
					}

					f, err := o.Upload(gCtx, item)
					if err != nil {
						log.Error().Err(err).Str("file", path).Msg("upload failed")
						return fmt.Errorf("%s: %w", path, err)
					}

					refs[i] = f.Markdown
					return nil
				})
			}

			if err := g.Wait(); err != nil {
				return err
			}

			for _, ref := range refs {
				fmt.Fprintln(cmd.OutOrStdout(), ref)
			}
			return nil
		},
	}
}
