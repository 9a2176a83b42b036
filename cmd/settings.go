package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/staticbackendhq/imgpaste/config"
	"github.com/staticbackendhq/imgpaste/logger"
	"github.com/staticbackendhq/imgpaste/model"
	"github.com/staticbackendhq/imgpaste/settings"
)

func newSettingsCmd(c config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the upload settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the stored settings as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				config.Current = c
				store := settings.New(c, logger.Get(c))

				s, err := store.Load(cmd.Context())
				if err != nil {
					return err
				}

				b, err := json.MarshalIndent(s, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			},
		},
		&cobra.Command{
			Use:   "set key=value...",
			Short: "Update one or more settings",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				config.Current = c
				store := settings.New(c, logger.Get(c))

				s, err := store.Load(cmd.Context())
				if err != nil {
					return err
				}

				for _, arg := range args {
					if err := setField(&s, arg); err != nil {
						return err
					}
				}

				return store.Save(cmd.Context(), s)
			},
		},
	)

	return cmd
}

// setField applies a single key=value pair, keys being the JSON field names.
func setField(s *model.Settings, arg string) error {
	key, value, ok := strings.Cut(arg, "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q", arg)
	}

	var err error
	switch key {
	case "provider":
		s.Provider = value
	case "s3BucketUri":
		s.S3BucketURI = value
	case "gcsBucket":
		s.GCSBucket = value
	case "gcsToken":
		s.GCSToken = value
	case "cdnUrl":
		s.CDNURL = value
	case "autoAuth":
		s.AutoAuth, err = strconv.ParseBool(value)
	case "fixedSize":
		s.FixedSize, err = strconv.Atoi(value)
	case "maxWidth":
		s.MaxWidth, err = strconv.Atoi(value)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}
