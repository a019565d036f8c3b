package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/target/profilegate/internal/adapters/profileapi"
	"github.com/target/profilegate/internal/bootstrap"
	"github.com/target/profilegate/internal/domain/profile"
	apperrors "github.com/target/profilegate/internal/errors"
	"github.com/target/profilegate/internal/multipart"
	"github.com/target/profilegate/internal/service"
)

type submitFlags struct {
	file     string
	sets     []string
	attaches []string
	require  []string
}

func newSubmitCmd(c *cli) *cobra.Command {
	var f submitFlags
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Edit and submit the profile form",
		Long: `Start from the last saved profile, apply edits from a YAML file and
--set flags, attach local files and submit the result. A successful save that
satisfies the profile requirements unlocks the dashboard.`,
		Example: `  profilegate submit --file profile.yaml
  profilegate submit --set dob=1990-01-31 --attach pan_card=./pan.jpg --require pan_card`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return c.withApp(ctx, func(app *bootstrap.App) error {
				form, err := app.Profiles.LoadForm(ctx, nil)
				if err != nil {
					return err
				}
				if err := applySubmitFlags(cmd.ErrOrStderr(), form, f); err != nil {
					return err
				}

				res, err := app.Profiles.Submit(ctx, form)
				if err != nil {
					printRejection(cmd.ErrOrStderr(), err)
					return err
				}
				if err := printWarnings(cmd.ErrOrStderr(), res.Warnings); err != nil {
					return err
				}
				return c.printStatus(ctx, cmd, app, app.Sessions.State())
			})
		},
	}
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "YAML file with profile fields")
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "Set a field, as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&f.attaches, "attach", nil, "Attach a file, as name=path (repeatable)")
	cmd.Flags().StringSliceVar(&f.require, "require", nil, "Attachment names whose read failure aborts the submission")
	return cmd
}

// applySubmitFlags routes every edit through the form so bank edits revoke
// verification exactly as interactive edits do.
func applySubmitFlags(w io.Writer, form *service.ProfileForm, f submitFlags) error {
	var edits []multipart.Field
	if f.file != "" {
		fromFile, err := readProfileFile(f.file, form.Record().Kind)
		if err != nil {
			return err
		}
		edits = append(edits, fromFile...)
	}
	for _, kv := range f.sets {
		name, value, err := splitPair(kv, "--set")
		if err != nil {
			return err
		}
		edits = append(edits, multipart.Field{Name: name, Value: value})
	}

	revoked := false
	for _, e := range edits {
		r, err := form.SetField(e.Name, e.Value)
		if err != nil {
			return err
		}
		revoked = revoked || r
	}
	if revoked {
		if _, err := fmt.Fprintln(w, warnStyle.Render("bank details changed: verification revoked")); err != nil {
			return err
		}
	}

	for _, kv := range f.attaches {
		name, path, err := splitPair(kv, "--attach")
		if err != nil {
			return err
		}
		if err := form.Attach(multipart.Attachment{Name: name, Source: path}); err != nil {
			return err
		}
	}
	form.Require(f.require...)
	return nil
}

func readProfileFile(path string, kind profile.Kind) ([]multipart.Field, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}
	rec, err := profile.DecodeYAML(kind, data)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf("profile file %s: %v", path, err))
	}
	var fields []multipart.Field
	for _, p := range service.ProfileFields(rec) {
		if fld, ok := p.(multipart.Field); ok {
			fields = append(fields, fld)
		}
	}
	return fields, nil
}

func splitPair(kv, flag string) (string, string, error) {
	name, value, ok := strings.Cut(kv, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", apperrors.Validation(fmt.Sprintf("%s expects name=value, got %q", flag, kv))
	}
	return name, value, nil
}

func printRejection(w io.Writer, err error) {
	var rej *profileapi.ServerRejection
	if !errors.As(err, &rej) {
		return
	}
	_, _ = fmt.Fprintln(w, warnStyle.Render(rej.Error()))
	names := make([]string, 0, len(rej.Fields))
	for name := range rej.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintln(w, "  "+labelStyle.Render(name)+rej.Fields[name])
	}
}

func newDocumentsCmd(c *cli) *cobra.Command {
	var types []string
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "List documents already uploaded for this profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return c.withApp(ctx, func(app *bootstrap.App) error {
				want := types
				if len(want) == 0 {
					want = app.DocumentTypes()
				}
				docs, err := app.Profiles.Documents(ctx, want)
				if err != nil {
					return err
				}
				return printDocuments(cmd.OutOrStdout(), docs)
			})
		},
	}
	cmd.Flags().StringSliceVar(&types, "type", nil, "Document types to fetch (defaults to the role's configured list)")
	return cmd
}

func newConfirmBankCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm-bank",
		Short: "Ask the service to verify the saved bank details",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return c.withApp(ctx, func(app *bootstrap.App) error {
				form, err := app.Profiles.LoadForm(ctx, nil)
				if err != nil {
					return err
				}
				if err := app.Profiles.ConfirmBank(ctx, form); err != nil {
					return err
				}
				return row(cmd.OutOrStdout(), "Bank", string(form.BankState()))
			})
		},
	}
}
