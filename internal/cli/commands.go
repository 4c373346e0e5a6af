package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/iwvelando/anticrisis-view/internal/backend"
	"github.com/iwvelando/anticrisis-view/internal/metrics"
	"github.com/iwvelando/anticrisis-view/internal/server"
	"github.com/iwvelando/anticrisis-view/internal/snapshot"
	"github.com/iwvelando/anticrisis-view/pkg/constants"
	"github.com/iwvelando/anticrisis-view/pkg/export"
	"github.com/iwvelando/anticrisis-view/pkg/output"
	"github.com/iwvelando/anticrisis-view/pkg/sink"
	"github.com/iwvelando/anticrisis-view/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type snapshotFlags struct {
	org      int64
	period   int64
	format   string
	out      string
	s3Bucket string
	finModel bool
	locale   string
}

func (cli *CLI) newSnapshotCmd() *cobra.Command {
	var flags snapshotFlags

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Assemble one period snapshot and print or export it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("fin-model") {
				cli.conf.Export.IncludeFinModel = flags.finModel
				if flags.finModel {
					cli.conf.Backend.FinModel = true
				}
			}
			if flags.locale != "" {
				cli.conf.Locale = flags.locale
			}
			return cli.runSnapshot(cmd.Context(), flags)
		},
	}

	cmd.Flags().Int64Var(&flags.org, "org", 0, "organization id")
	cmd.Flags().Int64Var(&flags.period, "period", 0, "period id")
	cmd.Flags().StringVar(&flags.format, "format", "", "output format: table, json, csv (default from config)")
	cmd.Flags().StringVar(&flags.out, "out", "", "directory to write the export into (default from config, stdout when unset)")
	cmd.Flags().StringVar(&flags.s3Bucket, "s3-bucket", "", "upload the export to this S3 bucket")
	cmd.Flags().BoolVar(&flags.finModel, "fin-model", false, "include the financial model in the CSV export")
	cmd.Flags().StringVar(&flags.locale, "locale", "", "label locale override (en, ru)")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("period")

	return cmd
}

func (cli *CLI) runSnapshot(ctx context.Context, flags snapshotFlags) error {
	if err := validation.ValidateID("organization id", flags.org); err != nil {
		return err
	}
	if err := validation.ValidateID("period id", flags.period); err != nil {
		return err
	}

	outputFormat := flags.format
	if outputFormat == "" {
		outputFormat = cli.conf.Output.Format
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	resolver, err := cli.conf.Resolver()
	if err != nil {
		return err
	}
	client, err := cli.client()
	if err != nil {
		return err
	}
	assembler, err := cli.assembler(client, nil)
	if err != nil {
		return err
	}

	s, err := assembler.Assemble(ctx, flags.org, flags.period)
	if err != nil {
		cli.logger.Error("failed to assemble snapshot",
			zap.String("op", "cli.runSnapshot"),
			zap.Int64("org_id", flags.org),
			zap.Int64("period_id", flags.period),
			zap.Error(err),
		)
		return err
	}

	var (
		data        []byte
		name        string
		contentType string
	)
	switch outputFormat {
	case constants.OutputFormatTable:
		return output.TableFormat(cli.out, s, resolver)
	case constants.OutputFormatJSON:
		data, err = export.JSON(s)
		if err != nil {
			return err
		}
		name, contentType = export.JSONFilename(s), constants.ContentTypeJSON
	case constants.OutputFormatCSV:
		data = export.CSV(s, resolver, export.CSVOptions{IncludeFinModel: cli.conf.Export.IncludeFinModel})
		name, contentType = export.CSVFilename(s), constants.ContentTypeCSV
	}

	dest, err := cli.exportSink(ctx, flags)
	if err != nil {
		return err
	}
	location, err := dest.Put(ctx, name, contentType, data)
	if err != nil {
		return err
	}
	if _, ok := dest.(*sink.WriterSink); !ok {
		cli.logger.Info("export written",
			zap.String("op", "cli.runSnapshot"),
			zap.String("format", outputFormat),
			zap.String("location", location),
		)
		_, err = fmt.Fprintln(cli.out, location)
	}
	return err
}

// exportSink picks the export destination: S3 when a bucket is set, a directory
// when one is set, stdout otherwise.
func (cli *CLI) exportSink(ctx context.Context, flags snapshotFlags) (sink.Sink, error) {
	bucket := flags.s3Bucket
	if bucket == "" {
		bucket = cli.conf.Export.S3Bucket
	}
	if bucket != "" {
		client, err := sink.LoadS3Client(ctx, cli.conf.Export.AWSProfile)
		if err != nil {
			return nil, err
		}
		s3Sink, err := sink.NewS3Sink(client, bucket, cli.conf.Export.S3Prefix)
		if err != nil {
			return nil, err
		}
		return s3Sink, nil
	}

	dir := flags.out
	if dir == "" {
		dir = cli.conf.Export.Dir
	}
	if dir != "" {
		return sink.NewFileSink(dir), nil
	}
	return &sink.WriterSink{W: cli.out}, nil
}

func (cli *CLI) newPeriodsCmd() *cobra.Command {
	var org int64

	cmd := &cobra.Command{
		Use:   "periods",
		Short: "List the reporting periods of an organization",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validation.ValidateID("organization id", org); err != nil {
				return err
			}
			client, err := cli.client()
			if err != nil {
				return err
			}
			periods, err := client.Periods(cmd.Context(), org)
			if err != nil {
				return err
			}
			return output.PeriodsFormat(cli.out, periods)
		},
	}
	cmd.Flags().Int64Var(&org, "org", 0, "organization id")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

func (cli *CLI) newOrgsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orgs",
		Short: "List the organizations visible to the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := cli.client()
			if err != nil {
				return err
			}
			orgs, err := client.Organizations(cmd.Context())
			if err != nil {
				return err
			}
			return output.OrganizationsFormat(cli.out, orgs)
		},
	}
}

func (cli *CLI) newCrisisTypesCmd() *cobra.Command {
	var org int64

	cmd := &cobra.Command{
		Use:   "crisis-types",
		Short: "List the crisis type catalogue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validation.ValidateID("organization id", org); err != nil {
				return err
			}
			client, err := cli.client()
			if err != nil {
				return err
			}
			return output.CrisisTypesFormat(cli.out, client.CrisisTypes(cmd.Context(), org))
		},
	}
	cmd.Flags().Int64Var(&org, "org", 0, "organization id")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

func (cli *CLI) newPlansCmd() *cobra.Command {
	var org, planID int64

	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List the remediation plans of an organization",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validation.ValidateID("organization id", org); err != nil {
				return err
			}
			client, err := cli.client()
			if err != nil {
				return err
			}

			var plans []backend.Plan
			if cmd.Flags().Changed("plan") {
				if err := validation.ValidateID("plan id", planID); err != nil {
					return err
				}
				plan, err := client.Plan(cmd.Context(), org, planID)
				if err != nil {
					return err
				}
				plans = []backend.Plan{plan}
			} else {
				plans, err = client.Plans(cmd.Context(), org)
				if err != nil {
					return err
				}
			}
			return output.PlansFormat(cli.out, plans, client.CrisisTypes(cmd.Context(), org))
		},
	}
	cmd.Flags().Int64Var(&org, "org", 0, "organization id")
	cmd.Flags().Int64Var(&planID, "plan", 0, "show only this plan")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

func (cli *CLI) newLoginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the backend access token for later commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("expected a non-empty --token")
			}
			// An explicitly configured token must not mask the one being stored.
			cli.conf.Backend.Token = ""
			store, err := cli.openSession()
			if err != nil {
				return err
			}
			return store.Set(token)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "access token issued by the backend")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func (cli *CLI) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := cli.openSession()
			if err != nil {
				return err
			}
			store.Clear()
			return nil
		},
	}
}

func (cli *CLI) newServeCmd() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve snapshots, exports and metrics over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if address != "" {
				cli.conf.Server.Address = address
			}
			handler, err := cli.serverHandler()
			if err != nil {
				return err
			}
			return server.Run(cmd.Context(), server.ConfigFrom(cli.conf.Server), nil, handler, cli.logger)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "listen address (default from config)")
	return cmd
}

func (cli *CLI) serverHandler() (http.Handler, error) {
	resolver, err := cli.conf.Resolver()
	if err != nil {
		return nil, err
	}
	client, err := cli.client()
	if err != nil {
		return nil, err
	}
	rec := metrics.NewRecorder()
	assembler, err := cli.assembler(client, rec)
	if err != nil {
		return nil, err
	}

	return server.NewHandler(cli.logger, server.Dependencies{
		Builder:   assembler,
		Selection: snapshot.NewSelection(assembler),
		Resolver:  resolver,
		Overrides: cli.conf.Labels,
		Metrics:   rec,
		CSV:       export.CSVOptions{IncludeFinModel: cli.conf.Export.IncludeFinModel},
	}, cli.version), nil
}
