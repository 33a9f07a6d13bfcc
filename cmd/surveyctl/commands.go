package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"dq-index/internal/config"
	"dq-index/internal/database"
	"dq-index/internal/dto"
	"dq-index/internal/export"
	"dq-index/internal/logger"
	"dq-index/internal/repository"
	"dq-index/internal/service"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

// app holds what every subcommand needs once the database is open.
type app struct {
	dbPath      string
	db          *sqlx.DB
	submissions service.SubmissionService
	exports     service.ExportService
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "surveyctl",
		Short:         "Inspect and export Data Quality Index survey submissions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			_ = logger.Sync()
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database file (defaults to db.path from config)")

	root.AddCommand(newListCmd(a), newExportCmd(a), newExportAllCmd(a))
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if !cmd.Flags().Changed("db") {
		a.dbPath = cfg.DB.Path
	}

	if _, err := os.Stat(a.dbPath); err != nil {
		return fmt.Errorf("database %s is not readable: %w", a.dbPath, err)
	}
	if err := database.RunMigrations(a.dbPath); err != nil {
		return err
	}
	db, err := database.NewSQLXSQLiteDB(a.dbPath)
	if err != nil {
		return err
	}

	repo := repository.NewSQLXSubmissionRepository(db)
	a.db = db
	a.submissions = service.NewSubmissionService(repo, repository.NewTransactionManagerAdapter(db), nil, 0)
	a.exports = service.NewExportService(repo)
	return nil
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List submissions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := a.submissions.ListSubmissions(cmd.Context())
			if err != nil {
				return err
			}
			return writeSummaries(cmd.OutOrStdout(), summaries)
		},
	}
}

func writeSummaries(w io.Writer, summaries []dto.SubmissionSummaryResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMPLOYEE\tSUBMITTED\tANSWERS")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", s.ID, s.EmpID, s.SubmissionDate.Format(time.RFC3339), s.AnswerCount)
	}
	return tw.Flush()
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export <emp_id>",
		Short: "Export one employee's submission to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			empID := args[0]
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			records, err := a.exports.ExportSubmission(cmd.Context(), empID)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			switch f {
			case export.FormatCSV:
				err = export.WriteCSV(&buf, records)
			case export.FormatXLSX:
				err = export.WriteWorkbook(&buf, []export.Sheet{{Name: export.SingleSheetName, Records: records}})
			default:
				enc := json.NewEncoder(&buf)
				enc.SetIndent("", "  ")
				err = enc.Encode(dto.NewExportRecordResponses(records))
			}
			if err != nil {
				return err
			}

			if out == "" {
				out = export.EmployeeFileName(empID, f)
			}
			return writeFile(cmd, out, buf.Bytes(), len(records))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "csv, xlsx or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to survey_responses_<emp_id>.<format>)")
	return cmd
}

func newExportAllCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-all",
		Short: "Export every submission to one XLSX workbook, one sheet per employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sheets, err := a.exports.ExportAll(cmd.Context())
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := export.WriteWorkbook(&buf, sheets); err != nil {
				return err
			}
			if out == "" {
				out = export.AllFileName(time.Now().UTC())
			}
			return writeFile(cmd, out, buf.Bytes(), len(sheets))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to all_survey_responses_<date>.xlsx)")
	return cmd
}

func writeFile(cmd *cobra.Command, path string, data []byte, count int) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d entries)\n", path, count)
	return nil
}
