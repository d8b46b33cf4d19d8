package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"inventory-aging/internal/app"
	"inventory-aging/internal/core"
	"inventory-aging/internal/export"
	"inventory-aging/internal/store"
)

const usage = `Usage:
  app report  [--config f] [--as-of YYYY-MM-DD] [--prior file | --prior-db] [--format csv|json|xlsx] [--out dir] [--archive] files...
  app aging   [--config f] [--as-of YYYY-MM-DD] [--format csv|json|xlsx] [--out dir] files...
  app legend  [--config f] [--as-of YYYY-MM-DD]
  app schema
  app history [--config f] [--limit n]
  app plans   [--config f] [--as-of YYYY-MM-DD] report.xlsx`

// ErrUsage is returned for an unknown command or malformed arguments.
var ErrUsage = errors.New("invalid usage")

// ConfigPath returns the --config value from args, falling back to fallback.
// It is read before the service exists, so it does not use the subcommand flag sets.
func ConfigPath(args []string, fallback string) string {
	for i, a := range args {
		for _, prefix := range []string{"--config", "-config"} {
			if a == prefix && i+1 < len(args) {
				return args[i+1]
			}
			if v, ok := strings.CutPrefix(a, prefix+"="); ok {
				return v
			}
		}
	}
	return fallback
}

// Run executes a one-shot CLI command.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command\n%s", ErrUsage, usage)
	}

	switch args[0] {
	case "report", "rep", "r":
		return runReport(ctx, svc, args[1:], out)

	case "aging", "age", "a":
		return runAging(ctx, svc, args[1:], out)

	case "legend":
		fs, asOf := newFlagSet("legend")
		if err := fs.Parse(args[1:]); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		date, err := parseAsOf(*asOf)
		if err != nil {
			return err
		}
		printLegend(out, svc.Legend(date))
		return nil

	case "schema":
		b, err := svc.Schema()
		if err != nil {
			return fmt.Errorf("generate schema: %w", err)
		}
		_, err = fmt.Fprintln(out, string(b))
		return err

	case "history", "hist":
		fs, _ := newFlagSet("history")
		limit := fs.Int("limit", 20, "number of archived sheets to list")
		if err := fs.Parse(args[1:]); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		reports, err := svc.ListArchivedReports(ctx, *limit)
		if err != nil {
			return err
		}
		printHistory(out, reports)
		return nil

	case "plans":
		return runPlans(ctx, svc, args[1:], out)

	default:
		return fmt.Errorf("%w: unknown command %s\n%s", ErrUsage, args[0], usage)
	}
}

// newFlagSet returns a flag set with the options shared by every command.
func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.String("config", "", "config file (read before the command runs)")
	asOf := fs.String("as-of", "", "reference date YYYY-MM-DD; default is the configured date or last month end")
	return fs, asOf
}

func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(core.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: --as-of %q is not YYYY-MM-DD", ErrUsage, s)
	}
	return t, nil
}

func runReport(ctx context.Context, svc app.ApplicationService, args []string, out io.Writer) error {
	fs, asOf := newFlagSet("report")
	prior := fs.String("prior", "", "last period's report (xlsx or csv)")
	priorDB := fs.Bool("prior-db", false, "read the prior period from the report archive")
	format := fs.String("format", "xlsx", "output format: csv, json or xlsx")
	dir := fs.String("out", ".", "output directory")
	archive := fs.Bool("archive", false, "archive the report for next period's run")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: report needs at least one snapshot file", ErrUsage)
	}
	if *prior != "" && *priorDB {
		return fmt.Errorf("%w: --prior and --prior-db are mutually exclusive", ErrUsage)
	}
	date, err := parseAsOf(*asOf)
	if err != nil {
		return err
	}
	f, err := export.ParseFormat(*format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	result, err := svc.RunReport(ctx, app.ReportRequest{
		Files:            fs.Args(),
		AsOf:             date,
		PriorFile:        *prior,
		PriorFromArchive: *priorDB,
		Format:           f,
		OutDir:           *dir,
		Archive:          *archive,
	})
	if err != nil {
		return err
	}
	printReportSummary(out, result)
	return nil
}

func runAging(ctx context.Context, svc app.ApplicationService, args []string, out io.Writer) error {
	fs, asOf := newFlagSet("aging")
	format := fs.String("format", "xlsx", "output format: csv, json or xlsx")
	dir := fs.String("out", ".", "output directory")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: aging needs at least one snapshot file", ErrUsage)
	}
	date, err := parseAsOf(*asOf)
	if err != nil {
		return err
	}
	f, err := export.ParseFormat(*format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	result, err := svc.AgingView(ctx, app.AgingRequest{Files: fs.Args(), AsOf: date, Format: f, OutDir: *dir})
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-58s\n", "SEMI-FINISHED AGING")
	fmt.Fprintf(out, "  Run      : %s\n", result.RunID)
	fmt.Fprintf(out, "  As of    : %s\n", result.AsOf.Format(core.DateLayout))
	fmt.Fprintf(out, "  Lots     : %d\n", len(result.Table.Rows))
	fmt.Fprintln(out, strings.Repeat("=", 62))
	printOutputs(out, result.Outputs)
	return nil
}

func runPlans(ctx context.Context, svc app.ApplicationService, args []string, out io.Writer) error {
	fs, asOf := newFlagSet("plans")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: plans needs exactly one edited report", ErrUsage)
	}
	date, err := parseAsOf(*asOf)
	if err != nil {
		return err
	}

	result, err := svc.ImportPlans(ctx, app.ImportPlansRequest{File: fs.Arg(0), AsOf: date})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  imported %d plans into run %s (%s): %d lines updated\n",
		result.Plans, result.RunID, result.AsOf.Format(core.DateLayout), result.Updated)
	return nil
}

func printReportSummary(out io.Writer, result *app.ReportResult) {
	material := result.Material.Summary()
	finished := result.FinishedGoods.Summary()

	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-58s\n", "INVENTORY DISPOSITION REPORT")
	fmt.Fprintf(out, "  Run      : %s\n", result.RunID)
	fmt.Fprintf(out, "  As of    : %s\n", result.AsOf.Format(core.DateLayout))
	fmt.Fprintf(out, "  Loaded   : %d lots\n", result.Loaded)
	fmt.Fprintf(out, "  Prior    : %s\n", result.PriorSource)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-32s %12s %12s\n", "CATEGORY", "MATERIAL", "FINISHED")
	fmt.Fprintln(out, strings.Repeat("-", 62))
	for _, c := range core.CategoryOrder {
		if material[c] == 0 && finished[c] == 0 {
			continue
		}
		fmt.Fprintf(out, "  %-32s %12d %12d\n", string(c), material[c], finished[c])
	}
	fmt.Fprintln(out, strings.Repeat("-", 62))
	fmt.Fprintf(out, "  %-32s %12d %12d\n", "total", result.Material.Records.Len(), result.FinishedGoods.Records.Len())
	fmt.Fprintf(out, "  %-32s %12d\n", "semi_finished_lots", len(result.SemiFinished.Rows))
	fmt.Fprintln(out, strings.Repeat("=", 62))
	printOutputs(out, result.Outputs)
	for _, a := range result.Archived {
		fmt.Fprintf(out, "  archived %s: %d lines (report %s)\n", a.Sheet, a.LineCount, a.ID)
	}
}

func printOutputs(out io.Writer, paths []string) {
	for _, p := range paths {
		fmt.Fprintf(out, "  wrote %s\n", p)
	}
}

func printLegend(out io.Writer, legend *app.LegendResult) {
	for _, row := range legend.Rows {
		if row[1] == "" {
			fmt.Fprintln(out, row[0])
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", row[0], row[1])
	}
}

func printHistory(out io.Writer, reports []store.ArchivedReport) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-12s %-8s %8s  %-30s\n", "AS OF", "SHEET", "LINES", "RUN")
	fmt.Fprintln(out, strings.Repeat("-", 62))
	for _, r := range reports {
		fmt.Fprintf(out, "  %-12s %-8s %8d  %-30s\n", r.AsOf.Format(core.DateLayout), r.Sheet, r.LineCount, r.RunID)
	}
	fmt.Fprintln(out, strings.Repeat("=", 62))
}
