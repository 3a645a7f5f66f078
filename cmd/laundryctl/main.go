// Command laundryctl runs shop maintenance tasks against the configured
// store: importing the old JSON data files and printing sales reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/kendall-kelly/laundry-shop-api/config"
	"github.com/kendall-kelly/laundry-shop-api/services"
	"github.com/kendall-kelly/laundry-shop-api/store"
	"github.com/olekukonko/tablewriter"
)

const usage = `usage: laundryctl <command> [flags]

commands:
  import   copy legacy JSON data files into the database
  report   print a sales report
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "laundryctl:", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) < 1 {
		fmt.Fprint(os.Stderr, usage)
		return errUsage
	}

	switch args[0] {
	case "import":
		return runImport(args[1:], stdout)
	case "report":
		return runReport(args[1:], stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", args[0], usage)
		return errUsage
	}
}

func runImport(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	from := fs.String("from", "", "directory holding orders.json and customers.json")
	databaseURL := fs.String("database-url", "", "target database (defaults to DATABASE_URL)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *from == "" {
		fmt.Fprintln(os.Stderr, "-from is required")
		fs.PrintDefaults()
		return errUsage
	}

	cfg, err := loadConfig(*databaseURL)
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.StoreDriverGorm {
		return fmt.Errorf("import needs a database target, STORE_DRIVER is %q", cfg.StoreDriver)
	}

	src, err := store.NewFileStore(*from)
	if err != nil {
		return err
	}
	dst, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer dst.Close()

	stats, err := store.Copy(context.Background(), src, dst)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	table := tablewriter.NewWriter(stdout)
	table.Header("Records", "Imported")
	rows := [][]string{
		{"customers", strconv.Itoa(stats.Customers)},
		{"orders", strconv.Itoa(stats.Orders)},
		{"notifications", strconv.Itoa(stats.Notifications)},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func runReport(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	kind := fs.String("type", "", "daily, weekly, monthly or custom; empty covers every order")
	from := fs.String("from", "", "first day, YYYY-MM-DD")
	to := fs.String("to", "", "last day, YYYY-MM-DD")
	databaseURL := fs.String("database-url", "", "database to read (defaults to DATABASE_URL)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cfg, err := loadConfig(*databaseURL)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		return fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", cfg.ReportTimezone, err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	reports := services.NewReportService(st.Orders(), loc)
	ctx := context.Background()
	var report *services.Report
	if *kind == "" {
		report, err = reports.Summary(ctx, *from, *to)
	} else {
		report, err = reports.Report(ctx, *kind, *from, *to)
	}
	if err != nil {
		return err
	}

	return printReport(stdout, report)
}

func printReport(w io.Writer, r *services.Report) error {
	if r.StartDate != "" {
		fmt.Fprintf(w, "Sales %s to %s\n", r.StartDate, r.EndDate)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Date", "Orders", "Sales")
	for _, d := range r.Daily {
		if err := table.Append([]string{d.Date, strconv.Itoa(d.Orders), d.Sales.StringFixed(2)}); err != nil {
			return err
		}
	}
	table.Footer("TOTAL", strconv.Itoa(r.TotalOrders), r.TotalSales.StringFixed(2))
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "paid %d, unpaid %d, active %d, completed %d, cancelled %d\n",
		r.PaidOrders, r.UnpaidOrders, r.ActiveOrders, r.CompletedOrders, r.CancelledOrders)
	return nil
}

// loadConfig reads the environment like the server does. A -database-url
// flag points the command at a database regardless of STORE_DRIVER.
func loadConfig(databaseURL string) (*config.Config, error) {
	if databaseURL != "" {
		if err := os.Setenv("DATABASE_URL", databaseURL); err != nil {
			return nil, err
		}
		if err := os.Setenv("STORE_DRIVER", config.StoreDriverGorm); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(config.NewLogger(cfg.LogLevel))
	return cfg, nil
}
