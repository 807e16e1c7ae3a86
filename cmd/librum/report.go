package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/librum-dev/librum"
	"github.com/librum-dev/librum/pkg/report"
)

var (
	reportCSVPath string
	popularLimit  int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build reports, optionally exporting CSV",
}

func emitCSV(headers []string, rows [][]string) {
	if reportCSVPath == "" {
		return
	}
	if err := report.ExportCSV(reportCSVPath, headers, rows); err != nil {
		fatal("Failed to export CSV", err)
	}
	fmt.Printf("Exported %s\n", reportCSVPath)
}

var reportOverdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "Overdue loans with accrued fines",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		items, err := app.Reports.Overdue(context.Background(), librum.Date{})
		if err != nil {
			fatal("Failed to build report", err)
		}
		for _, item := range items {
			fmt.Printf("%s  %-30s %s (%s) due=%s days=%d fine=%d\n",
				item.ISBN, item.Title, item.MemberName, item.MemberID,
				item.DueDate, item.DaysOverdue, item.FineCents)
		}
		headers, rows := report.OverdueCSV(items)
		emitCSV(headers, rows)
	},
}

var reportMemberCmd = &cobra.Command{
	Use:   "member <member-id>",
	Short: "A member's active loans",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		items, err := app.Reports.MemberLoans(context.Background(), args[0])
		if err != nil {
			fatal("Failed to build report", err)
		}
		for _, item := range items {
			fmt.Printf("%s  %-30s copy=%s loaned=%s due=%s\n",
				item.ISBN, item.Title, item.CopyID, item.LoanDate, item.DueDate)
		}
		headers, rows := report.MemberLoansCSV(items)
		emitCSV(headers, rows)
	},
}

var reportPopularCmd = &cobra.Command{
	Use:   "popular",
	Short: "Most-loaned books",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		items, err := app.Reports.PopularBooks(context.Background(), popularLimit)
		if err != nil {
			fatal("Failed to build report", err)
		}
		for _, item := range items {
			fmt.Printf("%s  %-30s %s loans=%d\n", item.ISBN, item.Title, item.Author, item.TotalLoans)
		}
		headers, rows := report.PopularBooksCSV(items)
		emitCSV(headers, rows)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportOverdueCmd, reportMemberCmd, reportPopularCmd)

	reportCmd.PersistentFlags().StringVar(&reportCSVPath, "csv", "", "Write the report to a CSV file")
	reportPopularCmd.Flags().IntVar(&popularLimit, "limit", 10, "Maximum rows")
}
