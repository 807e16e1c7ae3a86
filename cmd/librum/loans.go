package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/librum-dev/librum"
	"github.com/librum-dev/librum/pkg/core"
)

var (
	loanDateFlag string
	dueDateFlag  string
)

var loansCmd = &cobra.Command{
	Use:   "loans",
	Short: "Lend, return, and inspect loans",
}

func parseDateFlag(value, name string) core.Date {
	if value == "" {
		return core.Date{}
	}
	date, err := core.ParseDate(value)
	if err != nil {
		fatal("Invalid "+name, err)
	}
	return date
}

var loansLendCmd = &cobra.Command{
	Use:   "lend <isbn-or-id> <member-id>",
	Short: "Lend a copy of a book to a member",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		loan, err := app.Library.Lend(context.Background(), args[0], args[1],
			parseDateFlag(loanDateFlag, "loan date"), parseDateFlag(dueDateFlag, "due date"))
		if err != nil {
			fatal("Failed to lend", err)
		}
		fmt.Printf("Loan %s: copy %s due %s\n", loan.LoanID, loan.CopyID, loan.DueDate)
	},
}

var loansReturnCmd = &cobra.Command{
	Use:   "return <copy-id>",
	Short: "Return a copy",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		result, err := app.Library.Return(context.Background(), args[0])
		if err != nil {
			fatal("Failed to return", err)
		}
		fmt.Printf("Returned loan %s\n", result.Loan.LoanID)
		if result.Promoted != nil {
			fmt.Printf("Reservation %s promoted to READY, copy %s held\n",
				result.Promoted.ReservationID, result.ReservedCopy.CopyID)
		}
	},
}

var loansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active loans",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		loans, err := app.Library.ActiveLoans(context.Background())
		if err != nil {
			fatal("Failed to list loans", err)
		}
		for _, loan := range loans {
			fmt.Printf("%s  copy=%s member=%s due=%s\n",
				loan.LoanID, loan.CopyID, loan.MemberID, loan.DueDate)
		}
	},
}

var loansOverdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List overdue loans",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		loans, err := app.Library.OverdueLoans(context.Background(), librum.Date{})
		if err != nil {
			fatal("Failed to list overdue loans", err)
		}
		for _, loan := range loans {
			fine := app.Library.CalculateFine(loan, librum.Date{})
			fmt.Printf("%s  copy=%s member=%s due=%s fine=%d\n",
				loan.LoanID, loan.CopyID, loan.MemberID, loan.DueDate, fine)
		}
	},
}

var loansDueDateCmd = &cobra.Command{
	Use:   "due-date <loan-id> <date>",
	Short: "Change a loan's due date",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		loan, err := app.Library.UpdateLoanDueDate(context.Background(), args[0],
			parseDateFlag(args[1], "due date"))
		if err != nil {
			fatal("Failed to update due date", err)
		}
		fmt.Printf("Loan %s now due %s\n", loan.LoanID, loan.DueDate)
	},
}

var loansSuggestCmd = &cobra.Command{
	Use:   "suggest-due <member-id>",
	Short: "Suggest a due date for a member",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		due, err := app.Library.SuggestDueDate(context.Background(), args[0],
			parseDateFlag(loanDateFlag, "loan date"))
		if err != nil {
			fatal("Failed to suggest due date", err)
		}
		fmt.Println(due)
	},
}

func init() {
	rootCmd.AddCommand(loansCmd)
	loansCmd.AddCommand(loansLendCmd, loansReturnCmd, loansListCmd,
		loansOverdueCmd, loansDueDateCmd, loansSuggestCmd)

	loansLendCmd.Flags().StringVar(&loanDateFlag, "loan-date", "", "Loan date (YYYY-MM-DD, default today)")
	loansLendCmd.Flags().StringVar(&dueDateFlag, "due-date", "", "Due date (YYYY-MM-DD, default policy)")
	loansSuggestCmd.Flags().StringVar(&loanDateFlag, "loan-date", "", "Loan date (YYYY-MM-DD, default today)")
}
