package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/librum-dev/librum/pkg/core"
)

// ExportCSV writes a header row followed by the data rows to path,
// creating parent directories as needed.
func ExportCSV(path string, headers []string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return core.StorageFailed("export csv", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return core.StorageFailed("export csv", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := w.Write(headers); err != nil {
			return core.StorageFailed("export csv", err)
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return core.StorageFailed("export csv", err)
	}
	if err := file.Close(); err != nil {
		return core.StorageFailed("export csv", err)
	}
	return nil
}

// OverdueCSV renders the overdue report as header plus rows.
func OverdueCSV(items []OverdueItem) ([]string, [][]string) {
	headers := []string{"isbn", "title", "memberId", "memberName", "dueDate", "daysOverdue", "fineCents"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ISBN,
			item.Title,
			item.MemberID,
			item.MemberName,
			item.DueDate.String(),
			strconv.Itoa(item.DaysOverdue),
			strconv.FormatInt(item.FineCents, 10),
		})
	}
	return headers, rows
}

// MemberLoansCSV renders a member-loan report as header plus rows.
func MemberLoansCSV(items []MemberLoanItem) ([]string, [][]string) {
	headers := []string{"loanId", "isbn", "title", "copyId", "loanDate", "dueDate"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.LoanID,
			item.ISBN,
			item.Title,
			item.CopyID,
			item.LoanDate.String(),
			item.DueDate.String(),
		})
	}
	return headers, rows
}

// PopularBooksCSV renders the popular-books report as header plus rows.
func PopularBooksCSV(items []PopularBookItem) ([]string, [][]string) {
	headers := []string{"isbn", "title", "author", "totalLoans"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ISBN,
			item.Title,
			item.Author,
			fmt.Sprintf("%d", item.TotalLoans),
		})
	}
	return headers, rows
}
