package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/mkoval/monoynab/pkg/csv"
	"github.com/mkoval/monoynab/pkg/models"
)

// printPreview renders a dry-run: a styled per-transaction listing followed
// by an importable CSV dump on stdout.
func printPreview(txs []models.Transaction) {
	addedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green

	for _, tx := range txs {
		line := fmt.Sprintf("%s | %-30s | %9.2f | %s",
			tx.Date.Format("2006/01/02"), tx.Payee, tx.AmountMajor(), tx.ImportedID)
		fmt.Println(addedStyle.Render("+ " + line))
	}
	fmt.Printf("\nDry run: %d transaction(s) would be imported\n\n", len(txs))

	_, _ = os.Stdout.Write(csv.Create(txs, nil))
}
