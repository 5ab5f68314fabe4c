package main

import (
	"fmt"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/mkoval/monoynab/pkg/config"
	"github.com/mkoval/monoynab/pkg/monobank"
	"github.com/mkoval/monoynab/pkg/ynab"
)

// accountsCmd dumps both sides of the mapping so a user can fill in the
// accounts table: Monobank accounts with their last-four digits, and the
// YNAB accounts of the configured budget.
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List Monobank and YNAB accounts for mapping setup",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		if cfg.Monobank.Token == "" {
			return fmt.Errorf("monobank token is required")
		}

		client := monobank.NewClient(cfg.Monobank.Token, cfg.Monobank.BaseURL)
		info, err := client.ClientInfo(cmd.Context())
		if err != nil {
			return err
		}

		type monoAccount struct {
			ID       string
			LastFour string
			Type     string
			Currency int
		}
		monoAccounts := make([]monoAccount, 0, len(info.Accounts))
		for _, acc := range info.Accounts {
			monoAccounts = append(monoAccounts, monoAccount{
				ID:       acc.ID,
				LastFour: acc.LastFour(),
				Type:     acc.Type,
				Currency: acc.CurrencyCode,
			})
		}

		fmt.Println("Monobank accounts:")
		pp.Println(monoAccounts)

		if cfg.YNAB.Token == "" {
			return nil
		}

		ledger := ynab.New(cfg.YNAB.Token, cfg.YNAB.BudgetID)
		if cfg.YNAB.BudgetID == "" {
			budgets, err := ledger.Budgets()
			if err != nil {
				return err
			}
			fmt.Println("YNAB budgets (set ynab.budget_id to see accounts):")
			pp.Println(budgets)
			return nil
		}

		accounts, err := ledger.Accounts()
		if err != nil {
			return err
		}
		type ynabAccount struct {
			ID   string
			Name string
		}
		ynabAccounts := make([]ynabAccount, 0, len(accounts))
		for _, acc := range accounts {
			ynabAccounts = append(ynabAccounts, ynabAccount{ID: acc.ID, Name: acc.Name})
		}
		fmt.Println("YNAB accounts:")
		pp.Println(ynabAccounts)
		return nil
	},
}
