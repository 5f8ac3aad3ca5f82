package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/rgehrsitz/flipcalc/internal/output"
	"github.com/spf13/cobra"
)

func viabilityCmd(c *cli) *cobra.Command {
	var (
		params domain.SimulationParameters
		facts  domain.PropertyFacts
		format string
	)

	cmd := &cobra.Command{
		Use:   "viability",
		Short: "Compute the viability of a single flip from flags",
		Long: `Compute the viability of a single flip without an analysis file.

Percentages are given in points (20 means 20%).

Example:
  flipcalc viability --purchase-price 720000 --sale-price 936000 \
    --area 68 --condo-fee 500 --yearly-tax 1200 --renovation 50000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.engine().Evaluate(cmd.Context(), facts, params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			case "console", "table", "":
				var buf bytes.Buffer
				output.WriteViability(&buf, "FLIP VIABILITY", params, report.Result, report.Warnings)
				_, err := out.Write(buf.Bytes())
				return err
			default:
				return fmt.Errorf("unknown output format %q (valid: console, json)", format)
			}
		},
	}

	f := cmd.Flags()
	f.Float64Var(&params.PurchasePrice, "purchase-price", 0, "Purchase price")
	f.Float64Var(&params.SalePrice, "sale-price", 0, "Expected sale price")
	f.Float64Var(&params.DownPaymentPct, "down-payment", 20, "Down payment (% of purchase price)")
	f.Float64Var(&params.TransferTaxPct, "transfer-tax", 3, "Transfer tax (% of purchase price)")
	f.Float64Var(&params.BankAppraisalFee, "appraisal-fee", 0, "Bank appraisal fee")
	f.Float64Var(&params.RegistryFeePct, "registry-fee", 1.5, "Registry fee (% of purchase price)")
	f.Float64Var(&params.MonthlyGeneralExpenses, "general-expenses", 0, "General expenses per month")
	f.Float64Var(&params.RenovationCost, "renovation", 0, "Renovation cost")
	f.Float64Var(&params.AnnualFinancingRatePct, "rate", 11.5, "Annual financing rate (%)")
	f.IntVar(&params.FinancingTermMonths, "term", 420, "Financing term in months")
	f.IntVar(&params.MonthsToSell, "months", 6, "Months until the sale")
	f.Float64Var(&params.BrokerageFeePct, "brokerage", 6, "Brokerage fee (% of sale price)")
	f.BoolVar(&params.IncomeTaxApplies, "income-tax", true, "Charge income tax on the gain")
	f.Float64Var(&facts.Area, "area", 0, "Private area in m²")
	f.Float64Var(&facts.CondoFeeMonthly, "condo-fee", 0, "Monthly condominium fee")
	f.Float64Var(&facts.YearlyTax, "yearly-tax", 0, "Yearly property tax")
	f.StringVarP(&format, "format", "f", "console", "Output format (console, json)")

	_ = cmd.MarkFlagRequired("purchase-price")
	_ = cmd.MarkFlagRequired("sale-price")
	return cmd
}
