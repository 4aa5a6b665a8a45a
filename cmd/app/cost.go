package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/wichananm65/recipe-costing-backend/internal/catalogfile"
	"github.com/wichananm65/recipe-costing-backend/internal/config"
	"github.com/wichananm65/recipe-costing-backend/internal/cost"
)

type costOptions struct {
	catalogPath string
	recipe      string
	policy      string
	unitMode    string
	asJSON      bool
}

func newCostCmd(opts *rootOptions) *cobra.Command {
	co := &costOptions{}
	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Price recipes from a TOML catalog file",
		Long: `Price the recipes of a TOML catalog file without a database. Each
ingredient is priced from its product's default vendor offer.

Examples:
  recipe-costing cost --catalog pantry.toml
  recipe-costing cost --catalog pantry.toml --recipe "Sweet Bread" --policy strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			return runCost(cmd.OutOrStdout(), cfg.Cost, co)
		},
	}
	cmd.Flags().StringVar(&co.catalogPath, "catalog", "", "path to the TOML catalog file (required)")
	cmd.Flags().StringVar(&co.recipe, "recipe", "", "price only the named recipe")
	cmd.Flags().StringVar(&co.policy, "policy", "", "missing product policy: lenient or strict (default from configuration)")
	cmd.Flags().StringVar(&co.unitMode, "unit-mode", "", "unit table: corrected or reference (default from configuration)")
	cmd.Flags().BoolVar(&co.asJSON, "json", false, "print the cost breakdown as JSON")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}

type recipeCost struct {
	Recipe         string         `json:"recipe"`
	FormattedTotal string         `json:"formatted_total"`
	Breakdown      cost.Breakdown `json:"breakdown"`
}

func runCost(out io.Writer, cc config.CostConfig, co *costOptions) error {
	if co.policy != "" {
		cc.MissingProductPolicy = co.policy
	}
	if co.unitMode != "" {
		cc.UnitMode = co.unitMode
	}
	if _, err := cost.ParsePolicy(cc.MissingProductPolicy); err != nil {
		return err
	}
	if _, err := cost.ParseUnitMode(cc.UnitMode); err != nil {
		return err
	}
	engine := cc.Engine()
	formatter := cc.Formatter()

	f, err := catalogfile.Load(co.catalogPath)
	if err != nil {
		return err
	}

	recipes := f.Recipes
	if co.recipe != "" {
		r, ok := f.Recipe(co.recipe)
		if !ok {
			return fmt.Errorf("recipe %q not found in %s", co.recipe, co.catalogPath)
		}
		recipes = []catalogfile.Recipe{r}
	}
	if len(recipes) == 0 {
		return errors.New("catalog has no recipes")
	}

	catalog := f.Catalog()
	results := make([]recipeCost, 0, len(recipes))
	for _, r := range recipes {
		b, err := engine.RecipeCost(r.CostIngredients(), catalog)
		if err != nil {
			return fmt.Errorf("recipe %q: %w", r.Name, err)
		}
		results = append(results, recipeCost{Recipe: r.Name, FormattedTotal: formatter.Format(b.Total), Breakdown: b})
	}

	if co.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for i, rc := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printRecipeCost(out, rc, formatter)
	}
	return nil
}

func printRecipeCost(out io.Writer, rc recipeCost, formatter cost.Formatter) {
	fmt.Fprintf(out, "%s\n", rc.Recipe)
	for _, line := range rc.Breakdown.Lines {
		name := line.ProductName
		if name == "" {
			name = fmt.Sprintf("product %d", line.ProductID)
		}
		vendor := "-"
		if line.Offer != nil {
			vendor = line.Offer.VendorName
		}
		fmt.Fprintf(out, "  %-20s %10s %-5s %-16s %12s\n",
			name, line.Quantity.String(), line.Unit, vendor, formatter.Format(line.Cost))
	}
	fmt.Fprintf(out, "  %-20s %10s %-5s %-16s %12s\n", "Total", "", "", "", rc.FormattedTotal)
	for _, w := range rc.Breakdown.Warnings {
		fmt.Fprintf(out, "  warning: ingredient %d (product %d): %s\n", w.Index, w.ProductID, w.Message)
	}
}
