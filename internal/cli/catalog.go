package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/rugscan/internal/catalog"
	"github.com/ppiankov/rugscan/internal/model"
)

var catalogFormat string

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate pattern catalogs",
	Long: `A pattern catalog lists the signature categories rugscan matches, the
liquidity-lock custodian addresses it looks for, the tax identifiers and the
score weights. The built-in catalog is used unless catalog.path or --catalog
points at a YAML file.`,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active catalog",
	Long: `Print the active catalog as YAML (default) or JSON. The output of
"rugscan catalog show" is a valid starting point for a custom catalog.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		cat, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return err
		}

		var data []byte
		switch catalogFormat {
		case "yaml", "yml":
			data, err = catalog.Marshal(cat)
		case "json":
			data, err = json.MarshalIndent(cat, "", "  ")
			data = append(data, '\n')
		default:
			return fmt.Errorf("unknown format %q (supported: yaml, json)", catalogFormat)
		}
		if err != nil {
			return fmt.Errorf("marshal catalog: %w", err)
		}

		_, err = os.Stdout.Write(data)
		return err
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a catalog file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(args[0])
		if err != nil {
			return err
		}

		suspicious := len(cat.CategoriesOfKind(model.KindSuspicious))
		blacklist := len(cat.CategoriesOfKind(model.KindBlacklist))

		fmt.Printf("✓ %s is valid\n", args[0])
		fmt.Printf("  Version:          %s\n", cat.Version)
		fmt.Printf("  Categories:       %d suspicious, %d blacklist\n", suspicious, blacklist)
		fmt.Printf("  Signatures:       %d\n", cat.SignatureCount())
		fmt.Printf("  Lock custodians:  %d\n", len(cat.LiquidityLocks))
		for _, lp := range cat.LiquidityLocks {
			fmt.Printf("    %-14s %s\n", lp.Name, catalog.ChecksumAddress(lp.Address))
		}
		fmt.Printf("  Weights:          %d per signature, %d for blacklist\n", cat.Weights.Signature, cat.Weights.Blacklist)
		fmt.Printf("  Tax identifiers:  %s / %s\n", cat.Taxes.Buy, cat.Taxes.Sell)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogValidateCmd)

	catalogShowCmd.Flags().StringVar(&catalogFormat, "format", "yaml", "output format (yaml, json)")
}
