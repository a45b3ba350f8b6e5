package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"storefront.GO/config"
	cartService "storefront.GO/service/cart"
)

var sweepDryRun bool

var sweepCmd = &cobra.Command{
	Use:   "cart:sweep",
	Short: "Strip configured gift lines whose anchor product left the cart",
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := setupCartRuntime()
		if err != nil {
			fmt.Printf("Runtime setup failed: %v\n", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		snap, err := rt.Controller.Refresh(ctx)
		if err != nil {
			fmt.Printf("Cart fetch failed: %v\n", err)
			os.Exit(1)
		}

		relyOn := config.AppConfig.RelyOnProductID
		if relyOn == "" {
			fmt.Println("No anchor product configured.")
			return
		}
		if snap.HasProduct(relyOn) {
			fmt.Println("Anchor product still in cart, nothing to sweep.")
			return
		}

		plan := cartService.SettingsGiftSweep(snap.Items, config.AppConfig.FreeGiftProductIDs)
		if plan.Empty() {
			fmt.Println("Nothing to sweep.")
			return
		}
		if sweepDryRun {
			fmt.Printf("Would zero %d line(s):\n", len(plan.Updates))
			for key := range plan.Updates {
				fmt.Printf("  %s\n", key)
			}
			return
		}

		next, err := rt.Client.UpdateLines(ctx, plan.Updates)
		if err != nil {
			fmt.Printf("Sweep failed: %v\n", err)
			os.Exit(1)
		}
		if next.HasErrors() {
			fmt.Printf("Sweep rejected: %s\n", next.ErrorMessage())
			os.Exit(1)
		}
		if err := rt.Controller.Apply(ctx, next, cartService.Trigger{Source: "cli-sweep"}); err != nil {
			fmt.Printf("Apply failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Swept %d gift line(s), cart now has %d item(s).\n", len(plan.Updates), next.ItemCount)
	},
}

func init() {
	sweepCmd.Flags().BoolVar(&sweepDryRun, "dry-run", false, "Report what would be removed without mutating the cart")
	rootCmd.AddCommand(sweepCmd)
}
