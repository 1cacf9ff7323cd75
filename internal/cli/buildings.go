package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func buildingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buildings",
		Short: "Look up buildings in the local registry and the central backend",
	}
	cmd.AddCommand(buildingShowCmd(app))
	cmd.AddCommand(buildingSearchCmd(app))
	return cmd
}

func buildingShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <building-id>",
		Short: "Show a building by its 17-digit code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Buildings.Get(cmdContext(), args[0])
			if err := resultErr(res); err != nil {
				return err
			}
			b := res.Data
			fmt.Printf("Building %s\n", b.BuildingID)
			fmt.Printf("  Neighborhood: %s / %s\n", b.NeighborhoodName, b.NeighborhoodNameAr)
			fmt.Printf("  Type:         %s, status %s\n", b.BuildingType, b.BuildingStatus)
			fmt.Printf("  Floors:       %d, units %d\n", b.NumberOfFloors, b.NumberOfUnits)
			return nil
		},
	}
}

func buildingSearchCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search buildings by code or neighborhood, locally and on the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Buildings.Search(cmdContext(), args[0], limit)
			if err := resultErr(res); err != nil {
				return err
			}
			if len(res.Data.Buildings) == 0 {
				fmt.Println("No buildings found")
				return nil
			}
			for _, b := range res.Data.Buildings {
				fmt.Printf("%s  %-24s  %s\n", b.BuildingID, b.NeighborhoodName, b.BuildingStatus)
			}
			fmt.Printf("%d result(s)\n", res.Data.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum results")
	return cmd
}
