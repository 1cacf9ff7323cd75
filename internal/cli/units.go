package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trrcms/trrcms/internal/models"
)

func unitsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "units",
		Short: "Manage property units",
	}
	cmd.AddCommand(unitCreateCmd(app))
	cmd.AddCommand(unitShowCmd(app))
	cmd.AddCommand(unitListCmd(app))
	return cmd
}

func unitCreateCmd(app *App) *cobra.Command {
	var u models.Unit

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a property unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Units.Create(cmdContext(), u)
			if err := resultErr(res); err != nil {
				return err
			}
			printOutcome(res)
			fmt.Printf("  ID:   %s\n", res.Data.UnitID)
			fmt.Printf("  UUID: %s\n", res.Data.UnitUUID)
			return nil
		},
	}

	cmd.Flags().StringVar(&u.BuildingID, "building", "", "building code the unit belongs to")
	cmd.Flags().StringVar(&u.UnitNumber, "number", "", "unit number within the building")
	cmd.Flags().StringVar(&u.UnitType, "type", "", "unit type: apartment, shop, office, ...")
	cmd.Flags().IntVar(&u.FloorNumber, "floor", 0, "floor number")
	cmd.Flags().Float64Var(&u.AreaSqm, "area", 0, "area in square meters")
	return cmd
}

func unitShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <unit-uuid>",
		Short: "Show one unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Units.Get(cmdContext(), args[0])
			if err := resultErr(res); err != nil {
				return err
			}
			u := res.Data
			fmt.Printf("Unit %s (%s)\n", u.UnitID, u.UnitUUID)
			fmt.Printf("  Building: %s\n", u.BuildingID)
			fmt.Printf("  Type:     %s, floor %d\n", u.UnitType, u.FloorNumber)
			if u.AreaSqm > 0 {
				fmt.Printf("  Area:     %.1f sqm\n", u.AreaSqm)
			}
			return nil
		},
	}
}

func unitListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <building-id>",
		Short: "List the units of a building",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Units.ListByBuilding(cmdContext(), args[0])
			if err := resultErr(res); err != nil {
				return err
			}
			if len(res.Data) == 0 {
				fmt.Println("No units found")
				return nil
			}
			for _, u := range res.Data {
				fmt.Printf("%s  %-10s  floor %d\n", u.UnitID, u.UnitType, u.FloorNumber)
			}
			return nil
		},
	}
}
