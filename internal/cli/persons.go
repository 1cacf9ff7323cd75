package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trrcms/trrcms/internal/models"
	"github.com/trrcms/trrcms/internal/store"
)

func personsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "persons",
		Short: "Manage claimant and occupant records",
	}
	cmd.AddCommand(personCreateCmd(app))
	cmd.AddCommand(personListCmd(app))
	cmd.AddCommand(personShowCmd(app))
	return cmd
}

func personCreateCmd(app *App) *cobra.Command {
	var p models.Person

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a person record",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Persons.Create(cmdContext(), p)
			if err := resultErr(res); err != nil {
				return err
			}
			printOutcome(res)
			fmt.Printf("  ID: %s\n", res.Data.PersonID)
			return nil
		},
	}

	cmd.Flags().StringVar(&p.FirstName, "first", "", "first name (Latin)")
	cmd.Flags().StringVar(&p.FirstNameAr, "first-ar", "", "first name (Arabic)")
	cmd.Flags().StringVar(&p.FatherName, "father", "", "father name (Latin)")
	cmd.Flags().StringVar(&p.FatherNameAr, "father-ar", "", "father name (Arabic)")
	cmd.Flags().StringVar(&p.LastName, "last", "", "last name (Latin)")
	cmd.Flags().StringVar(&p.LastNameAr, "last-ar", "", "last name (Arabic)")
	cmd.Flags().StringVar(&p.NationalID, "national-id", "", "11-digit national number")
	cmd.Flags().StringVar(&p.MobileNumber, "mobile", "", "mobile number")
	cmd.Flags().IntVar(&p.YearOfBirth, "born", 0, "year of birth")
	return cmd
}

func personListCmd(app *App) *cobra.Command {
	var filter store.PersonFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persons",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Persons.List(cmdContext(), filter)
			if err := resultErr(res); err != nil {
				return err
			}
			if len(res.Data) == 0 {
				fmt.Println("No persons found")
				return nil
			}
			for _, p := range res.Data {
				name := p.FullNameAr()
				if name == "" {
					name = p.FullName()
				}
				fmt.Printf("%s  %-30s  national_id=%s\n", p.PersonID, name, p.NationalID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.NationalID, "national-id", "", "filter by national number")
	cmd.Flags().StringVar(&filter.Search, "search", "", "search names in both scripts")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum rows")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "rows to skip")
	return cmd
}

func personShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <person-id>",
		Short: "Show one person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Persons.Get(cmdContext(), args[0])
			if err := resultErr(res); err != nil {
				return err
			}
			p := res.Data
			fmt.Printf("Person %s\n", p.PersonID)
			fmt.Printf("  Name:        %s\n", p.FullName())
			fmt.Printf("  Name (ar):   %s\n", p.FullNameAr())
			fmt.Printf("  National ID: %s\n", p.NationalID)
			if p.MobileNumber != "" {
				fmt.Printf("  Mobile:      %s\n", p.MobileNumber)
			}
			if p.YearOfBirth != 0 {
				fmt.Printf("  Born:        %d\n", p.YearOfBirth)
			}
			return nil
		},
	}
}
