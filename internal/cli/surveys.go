package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func surveysCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surveys",
		Short: "Browse field and office surveys from the central backend",
	}
	cmd.AddCommand(surveyListCmd(app))
	cmd.AddCommand(surveyContextCmd(app))
	return cmd
}

func surveyListCmd(app *App) *cobra.Command {
	var source string
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List surveys",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Surveys.List(cmdContext(), source, page, pageSize)
			if err := resultErr(res); err != nil {
				return err
			}
			if len(res.Data.Surveys) == 0 {
				fmt.Println("No surveys found")
				return nil
			}
			for _, s := range res.Data.Surveys {
				date := ""
				if s.SurveyDate != nil {
					date = s.SurveyDate.Format("2006-01-02")
				}
				fmt.Printf("%s  %-8s %-10s %s  unit=%s\n",
					s.SurveyID, s.Source, s.Status, date, s.UnitID)
			}
			fmt.Printf("Page %d of %d survey(s) total\n", page, res.Data.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "filter by source: field or office")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "rows per page")
	return cmd
}

func surveyContextCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "context <survey-id>",
		Short: "Show the enriched context of a survey",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Surveys.Context(cmdContext(), args[0])
			if err := resultErr(res); err != nil {
				return err
			}
			sc := res.Data
			fmt.Printf("Survey %s\n", args[0])
			fmt.Printf("  Building:   %s (%s)\n", sc.Building.BuildingID, sc.Building.NeighborhoodName)
			fmt.Printf("  Unit:       %s, %s\n", sc.Unit.UnitID, sc.Unit.UnitType)
			fmt.Printf("  Households: %d\n", len(sc.Households))
			for _, p := range sc.Persons {
				name := p.FullNameAr()
				if name == "" {
					name = p.FullName()
				}
				fmt.Printf("  Person:     %s (%s)\n", name, p.PersonID)
			}
			if sc.ClaimData.ClaimType != "" {
				fmt.Printf("  Claim:      %s, %s, evidence %d\n",
					sc.ClaimData.ClaimType, sc.ClaimData.CaseStatus, sc.ClaimData.EvidenceCount)
			}
			for _, c := range sc.Claims {
				fmt.Printf("  Linked:     %s %s [%s]\n", c.ClaimID, c.ClaimType, c.Status)
			}
			return nil
		},
	}
}
