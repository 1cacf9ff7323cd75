package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trrcms/trrcms/internal/models"
)

func relationsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relations",
		Short: "Manage person-unit tenure relations and their evidence",
	}
	cmd.AddCommand(relationCreateCmd(app))
	cmd.AddCommand(relationListCmd(app))
	cmd.AddCommand(relationVerifyCmd(app))
	cmd.AddCommand(relationEvidenceCmd(app))
	return cmd
}

func relationCreateCmd(app *App) *cobra.Command {
	var rel models.Relation

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tenure relation",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Tenure.CreateRelation(cmdContext(), rel)
			if err := resultErr(res); err != nil {
				return err
			}
			printOutcome(res)
			fmt.Printf("  ID: %s\n", res.Data.RelationID)
			return nil
		},
	}

	cmd.Flags().StringVar(&rel.PersonID, "person", "", "person ID")
	cmd.Flags().StringVar(&rel.UnitID, "unit", "", "unit ID")
	cmd.Flags().StringVar(&rel.RelationType, "type", "", "owner, tenant, heir, guest, occupant, other")
	cmd.Flags().IntVar(&rel.OwnershipShare, "share", 0, "ownership share out of 2400")
	cmd.Flags().StringVar(&rel.TenureContractType, "contract", "", "tenure contract type")
	cmd.Flags().StringVar(&rel.RelationNotes, "notes", "", "free-form notes")
	return cmd
}

func relationListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <unit-id>",
		Short: "List the relations of a unit with evidence counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Tenure.RelationsOfUnit(cmdContext(), args[0])
			if err := resultErr(res); err != nil {
				return err
			}
			if len(res.Data) == 0 {
				fmt.Println("No relations found")
				return nil
			}
			for _, r := range res.Data {
				rel := r.Relation
				share := ""
				if rel.OwnershipShare > 0 {
					share = fmt.Sprintf("  share %d/2400", rel.OwnershipShare)
				}
				fmt.Printf("%s  %-9s person=%s  %s  evidence=%d%s\n",
					rel.RelationID, rel.RelationType, rel.PersonID,
					rel.VerificationStatus, r.EvidenceCount, share)
			}
			return nil
		},
	}
}

func relationVerifyCmd(app *App) *cobra.Command {
	var status, by string

	cmd := &cobra.Command{
		Use:   "verify <relation-id>",
		Short: "Mark a relation verified or rejected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Tenure.VerifyRelation(cmdContext(), args[0], status, by)
			if err := resultErr(res); err != nil {
				return err
			}
			printOutcome(res)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "verified", "verified or rejected")
	cmd.Flags().StringVar(&by, "by", "", "acting user")
	return cmd
}

func relationEvidenceCmd(app *App) *cobra.Command {
	var ev models.Evidence

	cmd := &cobra.Command{
		Use:   "evidence <relation-id>",
		Short: "Attach evidence to a relation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev.RelationID = args[0]
			res := app.Tenure.AttachEvidence(cmdContext(), ev)
			if err := resultErr(res); err != nil {
				return err
			}
			printOutcome(res)
			fmt.Printf("  ID: %s\n", res.Data.EvidenceID)
			return nil
		},
	}

	cmd.Flags().StringVar(&ev.EvidenceType, "type", "", "document, witness, community, other")
	cmd.Flags().StringVar(&ev.EvidenceDescription, "description", "", "what the evidence shows")
	cmd.Flags().StringVar(&ev.ReferenceNumber, "reference", "", "document reference number")
	return cmd
}

func householdsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "households",
		Short: "Manage household occupancy records",
	}
	cmd.AddCommand(householdCreateCmd(app))
	cmd.AddCommand(householdListCmd(app))
	return cmd
}

func householdCreateCmd(app *App) *cobra.Command {
	var h models.Household

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a household record for a unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Tenure.CreateHousehold(cmdContext(), h)
			if err := resultErr(res); err != nil {
				return err
			}
			printOutcome(res)
			fmt.Printf("  ID: %s\n", res.Data.HouseholdID)
			return nil
		},
	}

	cmd.Flags().StringVar(&h.UnitID, "unit", "", "unit ID")
	cmd.Flags().StringVar(&h.MainOccupantID, "occupant", "", "main occupant person ID")
	cmd.Flags().StringVar(&h.MainOccupantName, "occupant-name", "", "main occupant name when no person is linked")
	cmd.Flags().IntVar(&h.OccupancySize, "size", 0, "number of occupants")
	cmd.Flags().StringVar(&h.OccupancyType, "type", "", "owner, tenant, guest")
	cmd.Flags().StringVar(&h.OccupancyNature, "nature", "", "permanent, temporary, seasonal")
	cmd.Flags().Float64Var(&h.MonthlyRent, "rent", 0, "monthly rent")
	return cmd
}

func householdListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <unit-id>",
		Short: "List the households of a unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Tenure.HouseholdsOfUnit(cmdContext(), args[0])
			if err := resultErr(res); err != nil {
				return err
			}
			if len(res.Data) == 0 {
				fmt.Println("No households found")
				return nil
			}
			for _, h := range res.Data {
				occupant := h.MainOccupantID
				if occupant == "" {
					occupant = h.MainOccupantName
				}
				fmt.Printf("%s  %-8s size=%d  occupant=%s\n",
					h.HouseholdID, h.OccupancyType, h.OccupancySize, occupant)
			}
			return nil
		},
	}
}
