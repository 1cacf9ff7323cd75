package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trrcms/trrcms/internal/services"
)

func duplicatesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "Detect and resolve duplicate claims and persons",
	}
	cmd.AddCommand(duplicateScanCmd(app))
	cmd.AddCommand(duplicateResolveCmd(app))
	cmd.AddCommand(duplicateHistoryCmd(app))
	return cmd
}

func duplicateScanCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [claims|persons|units]",
		Short: "Scan for unresolved duplicate groups",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity := "claims"
			if len(args) == 1 {
				entity = args[0]
			}

			groups, err := scanGroups(app, entity)
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Println("No duplicate groups found")
				return nil
			}
			for _, g := range groups {
				fmt.Printf("%-10s %s\n", g.EntityType, g.GroupKey)
				fmt.Printf("  Reason:  %s\n", g.Reason)
				fmt.Printf("  Records: %s\n", strings.Join(g.RecordIDs, ", "))
			}
			fmt.Printf("%d group(s)\n", len(groups))
			return nil
		},
	}
}

func scanGroups(app *App, entity string) ([]services.DuplicateGroup, error) {
	switch entity {
	case "claims":
		return app.Duplicates.ScanClaims(cmdContext())
	case "persons":
		return app.Duplicates.ScanPersons(cmdContext())
	case "units":
		return app.Duplicates.ScanUnits(cmdContext())
	default:
		return nil, fmt.Errorf("unknown entity %q, expected claims, persons, or units", entity)
	}
}

func duplicateResolveCmd(app *App) *cobra.Command {
	var action, master, justification, resolvedBy string

	cmd := &cobra.Command{
		Use:   "resolve <claims|persons|units> <group-key>",
		Short: "Resolve a duplicate group found by scan",
		Long: `Resolve a duplicate group by its scan key.

Actions:
  merge          merge person records into --master (persons only)
  keep-separate  record that the group is legitimate
  escalate       hand the group to a supervisor`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := scanGroups(app, args[0])
			if err != nil {
				return err
			}
			var group *services.DuplicateGroup
			for i := range groups {
				if groups[i].GroupKey == args[1] {
					group = &groups[i]
					break
				}
			}
			if group == nil {
				return fmt.Errorf("no unresolved group %q, run scan to list keys", args[1])
			}

			switch action {
			case "merge":
				res := app.Persons.Merge(cmdContext(), *group, master, justification, resolvedBy)
				if err := resultErr(res); err != nil {
					return err
				}
				printOutcome(res)
			case "keep-separate":
				if err := app.Duplicates.ResolveKeepSeparate(cmdContext(), *group, justification, resolvedBy); err != nil {
					return err
				}
				fmt.Printf("✓ Group %s kept separate\n", group.GroupKey)
			case "escalate":
				if err := app.Duplicates.Escalate(cmdContext(), *group, justification, resolvedBy); err != nil {
					return err
				}
				fmt.Printf("✓ Group %s escalated\n", group.GroupKey)
			default:
				return fmt.Errorf("unknown action %q", action)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&action, "action", "keep-separate", "merge, keep-separate, or escalate")
	cmd.Flags().StringVar(&master, "master", "", "surviving record for merge")
	cmd.Flags().StringVar(&justification, "why", "", "justification for the decision")
	cmd.Flags().StringVar(&resolvedBy, "by", "", "acting user")
	return cmd
}

func duplicateHistoryCmd(app *App) *cobra.Command {
	var entity string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past resolution decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolutions, err := app.Duplicates.History(cmdContext(), entity)
			if err != nil {
				return err
			}
			if len(resolutions) == 0 {
				fmt.Println("No resolutions recorded")
				return nil
			}
			for _, r := range resolutions {
				fmt.Printf("%s  %-14s %-8s %s\n",
					r.ResolvedAt.Format("2006-01-02 15:04"),
					r.ResolutionType, r.EntityType, r.GroupKey)
				if r.Justification != "" {
					fmt.Printf("  %s (by %s)\n", r.Justification, r.ResolvedBy)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&entity, "entity", "", "filter by entity type: claim or person")
	return cmd
}
