package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trrcms/trrcms/internal/controllers"
	"github.com/trrcms/trrcms/internal/models"
	"github.com/trrcms/trrcms/internal/result"
	"github.com/trrcms/trrcms/internal/store"
)

func claimsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claims",
		Short: "Manage tenure-rights claims",
	}

	cmd.AddCommand(claimCreateCmd(app))
	cmd.AddCommand(claimListCmd(app))
	cmd.AddCommand(claimShowCmd(app))
	cmd.AddCommand(claimStatusCmds(app)...)
	cmd.AddCommand(claimDeleteCmd(app))
	cmd.AddCommand(claimHistoryCmd(app))
	cmd.AddCommand(claimStatsCmd(app))
	return cmd
}

func claimCreateCmd(app *App) *cobra.Command {
	var input controllers.ClaimInput
	var personIDs []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft claim",
		RunE: func(cmd *cobra.Command, args []string) error {
			input.PersonIDs = personIDs
			res := app.Claims.Create(cmdContext(), input)
			if err := resultErr(res); err != nil {
				return err
			}
			printOutcome(res)
			fmt.Printf("  UUID:        %s\n", res.Data.ClaimUUID)
			fmt.Printf("  Case number: %s\n", res.Data.CaseNumber)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.UnitID, "unit", "", "property unit ID the claim is over")
	cmd.Flags().StringSliceVar(&personIDs, "person", nil, "claimant person ID (repeatable)")
	cmd.Flags().StringVar(&input.ClaimType, "type", "", "claim type: ownership, occupancy, tenancy")
	cmd.Flags().StringVar(&input.Priority, "priority", "", "priority: low, normal, high, urgent")
	cmd.Flags().StringVar(&input.Source, "source", "", "claim source")
	cmd.Flags().StringVar(&input.Notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&input.CreatedBy, "by", "", "acting user")
	return cmd
}

func claimListCmd(app *App) *cobra.Command {
	var filter store.ClaimFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List claims",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Claims.List(cmdContext(), filter)
			if err := resultErr(res); err != nil {
				return err
			}
			if len(res.Data) == 0 {
				fmt.Println("No claims found")
				return nil
			}
			for _, c := range res.Data {
				fmt.Printf("%s  %-12s  unit=%s  %s\n",
					c.CaseNumber, c.CaseStatus, c.UnitID, c.ClaimUUID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Status, "status", "", "filter by status")
	cmd.Flags().StringVar(&filter.ClaimType, "type", "", "filter by claim type")
	cmd.Flags().StringVar(&filter.Priority, "priority", "", "filter by priority")
	cmd.Flags().StringVar(&filter.UnitID, "unit", "", "filter by unit ID")
	cmd.Flags().StringVar(&filter.AssignedTo, "assigned", "", "filter by assignee")
	cmd.Flags().StringVar(&filter.Search, "search", "", "search case number and notes")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum rows")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "rows to skip")
	return cmd
}

func claimShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <claim-uuid>",
		Short: "Show one claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Claims.Get(cmdContext(), args[0])
			if err := resultErr(res); err != nil {
				return err
			}
			printClaim(res.Data)

			allowed := app.Claims.AllowedTransitions(cmdContext(), args[0])
			if allowed.Success && len(allowed.Data) > 0 {
				fmt.Printf("Allowed transitions: %s\n", strings.Join(allowed.Data, ", "))
			}
			return nil
		},
	}
}

func printClaim(c models.Claim) {
	fmt.Printf("Claim %s (%s)\n", c.CaseNumber, c.ClaimUUID)
	fmt.Printf("  Status:    %s / %s\n", c.StatusDisplay(), c.StatusDisplayAr())
	fmt.Printf("  Type:      %s, priority %s\n", c.ClaimType, c.Priority)
	fmt.Printf("  Unit:      %s\n", c.UnitID)
	fmt.Printf("  Claimants: %s\n", strings.Join(c.PersonIDList(), ", "))
	if c.AssignedTo != "" {
		fmt.Printf("  Assigned:  %s\n", c.AssignedTo)
	}
	if c.SubmissionDate != nil {
		fmt.Printf("  Submitted: %s\n", c.SubmissionDate.Format("2006-01-02 15:04"))
	}
	if c.DecisionDate != nil {
		fmt.Printf("  Decided:   %s\n", c.DecisionDate.Format("2006-01-02 15:04"))
	}
	if c.RejectionReason != "" {
		fmt.Printf("  Rejection: %s\n", c.RejectionReason)
	}
	if c.Notes != "" {
		fmt.Printf("  Notes:     %s\n", c.Notes)
	}
}

// claimStatusCmds builds one subcommand per workflow action.
func claimStatusCmds(app *App) []*cobra.Command {
	var actor, reason, notes string

	submit := &cobra.Command{
		Use:   "submit <claim-uuid>",
		Short: "Submit a draft claim for review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(app.Claims.Submit(cmdContext(), args[0], actor))
		},
	}
	review := &cobra.Command{
		Use:   "review <claim-uuid>",
		Short: "Move a claim into review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(app.Claims.StartReview(cmdContext(), args[0], actor))
		},
	}
	approve := &cobra.Command{
		Use:   "approve <claim-uuid>",
		Short: "Approve a claim under review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(app.Claims.Approve(cmdContext(), args[0], actor, notes))
		},
	}
	reject := &cobra.Command{
		Use:   "reject <claim-uuid>",
		Short: "Reject a claim under review (a reason is required)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(app.Claims.Reject(cmdContext(), args[0], actor, reason))
		},
	}
	pending := &cobra.Command{
		Use:   "pend <claim-uuid>",
		Short: "Park a claim as pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(app.Claims.MarkPending(cmdContext(), args[0], actor))
		},
	}
	cancel := &cobra.Command{
		Use:   "cancel <claim-uuid>",
		Short: "Cancel a claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(app.Claims.Cancel(cmdContext(), args[0], actor))
		},
	}

	cmds := []*cobra.Command{submit, review, approve, reject, pending, cancel}
	for _, c := range cmds {
		c.Flags().StringVar(&actor, "by", "", "acting user")
	}
	approve.Flags().StringVar(&notes, "notes", "", "review notes")
	reject.Flags().StringVar(&reason, "reason", "", "rejection reason")
	return cmds
}

func runTransition(res result.OperationResult[models.Claim]) error {
	if err := resultErr(res); err != nil {
		return err
	}
	printOutcome(res)
	fmt.Printf("  Status: %s\n", res.Data.CaseStatus)
	return nil
}

func claimDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <claim-uuid>",
		Short: "Delete a draft or cancelled claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Claims.Delete(cmdContext(), args[0])
			if err := resultErr(res); err != nil {
				return err
			}
			printOutcome(res)
			return nil
		},
	}
}

func claimHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history <claim-uuid>",
		Short: "Show the audit history of a claim, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Claims.History(cmdContext(), args[0])
			if err := resultErr(res); err != nil {
				return err
			}
			if len(res.Data) == 0 {
				fmt.Println("No history recorded")
				return nil
			}
			for _, entry := range res.Data {
				fmt.Printf("%s  %-20s  by %s\n",
					entry.ChangedAt.Format("2006-01-02 15:04:05"),
					entry.ChangeReason, entry.ChangedBy)
			}
			return nil
		},
	}
}

func claimStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show claim counts by status, type, and priority",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Claims.Statistics(cmdContext())
			if err := resultErr(res); err != nil {
				return err
			}
			stats := res.Data
			fmt.Printf("Total claims: %d\n", stats.Total)
			if stats.Conflicts > 0 {
				fmt.Printf("With conflicts: %d\n", stats.Conflicts)
			}
			printCounts("By status", stats.ByStatus)
			printCounts("By type", stats.ByType)
			printCounts("By priority", stats.ByPriority)
			return nil
		},
	}
}

func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("%s:\n", title)
	for _, k := range keys {
		fmt.Printf("  %-14s %d\n", k, counts[k])
	}
}
