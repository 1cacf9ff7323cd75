package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trrcms/trrcms/internal/result"
)

// cmdContext returns the context commands run under. Operations are local or
// single-request; cancellation comes from the process signal handler killing
// the process, so Background is enough here.
func cmdContext() context.Context {
	return context.Background()
}

// NewRootCmd builds the command tree. The App is wired lazily so that help
// and completion do not touch the database.
func NewRootCmd(version string) *cobra.Command {
	app := &App{}

	root := &cobra.Command{
		Use:     "trrcms",
		Short:   "Tenure rights claims management",
		Version: version,
		Long: `TRRCMS manages tenure-rights claims over property units: claim intake and
review workflow, claimant records with duplicate detection, and cached access
to the central registry of buildings, units, and field surveys.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.Init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
		},
	}

	root.AddCommand(claimsCmd(app))
	root.AddCommand(personsCmd(app))
	root.AddCommand(buildingsCmd(app))
	root.AddCommand(unitsCmd(app))
	root.AddCommand(relationsCmd(app))
	root.AddCommand(householdsCmd(app))
	root.AddCommand(duplicatesCmd(app))
	root.AddCommand(usersCmd(app))
	root.AddCommand(surveysCmd(app))
	root.AddCommand(migrateCmd(app))
	root.AddCommand(serveMetricsCmd(app))
	root.AddCommand(healthCmd(app))

	return root
}

// resultErr converts a failed operation result into a command error carrying
// the display message and the itemized errors.
func resultErr[T any](res result.OperationResult[T]) error {
	if res.Success {
		return nil
	}
	msg := res.Message
	if len(res.Errors) > 0 {
		msg += "\n  - " + strings.Join(res.Errors, "\n  - ")
	}
	return errors.New(msg)
}

// printOutcome prints the success message of a completed operation, Arabic
// alongside English when both are set.
func printOutcome[T any](res result.OperationResult[T]) {
	if res.Message == "" {
		return
	}
	if res.MessageAr != "" && res.MessageAr != res.Message {
		fmt.Printf("✓ %s | %s\n", res.Message, res.MessageAr)
		return
	}
	fmt.Printf("✓ %s\n", res.Message)
}
