package admin

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/cloo-solutions/shopdesk/internal/repository"
	"github.com/spf13/cobra"
)

func FeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "List customer ratings of chatbot answers",
		Args:  cobra.NoArgs,
		RunE:  runFeedback,
	}

	cmd.Flags().String("app", "", "Tenant app (sabi, trace or katsu)")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of ratings")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	_ = cmd.MarkFlagRequired("app")

	return cmd
}

func runFeedback(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")
	outputFormat, _ := cmd.Flags().GetString("output")

	tenant, err := tenantFlag(cmd)
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	pool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	items, err := repository.NewFeedbackRepository(pool).ListByTenant(ctx, tenant, limit)
	if err != nil {
		return fmt.Errorf("failed to list feedback: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(items, "", "  ")
		fmt.Fprintln(out, string(jsonBytes))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tRATING\tQUERY\tCOMMENT")
	for _, f := range items {
		rating := "-"
		if f.Positive {
			rating = "+"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.CreatedAt.Format(time.RFC3339), rating, f.Query, f.Comment)
	}
	return w.Flush()
}
