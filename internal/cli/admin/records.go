package admin

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/cloo-solutions/shopdesk/internal/repository"
	"github.com/cloo-solutions/shopdesk/internal/service"
	"github.com/spf13/cobra"
)

func RecordsCmd() *cobra.Command {
	kinds := make([]string, len(domain.RecordKinds))
	for i, k := range domain.RecordKinds {
		kinds[i] = string(k)
	}

	cmd := &cobra.Command{
		Use:       "records <kind>",
		Short:     "List sabi customer records",
		Long:      "List the customer records of one kind, newest first. Kinds: " + strings.Join(kinds, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE:      runRecords,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().IntP("limit", "n", 0, "Show at most this many records (0 for all)")

	return cmd
}

func runRecords(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	outputFormat, _ := cmd.Flags().GetString("output")
	limit, _ := cmd.Flags().GetInt("limit")

	kind, err := domain.ParseRecordKind(args[0])
	if err != nil {
		return fmt.Errorf("unknown record kind %q", args[0])
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

	records, err := service.NewRecordService(repository.NewRecordRepository(pool)).List(ctx, kind)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(records, "", "  ")
		fmt.Fprintln(out, string(jsonBytes))
		return nil
	}

	if len(records) == 0 {
		fmt.Fprintf(out, "No %s records\n", kind)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tDETAILS")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rec.ID, rec.UserName, rec.CreatedAt.Format(time.RFC3339), recordDetails(rec))
	}
	return w.Flush()
}

func recordDetails(rec *domain.ActionRecord) string {
	switch rec.Kind {
	case domain.RecordKindNewOrder:
		if rec.Address == "" {
			return rec.OrderDetails
		}
		return rec.OrderDetails + " -> " + rec.Address
	case domain.RecordKindReturnRequest:
		return rec.OrderNumber + ": " + rec.Reason
	case domain.RecordKindIssue:
		return rec.IssueDescription
	case domain.RecordKindCallback:
		return rec.PhoneNumber
	case domain.RecordKindTrackOrder:
		return rec.OrderNumber
	}
	return ""
}
