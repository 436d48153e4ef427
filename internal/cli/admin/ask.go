package admin

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/spf13/cobra"
)

// AskCmd routes one message through the chatbot without the HTTP server
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Answer a customer message locally",
		Long: `Classify a customer message and answer it exactly as POST /chatbot would.
Structured requests for sabi are written to the database.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().String("app", "sabi", "Tenant app (sabi, trace or katsu)")
	cmd.Flags().String("name", "", "Customer name recorded on structured requests")
	cmd.Flags().String("address", "", "Delivery address for orders")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, _ := cmd.Flags().GetString("app")
	name, _ := cmd.Flags().GetString("name")
	address, _ := cmd.Flags().GetString("address")
	outputFormat, _ := cmd.Flags().GetString("output")

	tenant, err := domain.ParseTenant(app)
	if err != nil {
		return fmt.Errorf("unknown app %q", app)
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	answer, err := a.chat.RouteQuery(ctx, domain.NewMessage(tenant, name, strings.Join(args, " "), address))
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	if outputFormat == "json" {
		jsonBytes, _ := json.MarshalIndent(map[string]string{"answer": answer}, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
