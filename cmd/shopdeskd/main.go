package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/shopdesk/internal/cli"
	"github.com/cloo-solutions/shopdesk/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "shopdeskd",
		Short:   "Shopdesk chatbot server and operator CLI",
		Long:    "Shopdesk answers retail chat messages for the sabi, trace and katsu apps",
		Version: admin.Version,
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.AskCmd())
	rootCmd.AddCommand(admin.RecordsCmd())
	rootCmd.AddCommand(admin.DocumentsCmd())
	rootCmd.AddCommand(admin.FeedbackCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
