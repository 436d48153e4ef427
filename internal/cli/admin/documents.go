package admin

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/spf13/cobra"
)

func DocumentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Manage knowledge base documents",
	}

	cmd.PersistentFlags().String("app", "", "Tenant app (sabi, trace or katsu)")
	_ = cmd.MarkPersistentFlagRequired("app")

	cmd.AddCommand(documentsUploadCmd())
	cmd.AddCommand(documentsListCmd())

	return cmd
}

func documentsUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.txt>...",
		Short: "Upload .txt documents to a tenant's knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := tenantFlag(cmd)
			if err != nil {
				return err
			}

			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				doc, err := a.uploads.Upload(cmd.Context(), tenant, filepath.Base(path), content)
				if err != nil {
					return fmt.Errorf("upload %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s to %s\n", doc.Name, tenant.DocumentFolder())
			}
			return nil
		},
	}
}

func documentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List a tenant's knowledge base documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := tenantFlag(cmd)
			if err != nil {
				return err
			}

			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			docs, err := a.uploads.List(cmd.Context(), tenant)
			if err != nil {
				return fmt.Errorf("failed to list documents: %w", err)
			}
			for _, doc := range docs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d bytes\n", doc.Name, len(doc.Content))
			}
			return nil
		},
	}
}

func tenantFlag(cmd *cobra.Command) (domain.Tenant, error) {
	app, _ := cmd.Flags().GetString("app")
	tenant, err := domain.ParseTenant(app)
	if err != nil {
		return "", fmt.Errorf("unknown app %q", app)
	}
	return tenant, nil
}
