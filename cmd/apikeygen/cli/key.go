package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Latfiansya/198-APIKeyGenerator/internal/metrics"
	"github.com/Latfiansya/198-APIKeyGenerator/internal/service"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "key",
		Aliases: []string{"apikey"},
		Short:   "Manage API keys",
		Long:    "Create, list, and check API keys without going through the HTTP server.",
	}

	cmd.AddCommand(newKeyCreateCmd())
	cmd.AddCommand(newKeyListCmd())
	cmd.AddCommand(newKeyCheckCmd())

	return cmd
}

// newKeyService wires a KeyService over the configured store for CLI use.
func newKeyService() (*service.KeyService, func() error, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewKeyService(st, metrics.New(nil), logger), st.Close, nil
}

// ---------- key create ----------

func newKeyCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new API key",
		Long:  "Generate a new opaque API key and store it. The key is printed once.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyCreate()
		},
	}
	return cmd
}

func runKeyCreate() error {
	keys, closeStore, err := newKeyService()
	if err != nil {
		return err
	}
	defer closeStore()

	secret, err := keys.Generate(context.Background())
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	fmt.Println("API key created:")
	fmt.Println()
	fmt.Printf("  Key: %s\n", secret)
	fmt.Println()
	return nil
}

// ---------- key list ----------

func newKeyListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runKeyList(jsonOutput bool) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	keys, err := st.ListAPIKeys(context.Background())
	if err != nil {
		return fmt.Errorf("list api keys: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(keys)
	}

	if len(keys) == 0 {
		fmt.Println("No API keys yet. Use 'apikeygen key create' to create one.")
		return nil
	}

	fmt.Printf("%-6s %-40s %-20s\n", "ID", "KEY", "CREATED")
	fmt.Printf("%-6s %-40s %-20s\n", "--", "---", "-------")
	for _, k := range keys {
		fmt.Printf("%-6d %-40s %-20s\n", k.ID, k.Key, k.CreatedAt.Format(time.RFC3339))
	}

	return nil
}

// ---------- key check ----------

func newKeyCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <key>",
		Short: "Check an API key",
		Long:  "Validate a key against the store. A valid key gets a usage event recorded, exactly as the HTTP endpoint does.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyCheck(args[0])
		},
	}
	return cmd
}

func runKeyCheck(secret string) error {
	keys, closeStore, err := newKeyService()
	if err != nil {
		return err
	}
	defer closeStore()

	id, err := keys.Validate(context.Background(), secret)
	if err != nil {
		if errors.Is(err, service.ErrInvalidKey) {
			return fmt.Errorf("key is not valid")
		}
		return fmt.Errorf("check key: %w", err)
	}

	fmt.Printf("Key is valid (id %d). Usage recorded.\n", id)
	return nil
}
