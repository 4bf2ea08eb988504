package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plankhq/plank/internal/model"
	"github.com/plankhq/plank/internal/store"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage API keys",
		Long:  "Create, list, and revoke the API keys that authenticate requests from outside your machine and LAN.",
	}

	cmd.AddCommand(newKeyCreateCmd())
	cmd.AddCommand(newKeyListCmd())
	cmd.AddCommand(newKeyRevokeCmd())

	return cmd
}

// ---------- key create ----------

func newKeyCreateCmd() *cobra.Command {
	var (
		label      string
		ownerEmail string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new API key",
		Example: `  plank key create --label ci-bot
  plank key create --label laptop --owner dev@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyCreate(label, ownerEmail)
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Human-readable label for the key (required)")
	cmd.Flags().StringVar(&ownerEmail, "owner", "", "Email of the user the key acts as")
	cmd.MarkFlagRequired("label")

	return cmd
}

func runKeyCreate(label, ownerEmail string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	var ownerID *int64
	if ownerEmail != "" {
		user, err := st.GetUserByEmail(ctx, ownerEmail)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("user %q not found", ownerEmail)
			}
			return fmt.Errorf("look up owner: %w", err)
		}
		ownerID = &user.ID
	}

	// Generate 32 random bytes, hex encode, prefix with "plank_"
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate random key: %w", err)
	}
	rawKey := "plank_" + hex.EncodeToString(randomBytes)

	apiKey := &model.APIKey{
		KeyHash:     store.HashAPIKey(rawKey),
		KeyPrefix:   rawKey[:14],
		Label:       label,
		OwnerUserID: ownerID,
		IsActive:    true,
	}

	if err := st.CreateAPIKey(ctx, apiKey); err != nil {
		return fmt.Errorf("create api key: %w", err)
	}

	fmt.Println("API Key created:")
	fmt.Println()
	fmt.Printf("  Key:   %s\n", rawKey)
	fmt.Printf("  Label: %s\n", label)
	if ownerEmail != "" {
		fmt.Printf("  Owner: %s\n", ownerEmail)
	}
	fmt.Println()
	fmt.Println("  Save this key now - it cannot be retrieved again.")
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

	ctx := context.Background()

	keys, err := st.ListAPIKeys(ctx)
	if err != nil {
		return fmt.Errorf("list api keys: %w", err)
	}

	// Build a user ID -> email map for display
	users, err := st.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	emails := make(map[int64]string, len(users))
	for _, u := range users {
		emails[u.ID] = u.Email
	}

	type keyRow struct {
		ID     int64  `json:"id"`
		Prefix string `json:"prefix"`
		Label  string `json:"label"`
		Owner  string `json:"owner"`
		Active bool   `json:"active"`
	}

	rows := make([]keyRow, len(keys))
	for i, k := range keys {
		owner := ""
		if k.OwnerUserID != nil {
			owner = emails[*k.OwnerUserID]
			if owner == "" {
				owner = fmt.Sprintf("user:%d", *k.OwnerUserID)
			}
		}
		rows[i] = keyRow{
			ID:     k.ID,
			Prefix: k.KeyPrefix,
			Label:  k.Label,
			Owner:  owner,
			Active: k.IsActive,
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No API keys configured. Use 'plank key create' to create one.")
		return nil
	}

	fmt.Printf("%-6s %-16s %-24s %-24s %-8s\n", "ID", "PREFIX", "LABEL", "OWNER", "ACTIVE")
	fmt.Printf("%-6s %-16s %-24s %-24s %-8s\n", "--", "------", "-----", "-----", "------")
	for _, k := range rows {
		active := "yes"
		if !k.Active {
			active = "no"
		}
		fmt.Printf("%-6d %-16s %-24s %-24s %-8s\n", k.ID, k.Prefix, k.Label, k.Owner, active)
	}

	return nil
}

// ---------- key revoke ----------

func newKeyRevokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke <prefix>",
		Short: "Revoke an API key by its prefix",
		Long:  "Deactivate an API key, preventing any further authenticated requests using that key.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyRevoke(args[0])
		},
	}

	return cmd
}

func runKeyRevoke(prefix string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	keys, err := st.ListAPIKeys(ctx)
	if err != nil {
		return fmt.Errorf("list api keys: %w", err)
	}

	var matched *model.APIKey
	for i := range keys {
		if strings.HasPrefix(keys[i].KeyPrefix, prefix) {
			matched = &keys[i]
			break
		}
	}
	if matched == nil {
		return fmt.Errorf("no API key found with prefix %q", prefix)
	}

	if err := st.RevokeAPIKey(ctx, matched.ID); err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}

	fmt.Printf("Revoked API key with prefix %q\n", matched.KeyPrefix)
	return nil
}
