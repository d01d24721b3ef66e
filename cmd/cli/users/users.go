package users

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/crucial707/user-api/cmd/cli/config"
	"github.com/crucial707/user-api/cmd/cli/output"
)

// ==========================
// CLI Command Init
// ==========================

// AddCommands attaches the users command tree to rootCmd.
func AddCommands(rootCmd *cobra.Command) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}

	usersCmd.AddCommand(
		listUsersCmd(),
		getUserCmd(),
		createUserCmd(),
		updateUserCmd(),
		deleteUserCmd(),
	)

	rootCmd.AddCommand(usersCmd)
}

// ==========================
// LIST
// ==========================
func listUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := client(cmd).List(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return output.PrintJSON(cmd.OutOrStdout(), users)
			}
			rows := make([][]interface{}, 0, len(users))
			for _, u := range users {
				rows = append(rows, []interface{}{u.ID, u.Username})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Username"}, rows)
			return nil
		},
	}
	addJSONFlag(cmd)
	return cmd
}

// ==========================
// GET
// ==========================
func getUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u, err := client(cmd).Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printUser(cmd, u)
		},
	}
	addJSONFlag(cmd)
	return cmd
}

// ==========================
// CREATE
// ==========================
func createUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [username]",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := client(cmd).Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printUser(cmd, u)
		},
	}
	addJSONFlag(cmd)
	return cmd
}

// ==========================
// UPDATE
// ==========================
func updateUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [id] [username]",
		Short: "Rename a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u, err := client(cmd).Update(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return printUser(cmd, u)
		},
	}
	addJSONFlag(cmd)
	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := client(cmd).Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %d deleted.\n", id)
			return nil
		},
	}
}

// ==========================
// Helpers
// ==========================

// client uses --api-url when the root flag is present, otherwise USER_API_URL or the default.
func client(cmd *cobra.Command) *Client {
	if f := cmd.Flag("api-url"); f != nil && f.Value.String() != "" {
		return NewClient(f.Value.String())
	}
	return NewClient(config.APIURL())
}

func addJSONFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "print raw JSON instead of a table")
}

func jsonOutput(cmd *cobra.Command) bool {
	f := cmd.Flag("json")
	return f != nil && f.Value.String() == "true"
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

func printUser(cmd *cobra.Command, u User) error {
	if jsonOutput(cmd) {
		return output.PrintJSON(cmd.OutOrStdout(), u)
	}
	output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Username"}, [][]interface{}{{u.ID, u.Username}})
	return nil
}
