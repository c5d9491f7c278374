package cmd

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/afoley587/coding-challenges-2025/user-directory/internal/client"
)

var (
	// server address
	clientServerAddr string

	// user fields
	userID      string
	userName    string
	userEmail   string
	currentName string

	// TLS flags
	insecure      bool
	tlsCA         string
	tlsClientCert string
	tlsClientKey  string
)

// Build DialConfig from CLI flags
func getDialConfig() client.DialConfig {
	return client.DialConfig{
		Address:    clientServerAddr,
		Insecure:   insecure,
		RootCA:     tlsCA,
		ClientCert: tlsClientCert,
		ClientKey:  tlsClientKey,
	}
}

// Wrapper to build a high-level client
func getClient() (*client.GRPCClient, error) {
	return client.NewClient(getDialConfig())
}

// Root client command
var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Interact with the gRPC server",
	Long:  "Commands for creating, retrieving, updating and listing users via the gRPC client.",
}

var putCmd = &cobra.Command{
	Use:   "put",
	Short: "Create a new user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if userName == "" || userEmail == "" {
			return errors.New("both --name and --email must be specified")
		}
		id := userID
		if id == "" {
			id = uuid.NewString()
		}

		c, err := getClient()
		if err != nil {
			return err
		}
		defer c.Close()
		msg, err := c.PutUser(cmd.Context(), id, userName, userEmail)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a user by UUID",
	RunE: func(cmd *cobra.Command, args []string) error {
		if userID == "" {
			return errors.New("--uuid must be specified")
		}
		c, err := getClient()
		if err != nil {
			return err
		}
		defer c.Close()

		user, err := c.GetUser(cmd.Context(), userID)
		if err != nil {
			return err
		}
		fmt.Printf("UUID: %s, Name: %s, Email: %s\n", userID, user.UserName, user.UserEmail)
		return nil
	},
}

var getIDCmd = &cobra.Command{
	Use:   "get-id",
	Short: "Get the UUID of a user by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		defer c.Close()

		id, err := c.GetUserID(cmd.Context(), userName)
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the name and/or email of a user by UUID",
	RunE: func(cmd *cobra.Command, args []string) error {
		if userID == "" {
			return errors.New("--uuid must be specified")
		}
		c, err := getClient()
		if err != nil {
			return err
		}
		defer c.Close()

		res, err := c.UpdateUser(cmd.Context(), userID, userName, userEmail)
		if err != nil {
			return err
		}
		fmt.Println(res.Message)
		return nil
	},
}

var updateByNameCmd = &cobra.Command{
	Use:   "update-by-name",
	Short: "Update the name and/or email of a user by current name",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		defer c.Close()

		res, err := c.UpdateUserByName(cmd.Context(), currentName, userName, userEmail)
		if err != nil {
			return err
		}
		fmt.Println(res.Message)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		defer c.Close()

		users, err := c.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Printf("UUID: %s, Name: %s, Email: %s\n", u.UserUUID, u.UserName, u.UserEmail)
		}
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the user service is serving",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		defer c.Close()

		st, err := c.Health(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(st)
		return nil
	},
}

func init() {

	clientCmd.PersistentFlags().StringVarP(&clientServerAddr,
		"addr", "a", "127.0.0.1:50051", "Server address")

	clientCmd.PersistentFlags().BoolVar(
		&insecure, "insecure", false, "Use insecure gRPC (no TLS)")

	clientCmd.PersistentFlags().StringVar(
		&tlsCA, "tls-ca", "", "Path to root CA certificate")

	clientCmd.PersistentFlags().StringVar(
		&tlsClientCert, "tls-cert", "", "Path to client certificate for mTLS")

	clientCmd.PersistentFlags().StringVar(
		&tlsClientKey, "tls-key", "", "Path to client private key for mTLS")

	for _, c := range []*cobra.Command{putCmd, getCmd, updateCmd} {
		c.Flags().StringVarP(&userID, "uuid", "u", "", "UUID of the user")
	}

	for _, c := range []*cobra.Command{putCmd, getIDCmd, updateCmd, updateByNameCmd} {
		c.Flags().StringVarP(&userName, "name", "n", "", "Name of the user")
	}

	for _, c := range []*cobra.Command{putCmd, updateCmd, updateByNameCmd} {
		c.Flags().StringVarP(&userEmail, "email", "e", "", "Email of the user")
	}

	updateByNameCmd.Flags().StringVar(&currentName, "current-name", "", "Current name of the user to update")

	clientCmd.AddCommand(putCmd, getCmd, getIDCmd, updateCmd, updateByNameCmd, listCmd, healthCmd)
	rootCmd.AddCommand(clientCmd)
}
