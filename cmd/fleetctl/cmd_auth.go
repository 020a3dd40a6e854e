package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"fleetdash/internal/domain/auth"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with phone and password",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored login",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.session.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		u := cli.session.User()
		if u == nil {
			return fmt.Errorf("not logged in")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s  %s\n",
			avatar(u.Name(), u.Email), u.Name(), u.Phone, badge(string(u.Role)))
		return nil
	},
}

var (
	authPhone    string
	authPassword string
	regName      string
	regEmail     string
	regLicense   string
	regExpiry    string
)

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&authPhone, "phone", "", "Account phone number")
		c.Flags().StringVar(&authPassword, "password", "", "Password (prompted when omitted)")
	}
	registerCmd.Flags().StringVar(&regName, "name", "", "Full name")
	registerCmd.Flags().StringVar(&regEmail, "email", "", "Email address")
	registerCmd.Flags().StringVar(&regLicense, "license", "", "Driving license number")
	registerCmd.Flags().StringVar(&regExpiry, "license-expiry", "", "License expiry (YYYY-MM-DD)")
	registerCmd.MarkFlagRequired("name")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("license")
}

func runLogin(cmd *cobra.Command, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	phone := authPhone
	if phone == "" {
		phone = prompt(in, "Phone: ")
	}
	password := authPassword
	if password == "" {
		password = prompt(in, "Password: ")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	result := cli.session.Login(ctx, &auth.LoginRequest{Phone: phone, Password: password})
	if !result.Success {
		return fmt.Errorf("%s", result.Message)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s.\n", cli.session.User().Name())
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	phone := authPhone
	if phone == "" {
		phone = prompt(in, "Phone: ")
	}
	password := authPassword
	confirm := authPassword
	if password == "" {
		password = prompt(in, "Password: ")
		confirm = prompt(in, "Confirm password: ")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*timeout)
	defer cancel()

	result := cli.session.RegisterAndLogin(ctx, &auth.RegisterRequest{
		Name:            regName,
		Phone:           phone,
		Email:           regEmail,
		LicenseNumber:   regLicense,
		LicenseExpiry:   regExpiry,
		Password:        password,
		ConfirmPassword: confirm,
	})
	if !result.Success {
		return fmt.Errorf("%s", result.Message)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	return nil
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Fprint(os.Stderr, label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}
