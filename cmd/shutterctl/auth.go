// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tomtom215/shutterfeed/internal/auth"
)

var (
	password    string
	displayName string
)

var signupCmd = &cobra.Command{
	Use:   "signup <handle> <email>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(2),
	RunE:  runSignup,
}

var loginCmd = &cobra.Command{
	Use:   "login <email-or-handle>",
	Short: "Sign in",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the saved session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Show the signed-in account",
	Args:    cobra.NoArgs,
	RunE:    runWhoami,
}

func init() {
	signupCmd.Flags().StringVarP(&password, "password", "p", "", "Password (min 6 characters)")
	signupCmd.Flags().StringVar(&displayName, "name", "", "Display name")
	_ = signupCmd.MarkFlagRequired("password")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	_ = loginCmd.MarkFlagRequired("password")

	RootCmd.AddCommand(signupCmd, loginCmd, logoutCmd, whoamiCmd)
}

func runSignup(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	session, err := c.Signup(ctx, auth.SignupInput{
		Handle:      args[0],
		Email:       args[1],
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}
	return saveAndGreet(session)
}

func runLogin(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	session, err := c.Login(ctx, args[0], password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return saveAndGreet(session)
}

func saveAndGreet(session *auth.Session) error {
	if err := storeSession(&savedSession{
		Server:  serverURL,
		Token:   session.Token,
		Handle:  session.Account.Handle,
		Account: session.Account.ID,
	}); err != nil {
		return err
	}
	fmt.Printf("Signed in as %s (%s), session valid until %s\n",
		color.New(color.Bold, color.FgHiGreen).Sprint("@"+session.Account.Handle),
		session.Account.ID,
		session.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := c.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	if err := clearSession(); err != nil {
		return err
	}
	fmt.Println("Signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	me, err := c.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", color.New(color.Bold).Sprint("@"+me.Handle), me.DisplayName)
	fmt.Printf("id:    %s\nemail: %s\n", me.ID, me.Email)
	if me.Bio != "" {
		fmt.Printf("bio:   %s\n", me.Bio)
	}
	return nil
}
