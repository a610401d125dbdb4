// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tomtom215/shutterfeed/internal/client"
)

var userCmd = &cobra.Command{
	Use:     "user",
	Aliases: []string{"users"},
	Short:   "Profiles, posts and follow lists",
}

var userShowCmd = &cobra.Command{
	Use:   "show <account-id>",
	Short: "Show a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserShow,
}

var userPostsCmd = &cobra.Command{
	Use:   "posts <account-id>",
	Short: "List an account's posts",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserPosts,
}

var userFollowersCmd = &cobra.Command{
	Use:   "followers <account-id>",
	Short: "List followers",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserFollowers,
}

var userFollowingCmd = &cobra.Command{
	Use:   "following <account-id>",
	Short: "List followed accounts",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserFollowing,
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find accounts by handle or display name",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	userPostsCmd.Flags().IntVar(&pageFlag, "page", 1, "Page number")
	userPostsCmd.Flags().IntVar(&limitFlag, "limit", 0, "Posts per page (server default when 0)")

	userCmd.AddCommand(userShowCmd, userPostsCmd, userFollowersCmd, userFollowingCmd)
	RootCmd.AddCommand(userCmd, searchCmd)
}

func runUserShow(cmd *cobra.Command, args []string) error {
	r, err := newReconciler()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	p, err := r.LoadProfile(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", color.New(color.Bold).Sprint("@"+p.Handle), p.DisplayName)
	if p.Bio != "" {
		fmt.Println(p.Bio)
	}
	fmt.Printf("%d posts  %d followers  %d following\n", p.PostsCount, p.FollowersCount, p.FollowingCount)
	switch {
	case p.IsOwnProfile:
		fmt.Println(color.New(color.FgHiCyan).Sprint("This is you"))
	case p.IsFollowing:
		fmt.Println(color.New(color.FgHiGreen).Sprint("Following"))
	}
	return nil
}

func runUserPosts(cmd *cobra.Command, args []string) error {
	r, err := newReconciler()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	result, err := r.LoadUserPosts(ctx, args[0], pageFlag, limitFlag)
	if err != nil {
		return err
	}
	renderPosts(os.Stdout, r.Store().View(client.UserView(args[0])))
	renderPagination(os.Stdout, result.Pagination)
	return nil
}

func runUserFollowers(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	accounts, err := c.Followers(ctx, args[0])
	if err != nil {
		return err
	}
	renderAccounts(os.Stdout, accounts)
	return nil
}

func runUserFollowing(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	accounts, err := c.Following(ctx, args[0])
	if err != nil {
		return err
	}
	renderAccounts(os.Stdout, accounts)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	r, err := newReconciler()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	accounts, err := r.Search(ctx, args[0])
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Println("No accounts found.")
		return nil
	}
	renderAccounts(os.Stdout, accounts)
	return nil
}
