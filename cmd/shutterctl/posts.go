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

var (
	pageFlag  int
	limitFlag int
	allPages  bool
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show posts from accounts you follow",
	Long: `Show posts from accounts you follow, newest first.
An account that follows nobody sees every post.`,
	Args: cobra.NoArgs,
	RunE: runFeed,
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Create, show or delete posts",
}

var postCreateCmd = &cobra.Command{
	Use:   "create <image-url> [caption]",
	Short: "Publish a post",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runPostCreate,
}

var postShowCmd = &cobra.Command{
	Use:   "show <post-id>",
	Short: "Show a post with its comments",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostShow,
}

var postDeleteCmd = &cobra.Command{
	Use:     "delete <post-id>",
	Aliases: []string{"rm"},
	Short:   "Delete one of your posts",
	Args:    cobra.ExactArgs(1),
	RunE:    runPostDelete,
}

func init() {
	feedCmd.Flags().IntVar(&pageFlag, "page", 1, "Page number")
	feedCmd.Flags().IntVar(&limitFlag, "limit", 0, "Posts per page (server default when 0)")
	feedCmd.Flags().BoolVar(&allPages, "all", false, "Fetch every page")

	postCmd.AddCommand(postCreateCmd, postShowCmd, postDeleteCmd)
	RootCmd.AddCommand(feedCmd, postCmd)
}

func runFeed(cmd *cobra.Command, _ []string) error {
	r, err := newReconciler()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if allPages {
		for more := true; more; {
			if more, err = r.LoadMoreFeed(ctx, limitFlag); err != nil {
				return err
			}
		}
	} else if _, err := r.LoadFeed(ctx, pageFlag, limitFlag); err != nil {
		return err
	}

	renderPosts(os.Stdout, r.Store().View(client.FeedView))
	renderPagination(os.Stdout, r.Store().ViewState(client.FeedView).Pagination)
	return nil
}

func runPostCreate(cmd *cobra.Command, args []string) error {
	r, err := newReconciler()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	caption := ""
	if len(args) == 2 {
		caption = args[1]
	}
	post, err := r.CreatePost(ctx, args[0], caption)
	if err != nil {
		return fmt.Errorf("create post failed: %w", err)
	}
	fmt.Printf("Posted %s\n", color.New(color.Bold, color.FgHiGreen).Sprint(post.ID))
	return nil
}

func runPostShow(cmd *cobra.Command, args []string) error {
	r, err := newReconciler()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	post, err := r.LoadPost(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", color.New(color.Bold).Sprint("@"+post.Owner.Handle), age(post.CreatedAt))
	fmt.Println(post.ImageURL)
	if post.Caption != "" {
		fmt.Println(post.Caption)
	}
	fmt.Println(likeLabel(post.LikeCount, post.ViewerHasLiked))
	renderComments(os.Stdout, post.RecentComments)
	return nil
}

func runPostDelete(cmd *cobra.Command, args []string) error {
	r, err := newReconciler()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := r.DeletePost(ctx, args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Println("Deleted", args[0])
	return nil
}
