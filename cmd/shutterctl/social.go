// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tomtom215/shutterfeed/internal/client"
)

var likeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Like a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLikeToggle(cmd, args[0], (*client.Reconciler).Like)
	},
}

var unlikeCmd = &cobra.Command{
	Use:   "unlike <post-id>",
	Short: "Remove your like from a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLikeToggle(cmd, args[0], (*client.Reconciler).Unlike)
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <post-id> <text>",
	Short: "Comment on a post",
	Args:  cobra.ExactArgs(2),
	RunE:  runComment,
}

var uncommentCmd = &cobra.Command{
	Use:   "uncomment <post-id> <comment-id>",
	Short: "Delete a comment",
	Args:  cobra.ExactArgs(2),
	RunE:  runUncomment,
}

var followCmd = &cobra.Command{
	Use:   "follow <account-id>",
	Short: "Follow an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFollowToggle(cmd, args[0], (*client.Reconciler).Follow)
	},
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow <account-id>",
	Short: "Unfollow an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFollowToggle(cmd, args[0], (*client.Reconciler).Unfollow)
	},
}

func init() {
	RootCmd.AddCommand(likeCmd, unlikeCmd, commentCmd, uncommentCmd, followCmd, unfollowCmd)
}

type mutation func(r *client.Reconciler, ctx context.Context, id string) *client.Op

func runLikeToggle(cmd *cobra.Command, postID string, m mutation) error {
	r, err := newReconciler()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if _, err := r.LoadPost(ctx, postID); err != nil {
		return err
	}
	if err := m(r, ctx, postID).Wait(ctx); err != nil {
		return err
	}
	post, _ := r.Store().Post(postID)
	fmt.Printf("%s  %s\n", post.ID, likeLabel(post.LikeCount, post.ViewerHasLiked))
	return nil
}

func runFollowToggle(cmd *cobra.Command, accountID string, m mutation) error {
	r, err := newReconciler()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if _, err := r.LoadProfile(ctx, accountID); err != nil {
		return err
	}
	if err := m(r, ctx, accountID).Wait(ctx); err != nil {
		return err
	}
	p, _ := r.Store().Profile(accountID)
	state := "not following"
	if p.IsFollowing {
		state = color.New(color.FgHiGreen).Sprint("following")
	}
	fmt.Printf("@%s  %s  %d followers\n", p.Handle, state, p.FollowersCount)
	return nil
}

func runComment(cmd *cobra.Command, args []string) error {
	r, err := newReconciler()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	comment, err := r.AddComment(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("comment failed: %w", err)
	}
	fmt.Printf("Commented %s\n", color.New(color.Bold).Sprint(comment.ID))
	return nil
}

func runUncomment(cmd *cobra.Command, args []string) error {
	r, err := newReconciler()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := r.DeleteComment(ctx, args[0], args[1]); err != nil {
		return fmt.Errorf("delete comment failed: %w", err)
	}
	fmt.Println("Deleted comment", args[1])
	return nil
}
