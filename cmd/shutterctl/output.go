// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/tomtom215/shutterfeed/internal/models"
)

const captionWidth = 40

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func age(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d.Hours())) + "h"
	default:
		return strconv.Itoa(int(d.Hours()/24)) + "d"
	}
}

func likeLabel(count int64, liked bool) string {
	label := strconv.FormatInt(count, 10)
	if liked {
		return color.New(color.FgHiRed).Sprint("♥ " + label)
	}
	return "♡ " + label
}

func renderPosts(w io.Writer, posts []models.EnrichedPost) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"ID", "Owner", "Age", "Likes", "Comments", "Caption"})
	for _, p := range posts {
		table.Append([]string{
			p.ID,
			"@" + p.Owner.Handle,
			age(p.CreatedAt),
			likeLabel(p.LikeCount, p.ViewerHasLiked),
			strconv.Itoa(len(p.RecentComments)),
			truncate(p.Caption, captionWidth),
		})
	}
	table.Render()
}

func renderAccounts(w io.Writer, accounts []models.PublicAccount) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"ID", "Handle", "Name"})
	for _, a := range accounts {
		table.Append([]string{a.ID, "@" + a.Handle, a.DisplayName})
	}
	table.Render()
}

func renderComments(w io.Writer, comments []models.EnrichedComment) {
	for _, c := range comments {
		fmt.Fprintf(w, "  %s %s  %s\n",
			color.New(color.Bold).Sprint("@"+c.Author.Handle),
			color.New(color.FgHiBlack).Sprint(age(c.CreatedAt)),
			c.Text)
	}
}

func renderPagination(w io.Writer, p models.Pagination) {
	if p.TotalPages == 0 {
		fmt.Fprintln(w, "Nothing here yet.")
		return
	}
	fmt.Fprintf(w, "Page %d of %d (%d total)", p.Page, p.TotalPages, p.TotalCount)
	if p.HasMore {
		fmt.Fprintf(w, ", next: --page %d", p.Page+1)
	}
	fmt.Fprintln(w)
}
