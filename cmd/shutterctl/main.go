// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

// Command shutterctl is a terminal client for a Shutterfeed server.
//
//	shutterctl login alice --password secret1
//	shutterctl feed --limit 20
//	shutterctl like <post-id>
//	shutterctl follow <account-id>
//
// The session token is saved under the user config directory after login
// and reused by later commands.
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := RootCmd.Execute(); err != nil {
		color.New(color.FgHiRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
