// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/shutterfeed/internal/client"
	"github.com/tomtom215/shutterfeed/internal/logging"
)

var (
	serverURL   string
	tokenFlag   string
	timeout     time.Duration
	verbose     bool
	sessionPath string
)

// RootCmd is the base command.
var RootCmd = &cobra.Command{
	Use:           "shutterctl [command] [flags]",
	Short:         "Shutterfeed: photo feed from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logging.Init(logging.Config{Level: level, Format: "console"})
	},
}

func init() {
	defaultURL := os.Getenv("SHUTTERFEED_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}

	RootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultURL, "Shutterfeed server URL (env SHUTTERFEED_URL)")
	RootCmd.PersistentFlags().StringVar(&tokenFlag, "token", os.Getenv("SHUTTERFEED_TOKEN"), "Session token (env SHUTTERFEED_TOKEN), overrides the saved session")
	RootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "Request timeout")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	RootCmd.PersistentFlags().StringVar(&sessionPath, "session-file", "", "Session file (default: <config dir>/shutterfeed/session.json)")
}

// savedSession is what login persists between invocations.
type savedSession struct {
	Server  string `json:"server"`
	Token   string `json:"token"`
	Handle  string `json:"handle"`
	Account string `json:"accountId"`
}

func sessionFile() (string, error) {
	if sessionPath != "" {
		return sessionPath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "shutterfeed", "session.json"), nil
}

func loadSession() (*savedSession, error) {
	path, err := sessionFile()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &savedSession{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s savedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", path, err)
	}
	return &s, nil
}

func storeSession(s *savedSession) error {
	path, err := sessionFile()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func clearSession() error {
	path, err := sessionFile()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// newClient builds a client with the flag token, or the saved one when it
// was issued by the same server.
func newClient() (*client.Client, error) {
	token := tokenFlag
	if token == "" {
		s, err := loadSession()
		if err != nil {
			return nil, err
		}
		if s.Server == serverURL {
			token = s.Token
		}
	}
	return client.New(client.Config{BaseURL: serverURL, Token: token, Timeout: timeout})
}

// newReconciler is newClient plus a fresh cache.
func newReconciler() (*client.Reconciler, error) {
	c, err := newClient()
	if err != nil {
		return nil, err
	}
	return client.NewReconciler(c, nil), nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
