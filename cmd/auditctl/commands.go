package main

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/auditkit/revision-service/internal/api/dto"
	"github.com/auditkit/revision-service/internal/audit"
	"github.com/auditkit/revision-service/internal/auth"
	"github.com/auditkit/revision-service/internal/config"
	"github.com/auditkit/revision-service/internal/domain"
)

var (
	tokenUserID int64
	tokenName   string
	tokenRole   string

	alertSearch   string
	dashboardName string
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token with the service's configured secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			role := domain.Role(tokenRole)
			if !role.Valid() {
				return fmt.Errorf("unknown role %q", tokenRole)
			}

			tm := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
			signed, expires, err := tm.GenerateToken(domain.Principal{
				UserID:     tokenUserID,
				CommonName: tokenName,
				Role:       role,
			})
			if err != nil {
				return err
			}
			if outputJSON {
				cmd.Printf("{\"token\":%q,\"expires_at\":%q}\n", signed, expires.Format(time.RFC3339))
				return nil
			}
			cmd.Println(signed)
			return nil
		},
	}
	cmd.Flags().Int64Var(&tokenUserID, "user-id", 1, "User id recorded on revisions")
	cmd.Flags().StringVar(&tokenName, "name", "", "Display name recorded on revisions")
	cmd.Flags().StringVar(&tokenRole, "role", string(domain.RoleViewer), "VIEWER, EDITOR or ADMIN")
	return cmd
}

func newTimelineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "timeline [entity] [id]",
		Short: "Show the revision history of a question or dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("entity type and id are required")
			}
			entityType, err := domain.ParseEntityType(args[0])
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[1])
			}

			var entries []dto.TimelineEntryResponse
			raw, err := getData(fmt.Sprintf("/api/%s/%d/revisions", entityType, id), nil, &entries)
			if err != nil {
				return err
			}
			if outputJSON {
				cmd.Println(string(raw))
				return nil
			}
			cmd.Printf("%s\n", renderTimeline(entries))
			return nil
		},
	}
}

func newAuditCmd() *cobra.Command {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "List notification audit tables",
	}

	alerts := &cobra.Command{
		Use:   "alerts",
		Short: "List active question alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if alertSearch != "" {
				query.Set("search", alertSearch)
			}
			return printView(cmd, "/api/admin/audit/alerts", query)
		},
	}
	alerts.Flags().StringVar(&alertSearch, "search", "", "Filter by question name")

	subscriptions := &cobra.Command{
		Use:   "subscriptions",
		Short: "List active dashboard subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if dashboardName != "" {
				query.Set("dashboard", dashboardName)
			}
			return printView(cmd, "/api/admin/audit/subscriptions", query)
		},
	}
	subscriptions.Flags().StringVar(&dashboardName, "dashboard", "", "Filter by dashboard name")

	auditCmd.AddCommand(alerts, subscriptions)
	return auditCmd
}

func printView(cmd *cobra.Command, path string, query url.Values) error {
	var view audit.View
	raw, err := getData(path, query, &view)
	if err != nil {
		return err
	}
	if outputJSON {
		cmd.Println(string(raw))
		return nil
	}
	cmd.Printf("%s\n", renderView(view))
	return nil
}
