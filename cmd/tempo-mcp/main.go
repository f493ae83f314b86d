package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/reaver89/time-tracker/internal/config"
	"github.com/reaver89/time-tracker/internal/helpers"
	"github.com/reaver89/time-tracker/internal/logger"
	"github.com/reaver89/time-tracker/internal/repositories"
	"github.com/reaver89/time-tracker/internal/server"
	"github.com/reaver89/time-tracker/internal/services"
	"github.com/reaver89/time-tracker/internal/tools"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configFile string
	transport  string
	httpAddr   string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "tempo-mcp",
		Short: "tempo-mcp - Jira and Tempo time tracking tools for AI agents",
		Long: `tempo-mcp is an MCP server that lets an AI agent log work to Tempo,
list Jira issues and build timesheet reports for you and your team.

Run without a subcommand to serve MCP over stdio.`,
		Version:       server.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "Configuration file path (optional, environment variables take precedence)")
	addServeFlags(rootCmd)

	// Serve command
	var serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools",
		Long:  "Serve the MCP tools over stdio (default) or streamable HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	addServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)

	// Check command
	var checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Test the JIRA and Tempo credentials",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}
	rootCmd.AddCommand(checkCmd)

	// Whoami command
	var whoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Show the account the tools act as",
		Args:  cobra.NoArgs,
		RunE:  runWhoami,
	}
	rootCmd.AddCommand(whoamiCmd)

	if err := rootCmd.Execute(); err != nil {
		helpers.PrintError("Error: %v", err)
		os.Exit(1)
	}
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&transport, "transport", "t", "", "Transport: stdio or http (overrides MCP_TRANSPORT)")
	cmd.Flags().StringVar(&httpAddr, "addr", "", "Listen address for the http transport (overrides MCP_HTTP_ADDR)")
}

type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	jira  *repositories.JiraRepository
	tempo *repositories.TempoRepository
}

func setup() (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if transport != "" {
		cfg.Server.Transport = strings.ToLower(transport)
	}
	if httpAddr != "" {
		cfg.Server.HTTPAddr = httpAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(cfg.Log)
	return &app{
		cfg:   cfg,
		log:   log,
		jira:  repositories.NewJiraRepository(&cfg.Jira, log),
		tempo: repositories.NewTempoRepository(&cfg.Tempo, log),
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	identity := services.ResolveIdentity(ctx, a.jira, a.cfg.Jira.AccountID, a.log)

	deps := &tools.Deps{
		Worklogs: services.NewWorklogService(a.jira, a.tempo, a.cfg.Tempo.BillingAttribute, a.log),
		Issues:   services.NewIssueService(a.jira),
		Reports:  services.NewReportService(a.jira, a.tempo, a.log),
		Plans:    services.NewPlanService(a.jira, a.tempo, a.log),
		Identity: identity,
		Log:      a.log,
	}
	s := server.New(deps)

	a.log.Info().
		Str("version", server.Version).
		Str("transport", a.cfg.Server.Transport).
		Bool("identity_resolved", identity != "").
		Msg("starting tempo-mcp")

	if a.cfg.Server.Transport == config.TransportHTTP {
		return server.ServeHTTP(ctx, s, a.cfg.Server.HTTPAddr, a.log)
	}

	if helpers.IsTerminal(os.Stdin) {
		a.log.Warn().Msg("stdin is a terminal; tempo-mcp speaks MCP over stdio and is meant to be launched by an MCP client")
	}
	return server.ServeStdio(s, a.log)
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	helpers.PrintTitle("Checking connectivity")
	helpers.PrintInfo("JIRA:  %s", a.cfg.Jira.BaseURL)
	helpers.PrintInfo("Tempo: %s", a.cfg.Tempo.BaseURL)
	helpers.PrintSeparator()

	return services.TestConnection(cmd.Context(), a.jira, a.tempo)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	accountID := services.ResolveIdentity(ctx, a.jira, a.cfg.Jira.AccountID, a.log)
	if accountID == "" {
		return fmt.Errorf("could not resolve the current user; set JIRA_ACCOUNT_ID")
	}

	user, err := a.jira.GetUser(ctx, accountID)
	if err != nil {
		helpers.PrintWarning("Could not load the profile of %s: %v", accountID, err)
		helpers.PrintSuccess("Account id: %s", accountID)
		return nil
	}

	helpers.PrintSuccess("Account id: %s", accountID)
	helpers.PrintInfo("Name:  %s", user.DisplayName)
	if user.Email != "" {
		helpers.PrintInfo("Email: %s", user.Email)
	}
	return nil
}
