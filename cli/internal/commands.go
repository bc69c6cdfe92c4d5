package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/lock/internal/auth"
	"github.com/devilmonastery/lock/internal/domain/entities"
	"github.com/devilmonastery/lock/internal/domain/services"
	"github.com/devilmonastery/lock/internal/pkg/summary"
)

const (
	outputMarkdown = "markdown"
	outputTable    = "table"
	outputJSON     = "json"
)

func checkOutput(output string, allowed ...string) error {
	if !slices.Contains(allowed, output) {
		return fmt.Errorf("unknown output format %q (want one of %s)", output, strings.Join(allowed, ", "))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// connections command
func newConnectionsCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "connections",
		Short: "List every connection of the application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output, outputTable, outputJSON); err != nil {
				return err
			}
			cliCtx := getCliContext(cmd)
			app, err := cliCtx.application(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output == outputJSON {
				return writeJSON(out, app.Connections)
			}

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTRATEGY\tTYPE")
			for _, c := range app.Connections {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name(), c.Strategy(), c.Type())
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format (table, json)")
	return cmd
}

// resolve command
func newResolveCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the widget configuration with the context options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output, outputMarkdown, outputJSON); err != nil {
				return err
			}
			cliCtx := getCliContext(cmd)
			app, cfg, err := cliCtx.resolve(cmd.Context())
			if err != nil {
				return err
			}

			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}
			title := app.ID
			if app.Tenant != "" {
				title = fmt.Sprintf("%s (%s)", app.ID, app.Tenant)
			}
			return printMarkdown(cmd.OutOrStdout(), summary.Markdown(title, cfg), cliCtx.Context)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputMarkdown, "Output format (markdown, json)")
	return cmd
}

// match command
func newMatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "match EMAIL",
		Short: "Find the enterprise connection that owns the e-mail domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			_, cfg, err := cliCtx.resolve(cmd.Context())
			if err != nil {
				return err
			}

			matcher := services.NewEnterpriseConnectionMatcher(cfg.EnterpriseConnections())
			conn := matcher.Parse(args[0])
			if conn == nil {
				return fmt.Errorf("no enterprise connection matches %q", args[0])
			}

			username, _ := matcher.ExtractUsername(args[0])
			flow := "web"
			if cfg.ShouldUseNativeAuthentication(conn) {
				flow = "native"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connection: %s\nstrategy: %s\nusername: %s\nflow: %s\n",
				conn.Name(), conn.Strategy(), username, flow)
			return nil
		},
	}
}

// authorize command
func newAuthorizeCommand() *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "authorize CONNECTION",
		Short: "Print the authorization URL for a connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			app, err := cliCtx.application(cmd.Context())
			if err != nil {
				return err
			}
			opts, err := cliCtx.options()
			if err != nil {
				return err
			}

			var conn *entities.Connection
			for _, c := range app.Connections {
				if c.Name() == args[0] {
					conn = c
					break
				}
			}
			if conn == nil {
				return fmt.Errorf("connection %q not found", args[0])
			}

			domain := cliCtx.Context.Account.Domain
			clientID := cliCtx.Context.Account.ClientID
			if domain == "" {
				domain = app.Tenant
			}
			if clientID == "" {
				clientID = app.ID
			}

			req, err := auth.NewAuthorizer(domain, clientID, cliCtx.Context.Account.RedirectURL, opts).AuthorizeURL(conn, state)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), req)
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "State parameter (random when empty)")
	return cmd
}

// passwordless command group
func newPasswordlessCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passwordless",
		Short: "Manage the remembered passwordless identity",
	}
	cmd.AddCommand(newPasswordlessRememberCommand())
	cmd.AddCommand(newPasswordlessShowCommand())
	cmd.AddCommand(newPasswordlessForgetCommand())
	return cmd
}

// passwordlessService resolves the configuration to learn the current passwordless mode
func passwordlessService(cmd *cobra.Command) (*services.PasswordlessIdentityService, error) {
	cliCtx := getCliContext(cmd)
	app, cfg, err := cliCtx.resolve(cmd.Context())
	if err != nil {
		return nil, err
	}
	if cfg.PasswordlessMode() == entities.PasswordlessModeDisabled {
		cliCtx.Logger.Warn("application has no usable passwordless connection")
	}
	store, err := cliCtx.identityStore()
	if err != nil {
		return nil, err
	}
	return services.NewPasswordlessIdentityService(store, app.ID, cfg.PasswordlessMode(), cliCtx.Logger), nil
}

func newPasswordlessRememberCommand() *cobra.Command {
	var isoCode, dialCode string

	cmd := &cobra.Command{
		Use:   "remember IDENTITY",
		Short: "Remember the e-mail or phone number used to sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (isoCode == "") != (dialCode == "") {
				return errors.New("--country and --dial-code must be set together")
			}
			svc, err := passwordlessService(cmd)
			if err != nil {
				return err
			}

			var country *entities.Country
			if isoCode != "" {
				country = &entities.Country{IsoCode: strings.ToUpper(isoCode), DialCode: dialCode}
			}
			if err := svc.SaveIdentity(cmd.Context(), args[0], country); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Remembered %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&isoCode, "country", "", "ISO code of the phone number country (SMS only)")
	cmd.Flags().StringVar(&dialCode, "dial-code", "", "Dial code of the phone number country, e.g. +54 (SMS only)")
	return cmd
}

func newPasswordlessShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the remembered passwordless identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := passwordlessService(cmd)
			if err != nil {
				return err
			}
			recalled, err := svc.Recall(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if recalled == nil {
				fmt.Fprintln(out, "No passwordless identity remembered")
				return nil
			}

			fmt.Fprintf(out, "identity: %s\n", recalled.Identity)
			if recalled.Country != nil {
				fmt.Fprintf(out, "country: %s (%s)\n", recalled.Country.IsoCode, recalled.Country.DialCode)
			}
			fmt.Fprintf(out, "logged in before: %t\n", recalled.LoggedInBefore)
			return nil
		},
	}
}

func newPasswordlessForgetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "forget",
		Short: "Forget the remembered passwordless identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := passwordlessService(cmd)
			if err != nil {
				return err
			}
			if err := svc.Forget(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Forgot the passwordless identity")
			return nil
		},
	}
}
