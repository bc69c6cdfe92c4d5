package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration and contexts",
		Long:  `Manage CLI configuration including application contexts, similar to kubectl contexts.`,
	}

	cmd.AddCommand(newCurrentContextCommand())
	cmd.AddCommand(newUseContextCommand())
	cmd.AddCommand(newListContextsCommand())
	cmd.AddCommand(newAddContextCommand())
	cmd.AddCommand(newDeleteContextCommand())
	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// current-context command
func newCurrentContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current-context",
		Short: "Display the current context",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), getCliContext(cmd).Config.CurrentContext)
			return nil
		},
	}
}

// use-context command
func newUseContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use-context CONTEXT_NAME",
		Short: "Switch to a different context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := getCliContext(cmd).Config
			if err := config.SetCurrentContext(args[0]); err != nil {
				return err
			}
			if err := SaveConfig(config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Switched to context %q\n", args[0])
			return nil
		},
	}
}

// list-contexts command
func newListContextsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list-contexts",
		Aliases: []string{"get-contexts"},
		Short:   "List all available contexts",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := getCliContext(cmd).Config
			out := cmd.OutOrStdout()

			if len(config.Contexts) == 0 {
				fmt.Fprintln(out, "No contexts configured")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "CURRENT\tNAME\tDOMAIN\tCLIENT ID\tTHEME")
			for _, name := range config.ContextNames() {
				ctx := config.Contexts[name]
				current := " "
				if name == config.CurrentContext {
					current = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					current, name, ctx.Account.Domain, ctx.Account.ClientID, ctx.Theme())
			}
			return w.Flush()
		},
	}
}

// add-context command
func newAddContextCommand() *cobra.Command {
	var (
		domain              string
		clientID            string
		configurationDomain string
		redirectURL         string
		theme               string
		storePath           string
	)

	cmd := &cobra.Command{
		Use:   "add-context CONTEXT_NAME",
		Short: "Add or update a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contextName := args[0]
			config := getCliContext(cmd).Config

			// Keep the options of an existing context, they are edited in the file
			ctx := &Context{}
			if existing, ok := config.Contexts[contextName]; ok {
				ctx = existing
			}
			ctx.Account.Domain = domain
			ctx.Account.ClientID = clientID
			ctx.Account.ConfigurationDomain = configurationDomain
			ctx.Account.RedirectURL = redirectURL
			ctx.Rendering.Theme = theme
			ctx.Store.Path = storePath

			config.AddContext(contextName, ctx)
			if len(config.Contexts) == 1 {
				config.CurrentContext = contextName
			}

			if err := SaveConfig(config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Context %q added/updated\n", contextName)
			return nil
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "Tenant domain, e.g. tenant.eu.auth0.com")
	cmd.Flags().StringVar(&clientID, "client-id", "", "Application client ID")
	cmd.Flags().StringVar(&configurationDomain, "configuration-domain", "", "Domain serving the client info (defaults to the regional CDN)")
	cmd.Flags().StringVar(&redirectURL, "redirect-url", "", "Callback URL used by 'lock authorize'")
	cmd.Flags().StringVar(&theme, "theme", "auto", "Rendering theme")
	cmd.Flags().StringVar(&storePath, "store", "", "Passwordless identity file (defaults to the user config directory)")
	cmd.MarkFlagRequired("domain")
	cmd.MarkFlagRequired("client-id")

	return cmd
}

// delete-context command
func newDeleteContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-context CONTEXT_NAME",
		Short: "Delete a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := getCliContext(cmd).Config
			if err := config.DeleteContext(args[0]); err != nil {
				return err
			}
			if err := SaveConfig(config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Context %q deleted\n", args[0])
			return nil
		},
	}
}

// show command
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current context configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := getCliContext(cmd).Config
			ctx, err := config.GetCurrentContext()
			if err != nil {
				return fmt.Errorf("failed to get current context: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Current context: %s\n", config.CurrentContext)
			fmt.Fprintf(out, "  Domain: %s\n", ctx.Account.Domain)
			fmt.Fprintf(out, "  Client ID: %s\n", ctx.Account.ClientID)
			fmt.Fprintf(out, "  Configuration URL: %s\n", ctx.ConfigurationURL())
			fmt.Fprintf(out, "  Glamour Theme: %s\n", ctx.Theme())

			configPath, _ := GetConfigPath()
			fmt.Fprintf(out, "  Config File: %s\n", configPath)

			options, err := yaml.Marshal(ctx.Options)
			if err != nil {
				return fmt.Errorf("failed to marshal options: %w", err)
			}
			fmt.Fprintf(out, "  Options:\n")
			for _, line := range strings.Split(strings.TrimRight(string(options), "\n"), "\n") {
				fmt.Fprintf(out, "    %s\n", line)
			}
			return nil
		},
	}
}
