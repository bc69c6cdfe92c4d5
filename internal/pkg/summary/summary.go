// Package summary renders a resolved Configuration as markdown, for terminals and HTML pages.
package summary

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"

	"github.com/devilmonastery/lock/internal/domain/entities"
	"github.com/devilmonastery/lock/internal/domain/services"
)

// Markdown builds a markdown document describing cfg. title is used as the top heading.
func Markdown(title string, cfg *services.Configuration) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escape(title))

	b.WriteString("## Database\n\n")
	if db := cfg.DefaultDatabaseConnection(); db != nil {
		policy := cfg.PasswordPolicy()
		fmt.Fprintf(&b, "Default connection: **%s**\n\n", escape(db.Name()))
		fmt.Fprintf(&b, "| Setting | Value |\n|---|---|\n")
		row(&b, "Log in", yesNo(cfg.AllowLogIn()))
		row(&b, "Sign up", yesNo(cfg.AllowSignUp()))
		row(&b, "Forgot password", yesNo(cfg.AllowForgotPassword()))
		row(&b, "Username required", yesNo(cfg.IsUsernameRequired()))
		row(&b, "Username style", cfg.UsernameStyle().String())
		row(&b, "Password policy", policy.Policy.String())
		if policy.MinLengthOverride != nil {
			row(&b, "Minimum password length", fmt.Sprint(*policy.MinLengthOverride))
		}
		row(&b, "Initial screen", cfg.InitialScreen().String())
		b.WriteString("\n")
	} else {
		b.WriteString("_No database connection available._\n\n")
	}

	connectionSection(&b, "Enterprise", cfg.EnterpriseConnections(), func(c *entities.Connection) string {
		if !c.IsActiveFlowEnabled() {
			return "web form"
		}
		return ""
	})
	connectionSection(&b, "Social", cfg.SocialConnections(), func(c *entities.Connection) string {
		return string(cfg.AuthStyleForConnection(c.Strategy(), c.Name()))
	})
	connectionSection(&b, "Passwordless", cfg.PasswordlessConnections(), func(c *entities.Connection) string {
		if c == cfg.DefaultPasswordlessConnection() {
			return "default, " + cfg.PasswordlessMode().String()
		}
		return ""
	})

	if fields := cfg.ExtraSignUpFields(); len(fields) > 0 {
		b.WriteString("## Sign up fields\n\n")
		for _, f := range fields {
			fmt.Fprintf(&b, "- `%s` (%s, stored in %s)\n", f.Key, f.Type, f.Storage)
		}
		b.WriteString("\n")
	}

	links := [][2]string{{"Terms", cfg.TermsURL()}, {"Privacy", cfg.PrivacyURL()}, {"Support", cfg.SupportURL()}}
	var rendered []string
	for _, l := range links {
		if l[1] != "" {
			rendered = append(rendered, fmt.Sprintf("[%s](%s)", l[0], l[1]))
		}
	}
	if len(rendered) > 0 {
		b.WriteString("## Links\n\n")
		b.WriteString(strings.Join(rendered, " · "))
		b.WriteString("\n")
	}

	return b.String()
}

// HTML converts markdown to sanitized HTML
func HTML(markdown string) template.HTML {
	unsafe := blackfriday.Run([]byte(markdown))
	safe := bluemonday.UGCPolicy().SanitizeBytes(unsafe)
	return template.HTML(safe)
}

func connectionSection(b *strings.Builder, heading string, conns []*entities.Connection, note func(*entities.Connection) string) {
	if len(conns) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	for _, c := range conns {
		fmt.Fprintf(b, "- **%s** (`%s`)", escape(c.Name()), c.Strategy())
		if n := note(c); n != "" {
			fmt.Fprintf(b, ": %s", n)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func row(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", key, value)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "|", `\|`, "<", "&lt;", ">", "&gt;",
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
