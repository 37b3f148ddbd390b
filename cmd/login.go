package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qweylin/studypacer/internal/session"
)

// newLoginCmd creates the 'login' subcommand.
func newLoginCmd() *cobra.Command {
	var (
		username string
		password string
		save     bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for a fresh session cookie set",
		Long: `Drives the platform's form login and verifies the resulting session
can reach the authenticated main page. The cookies are written to the config
file so that 'run' and 'courses' can use them.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if username == "" {
				username = cfg.Username
			}
			if password == "" {
				password = cfg.Password
			}
			if username == "" || password == "" {
				return fmt.Errorf("username and password are required (flags or config)")
			}

			cookies, err := session.Login(cmd.Context(), session.LoginConfig{
				BaseURL:  cfg.Platform.BaseURL,
				Username: username,
				Password: password,
				Timeout:  cfg.RequestTimeout(),
			}, logger)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			logger.Info("login verified", zap.Int("cookies", len(cookies)))

			store := session.NewStore(configPath())
			if err := store.SaveCookies(cookies); err != nil {
				return fmt.Errorf("save cookies: %w", err)
			}
			if save {
				if err := store.SaveCredentials(username, password); err != nil {
					return fmt.Errorf("save credentials: %w", err)
				}
			}
			cmd.Printf("session saved to %s\n", configPath())
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "platform account name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "platform account password")
	cmd.Flags().BoolVar(&save, "save-credentials", false, "also persist the credentials for later logins")
	return cmd
}

// configPath resolves where session state is persisted.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "studypacer.json"
}
