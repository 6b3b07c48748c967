package main

import (
	"fmt"
	"os"
	"time"

	"github.com/andalize/proptic/internal/app"
	"github.com/andalize/proptic/internal/export"
	"github.com/andalize/proptic/internal/service"

	"github.com/spf13/cobra"
)

type opener func() (*app.App, error)

func newRootCmd(open opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "proptic-admin",
		Short:         "Administrative tasks for the proptic back office",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		migrateCmd(open),
		seedRolesCmd(open),
		createSuperuserCmd(open),
		exportCmd(open),
	)
	return rootCmd
}

func migrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and seed the default roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
}

func seedRolesCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-roles",
		Short: "Insert the default role catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.SeedRoles(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d role(s) created.\n", n)
			return nil
		},
	}
}

func createSuperuserCmd(open opener) *cobra.Command {
	var in service.SuperuserInput
	cmd := &cobra.Command{
		Use:   "create-superuser",
		Short: "Create a staff account holding the admin role",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.Services.Users.CreateSuperuser(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create superuser: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Superuser %s created (%s).\n", in.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.Password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&in.NationalID, "national-id", "", "national ID (12-18 characters)")
	cmd.Flags().StringVar(&in.PassportNumber, "passport", "", "passport number (9 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func exportCmd(open opener) *cobra.Command {
	var out, tenancy string
	cmd := &cobra.Command{
		Use:       "export [units|rent]",
		Short:     "Write an xlsx export of the units catalog or the rent ledger",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"units", "rent"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			var data []byte
			switch args[0] {
			case "units":
				units, err := a.Services.Units.AllUnits(cmd.Context())
				if err != nil {
					return err
				}
				data, err = export.Units(units)
				if err != nil {
					return err
				}
			case "rent":
				txs, err := a.Services.RentTransactions.ListRentTransactions(cmd.Context(), tenancy)
				if err != nil {
					return err
				}
				data, err = export.RentLedger(txs)
				if err != nil {
					return err
				}
			}

			if out == "" {
				out = fmt.Sprintf("%s_%s.xlsx", args[0], time.Now().Format("20060102_150405"))
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes).\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <kind>_<timestamp>.xlsx)")
	cmd.Flags().StringVar(&tenancy, "tenancy", "", "rent export: only this tenancy")
	return cmd
}
