package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"arogyam-go/internal/adminclient"
	"arogyam-go/internal/database"
	"arogyam-go/internal/models"
	"arogyam-go/internal/offline"
	"arogyam-go/internal/repository"
	"arogyam-go/internal/storage"
	"arogyam-go/internal/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	adminURL   string
	adminState string
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts and use the admin API",
	}
	cmd.PersistentFlags().StringVar(&adminURL, "url", "http://localhost:5050", "base URL of a running server")
	cmd.PersistentFlags().StringVar(&adminState, "state", "data/cli.db", "file keeping the CLI session")

	cmd.AddCommand(adminCreateCmd(), adminLoginCmd(), adminLogoutCmd(),
		adminConsultationsCmd(), adminSetStatusCmd(), adminLinkCmd(), adminPatientsCmd(), adminPrescriptionsCmd())
	return cmd
}

func adminCreateCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account directly in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !utils.IsValidEmail(email) {
				return fmt.Errorf("invalid email %q", email)
			}
			if !utils.IsComplexPassword(password) {
				return errors.New("password needs 8+ characters with upper and lower case, a number and a symbol")
			}
			conf, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := database.Open(conf.Database, log)
			if err != nil {
				return err
			}
			admin, err := repository.NewAdmins(db).Create(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			log.Info("Admin created", zap.Uint("adminID", admin.ID), zap.String("email", admin.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

// withClient opens the CLI session store and the offline cache, so list
// commands keep answering from the last good response while the server is
// unreachable.
func withClient(fn func(*adminclient.Client) error) error {
	conf, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := os.MkdirAll(filepath.Dir(adminState), 0755); err != nil {
		return err
	}
	local, err := storage.NewLocal(adminState)
	if err != nil {
		return err
	}
	defer local.Close()

	if err := os.MkdirAll(filepath.Dir(conf.Cache.Path), 0755); err != nil {
		return err
	}
	cache, err := offline.Open(conf.Cache.Path, offline.Options{
		Version:   conf.Cache.Version,
		Origin:    adminURL,
		FontHosts: conf.Cache.FontHosts,
		Log:       log,
	})
	if err != nil {
		return err
	}
	defer cache.Close()

	return fn(adminclient.New(adminURL, &http.Client{Transport: cache}, local))
}

func printResult[T any](r adminclient.Result[T]) error {
	if !r.Success {
		return errors.New(r.Error)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Data)
}

func adminLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the token for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *adminclient.Client) error {
				r := c.Login(cmd.Context(), email, password)
				if !r.Success {
					return errors.New(r.Error)
				}
				fmt.Println("Signed in.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func adminLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *adminclient.Client) error {
				return c.ClearSession()
			})
		},
	}
}

func adminConsultationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consultations",
		Short: "List consultation requests, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *adminclient.Client) error {
				return printResult(c.ListConsultations(cmd.Context()))
			})
		},
	}
}

func adminSetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <pending|confirmed|completed|cancelled>",
		Short: "Change the status of a consultation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid consultation id %q", args[0])
			}
			status := models.ConsultationStatus(args[1])
			if !status.Valid() {
				return fmt.Errorf("invalid status %q", args[1])
			}
			return withClient(func(c *adminclient.Client) error {
				return printResult(c.UpdateConsultationStatus(cmd.Context(), uint(id), status))
			})
		},
	}
}

func adminLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <consultation-id> <patient-id>",
		Short: "Attach a booking to a patient record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid consultation id %q", args[0])
			}
			patientID, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid patient id %q", args[1])
			}
			return withClient(func(c *adminclient.Client) error {
				return printResult(c.LinkConsultation(cmd.Context(), uint(id), uint(patientID)))
			})
		},
	}
}

func adminPatientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patients [query]",
		Short: "List or search patients",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return withClient(func(c *adminclient.Client) error {
				return printResult(c.ListPatients(cmd.Context(), query))
			})
		},
	}
}

func adminPrescriptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prescriptions <patient-id>",
		Short: "List the prescriptions of a patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid patient id %q", args[0])
			}
			return withClient(func(c *adminclient.Client) error {
				return printResult(c.ListPrescriptions(cmd.Context(), uint(id)))
			})
		},
	}
}
