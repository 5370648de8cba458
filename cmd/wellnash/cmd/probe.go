package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/wellnash/wellnash/internal/app"
	"github.com/wellnash/wellnash/internal/audit"
	"github.com/wellnash/wellnash/internal/authform"
	"github.com/wellnash/wellnash/internal/config"
	"github.com/wellnash/wellnash/internal/logging"
)

var (
	probeEmail  string
	probeSignUp bool
	probeNext   string
	probeFormat string
)

var validate = validator.New()

// probePasswordEnv names the variable the password is read from.
const probePasswordEnv = "WELLNASH_PROBE_PASSWORD"

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run one sign-in or sign-up attempt against the configured backend",
	Long: `Run one attempt through the same submission path the login form uses
and print how it resolved: where the browser would be sent, or the message
the form would show.

The password is read from ` + probePasswordEnv + `.

Examples:
  wellnash probe --email me@example.com
  wellnash probe --email new@example.com --signup --next /settings
  wellnash probe --email me@example.com --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.New()
		logging.New(cfg.GetLogFormat(), cfg.GetLogLevel())

		deps, err := app.NewDependencies(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		defer deps.Close()

		res, err := Probe(cmd.Context(), cfg, deps, probeRequest{
			Email:    probeEmail,
			Password: os.Getenv(probePasswordEnv),
			SignUp:   probeSignUp,
			Next:     probeNext,
		})
		if err != nil {
			return err
		}
		return writeProbeResult(cmd.OutOrStdout(), probeFormat, res)
	},
}

func init() {
	probeCmd.Flags().StringVar(&probeEmail, "email", "", "account email")
	probeCmd.Flags().BoolVar(&probeSignUp, "signup", false, "create an account instead of signing in")
	probeCmd.Flags().StringVar(&probeNext, "next", "", "path to continue to after success")
	probeCmd.Flags().StringVar(&probeFormat, "format", "text", "output format: text or json")
	_ = probeCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(probeCmd)
}

type probeRequest struct {
	Email    string
	Password string
	SignUp   bool
	Next     string
}

type probeResult struct {
	Mode     string `json:"mode"`
	Email    string `json:"email"`
	Redirect string `json:"redirect,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Probe runs req through a Submitter wired like the server's.
func Probe(ctx context.Context, cfg config.Provider, deps *app.Dependencies, req probeRequest) (probeResult, error) {
	if req.Password == "" {
		return probeResult{}, fmt.Errorf("%s is not set", probePasswordEnv)
	}

	signup := ""
	if req.SignUp {
		signup = "true"
	}
	form := authform.New(signup, req.Next)

	creds := authform.Credentials{FormID: form.ID, Email: req.Email, Password: req.Password}
	if err := validate.Struct(creds); err != nil {
		return probeResult{}, errors.New(authform.ValidationMessage(err))
	}

	submitter := authform.NewSubmitter(deps.Auth,
		authform.WithSuccessDelay(cfg.GetSuccessDelay()),
		authform.WithSessionTimeout(cfg.GetSessionTimeout()),
		authform.WithEvents(audit.NewPublisher(deps.Bus)),
	)
	outcome := submitter.Submit(ctx, form, creds)
	if outcome.Err != nil {
		return probeResult{}, outcome.Err
	}

	return probeResult{
		Mode:     form.Mode.String(),
		Email:    req.Email,
		Redirect: outcome.Redirect,
		Error:    form.ErrorMessage,
	}, nil
}

func writeProbeResult(w io.Writer, format string, res probeResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "text":
		if res.Redirect != "" {
			_, err := fmt.Fprintf(w, "%s %s: ok, redirect to %s\n", res.Mode, res.Email, res.Redirect)
			return err
		}
		_, err := fmt.Fprintf(w, "%s %s: failed: %s\n", res.Mode, res.Email, res.Error)
		return err
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}
