package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/frahmantamala/budget-ledger/internal/auth"
	"github.com/frahmantamala/budget-ledger/internal/core/calendar"
	"github.com/frahmantamala/budget-ledger/internal/user"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
}

var createUserCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user with the default budget",
	Long:  `Create a user. The password is read from the terminal, or from stdin when piped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := promptPassword(os.Stdin, cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		deps, err := initializeDependencies()
		if err != nil {
			return err
		}
		defer deps.Close()

		return createUser(cmd.Context(), deps.Auth, deps.Clock, auth.SignupDTO{
			Email:     newUserEmail,
			Password:  password,
			FirstName: newUserFirstName,
			LastName:  newUserLastName,
		}, cmd.OutOrStdout())
	},
}

var (
	newUserEmail     string
	newUserFirstName string
	newUserLastName  string
)

type signupService interface {
	Signup(ctx context.Context, dto auth.SignupDTO, today time.Time) (*user.User, auth.AuthTokens, error)
}

func createUser(ctx context.Context, svc signupService, clock calendar.Clock, dto auth.SignupDTO, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	u, _, err := svc.Signup(ctx, dto, calendar.Today(clock))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "User %s created with ID %d (budget %s %s, resets %s)\n",
		u.Email, u.ID,
		u.Account.MaximumBudget.StringFixed(2), u.Account.DefaultCurrency,
		u.Account.ResetDate.Format(calendar.DateLayout))
	return nil
}

func promptPassword(stdin io.Reader, out io.Writer) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "Password: ")
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// piped input, first line is the password
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func init() {
	createUserCmd.Flags().StringVar(&newUserEmail, "email", "", "email address (required)")
	createUserCmd.Flags().StringVar(&newUserFirstName, "first-name", "", "first name (required)")
	createUserCmd.Flags().StringVar(&newUserLastName, "last-name", "", "last name (required)")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("first-name")
	_ = createUserCmd.MarkFlagRequired("last-name")

	userCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(userCmd)
}
