package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/getmockd/shelfd/pkg/auth"
)

var hashCost int

var hashCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for seeding users",
	Long: `Print a bcrypt hash of the given password. Without an argument the
password is read from the first line of standard input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := ""
		if len(args) == 1 {
			password = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no password given")
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return errors.New("password must not be empty")
		}
		if hashCost < bcrypt.MinCost || hashCost > bcrypt.MaxCost {
			return fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}

		hash, err := auth.Bcrypt{Cost: hashCost}.Hash(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	hashCmd.Flags().IntVar(&hashCost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	rootCmd.AddCommand(hashCmd)
}
