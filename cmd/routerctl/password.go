package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/azlan18/iDEA/internal/auth"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a bcrypt hash for a roster password_hash field",
	Long:  "Reads the password from --password, or from the first line of stdin.",
	RunE:  runHashPassword,
}

var (
	hashPassword string
	hashCost     int
)

func init() {
	hashPasswordCmd.Flags().StringVar(&hashPassword, "password", "", "Plaintext password")
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", bcrypt.DefaultCost, "bcrypt cost")
}

func runHashPassword(cmd *cobra.Command, _ []string) error {
	password := hashPassword
	if password == "" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("no password given")
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("no password given")
	}
	hash, err := auth.HashPassword(password, hashCost)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
