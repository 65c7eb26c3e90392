/*
 * Copyright 2026 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yorkie-team/coedit/server/rpc/auth"
)

var (
	tokenUserName string
	tokenDuration time.Duration
	tokenAdmin    bool
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token [user id]",
		Short: "Issue a join token for a user, or an admin token with --admin",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindEnvFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := viper.GetString("auth-secret")
			if secret == "" {
				return errors.New("--auth-secret is required")
			}

			manager := auth.NewTokenManager(secret, tokenDuration)
			var token string
			var err error
			if tokenAdmin {
				token, err = manager.GenerateAdmin(args[0])
			} else {
				token, err = manager.Generate(args[0], tokenUserName)
			}
			if err != nil {
				return err
			}

			cmd.Println(token)
			return nil
		},
	}
	return cmd
}

func init() {
	cmd := newTokenCmd()
	cmd.Flags().StringVar(
		&tokenUserName,
		"user-name",
		"",
		"Name carried by the token. It replaces the name claimed at join time.",
	)
	cmd.Flags().DurationVar(
		&tokenDuration,
		"duration",
		auth.DefaultTokenDuration,
		"Lifetime of the token.",
	)
	cmd.Flags().BoolVar(
		&tokenAdmin,
		"admin",
		false,
		"Issue a token for the admin endpoints instead of a join token.",
	)
	cmd.Flags().String(
		"auth-secret",
		"",
		"HMAC secret of join tokens. (env: COEDIT_AUTH_SECRET)",
	)
	rootCmd.AddCommand(cmd)
}
