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

// Package main is the entry point of the coedit CLI.
package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "COEDIT"

var rootCmd = &cobra.Command{
	Use:   "coedit",
	Short: "Presence and edit broadcast server for collaborative documents",
}

// Run executes CLI.
func Run() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}

	return 0
}

// validateOutput validates the --output flag.
func validateOutput(output string) error {
	if output != "" && output != "yaml" && output != "json" {
		return errors.New(`--output must be 'yaml' or 'json'`)
	}

	return nil
}

func init() {
	viper.SetEnvPrefix(envPrefix)

	rootCmd.PersistentFlags().String("rpc-addr", "localhost:8080", "Address of the coedit server")
	rootCmd.PersistentFlags().StringP("output", "o", "", "One of 'yaml' or 'json'.")
	_ = viper.BindPFlag("rpcAddr", rootCmd.PersistentFlags().Lookup("rpc-addr"))
	_ = viper.BindEnv("rpcAddr", envPrefix+"_RPC_ADDR")
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	rootCmd.PersistentFlags().String("token", "", "Admin token of the coedit server. (env: COEDIT_TOKEN)")
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindEnv("token", envPrefix+"_TOKEN")
}
