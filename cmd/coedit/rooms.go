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
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/yorkie-team/coedit/admin"
	"github.com/yorkie-team/coedit/api/types"
)

func newRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms [document id...]",
		Short: "List rooms, or the presences of the given documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := viper.GetString("output")
			if err := validateOutput(output); err != nil {
				return err
			}

			cli, err := admin.New(viper.GetString("rpcAddr"), admin.WithToken(viper.GetString("token")))
			if err != nil {
				return err
			}
			defer cli.Close()

			ctx := context.Background()
			if len(args) == 0 {
				rooms, err := cli.ListRooms(ctx)
				if err != nil {
					return err
				}
				return printRooms(cmd, output, rooms)
			}

			presences := make([][]*types.Presence, len(args))
			g, gctx := errgroup.WithContext(ctx)
			for i, arg := range args {
				g.Go(func() error {
					result, err := cli.ListPresences(gctx, types.DocumentID(arg))
					if err != nil {
						return err
					}
					presences[i] = result
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			var all []*types.Presence
			for _, ps := range presences {
				all = append(all, ps...)
			}
			return printPresences(cmd, output, all)
		},
	}
}

func printRooms(cmd *cobra.Command, output string, rooms []*types.RoomSummary) error {
	if output != "" {
		return printStructured(cmd, output, rooms)
	}

	tw := newTableWriter()
	tw.AppendHeader(table.Row{
		"DOCUMENT",
		"PRESENCES",
		"EDITS",
		"LAST ACTIVITY",
		"LAST EDIT",
	})
	for _, room := range rooms {
		tw.AppendRow(table.Row{
			room.DocumentID,
			room.Presences,
			room.Edits,
			humanSince(room.LastActivity),
			humanSince(room.LastEditAt),
		})
	}
	cmd.Printf("%s\n", tw.Render())
	return nil
}

func printPresences(cmd *cobra.Command, output string, presences []*types.Presence) error {
	if output != "" {
		return printStructured(cmd, output, presences)
	}

	tw := newTableWriter()
	tw.AppendHeader(table.Row{
		"DOCUMENT",
		"SESSION",
		"USER",
		"NAME",
		"COLOR",
		"SECTION",
		"LAST ACTIVITY",
	})
	for _, p := range presences {
		section := ""
		if p.SectionID != nil {
			section = *p.SectionID
		}
		tw.AppendRow(table.Row{
			p.DocumentID,
			p.SessionID,
			p.UserID,
			p.UserName,
			p.UserColor,
			section,
			humanSince(time.UnixMilli(p.LastActivity)),
		})
	}
	cmd.Printf("%s\n", tw.Render())
	return nil
}

func printStructured(cmd *cobra.Command, output string, v any) error {
	switch output {
	case "json":
		jsonOutput, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		cmd.Println(string(jsonOutput))
	case "yaml":
		yamlOutput, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
		cmd.Println(string(yamlOutput))
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}

	return nil
}

func newTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Options.SeparateFooter = false
	tw.Style().Options.SeparateHeader = false
	tw.Style().Options.SeparateRows = false
	return tw
}

func humanSince(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return time.Since(t).Round(time.Second).String() + " ago"
}

func init() {
	rootCmd.AddCommand(newRoomsCmd())
}
