// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"rivaas.dev/smartrouter/router"
)

// renderRoutes prints the registered routes in match order with the
// committed strategy.
func renderRoutes(w io.Writer, r *router.Router) {
	re := lipgloss.NewRenderer(w)
	methodColors := map[string]string{
		http.MethodGet:    "10",
		http.MethodPost:   "12",
		http.MethodPut:    "11",
		http.MethodPatch:  "14",
		http.MethodDelete: "9",
	}
	base := re.NewStyle().Padding(0, 1)
	header := base.Bold(true).Foreground(lipgloss.Color("245"))
	dim := base.Foreground(lipgloss.Color("240"))

	routes := r.Routes()
	rows := make([][]string, 0, len(routes))
	for _, info := range routes {
		kind := "exact"
		if info.CatchAll {
			kind = "catch-all"
		}
		rows = append(rows, []string{
			info.Method,
			info.Path,
			strings.Join(info.Params, ", "),
			kind,
			strconv.FormatUint(info.Score, 10),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(re.NewStyle().Foreground(lipgloss.Color("238"))).
		Headers("METHOD", "PATTERN", "PARAMS", "KIND", "SCORE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case row < 0 || row >= len(rows):
				return base
			case col == 0:
				if c, ok := methodColors[rows[row][0]]; ok {
					return base.Bold(true).Foreground(lipgloss.Color(c))
				}
				return base.Bold(true)
			case col >= 2:
				return dim
			default:
				return base
			}
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, dim.Render(fmt.Sprintf("%d routes, strategy %s", len(routes), r.Strategy())))
	if cause := r.StrategyCause(); cause != nil {
		fmt.Fprintln(w, dim.Render("fast path rejected: "+cause.Error()))
	}
}
