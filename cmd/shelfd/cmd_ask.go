package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/shelfd/internal/client"
	"github.com/nadzzz/shelfd/internal/intent"
	"github.com/nadzzz/shelfd/internal/message"
)

func newAskCmd(a *app) *cobra.Command {
	var category string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Send a free-text question to a running mediator",
		Example: `  shelfd ask 47k resistor --intent find_item
  shelfd ask "what is in drawer 1.2" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(a.cfg.Client)
			if err != nil {
				return err
			}
			defer c.Close()

			resp := intent.New(c).Query(cmd.Context(), strings.Join(args, " "), category)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			if _, err := fmt.Fprintln(out, resp.Spoken); err != nil {
				return err
			}
			return printDetails(out, message.Category(category), resp.Response)
		},
	}

	cmd.Flags().StringVar(&category, "intent", "", "intent category (find_item, list_container, add_item, find_space); empty means general")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")

	return cmd
}

// printDetails lists the structured parts of an answer under the spoken
// line: locations, container contents or free space. Answers that do not
// follow the category's shape print nothing extra.
func printDetails(w io.Writer, category message.Category, r *message.Result) error {
	if r == nil || !r.Structured {
		return nil
	}

	var lines []string
	switch category {
	case message.FindItem:
		v, err := r.FindItem()
		if err != nil {
			slog.Debug("answer does not match find_item", "error", err)
			return nil
		}
		for _, loc := range v.Locations {
			lines = append(lines, join(loc.Container, loc.Position)+quantity(loc.Quantity))
		}
	case message.ListContainer:
		v, err := r.ListContainer()
		if err != nil {
			slog.Debug("answer does not match list_container", "error", err)
			return nil
		}
		for _, e := range v.Contents {
			lines = append(lines, join(e.Position+":", e.Item)+quantity(e.Quantity))
		}
	case message.AddItem:
		v, err := r.AddItem()
		if err != nil {
			slog.Debug("answer does not match add_item", "error", err)
			return nil
		}
		if v.Container != "" || v.Position != "" {
			lines = append(lines, join(v.Item, "->", v.Container, v.Position)+quantity(v.Quantity))
		}
	case message.FindSpace:
		v, err := r.FindSpace()
		if err != nil {
			slog.Debug("answer does not match find_space", "error", err)
			return nil
		}
		for _, loc := range v.AvailableLocations {
			lines = append(lines, join(loc.Container+":", strings.Join(loc.Positions, ", ")))
		}
	}

	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// join joins the non-empty parts with single spaces.
func join(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" && p != ":" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func quantity(q *int) string {
	if q == nil {
		return ""
	}
	return fmt.Sprintf(" (x%d)", *q)
}
