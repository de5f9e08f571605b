package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/shelfd/internal/client"
	"github.com/nadzzz/shelfd/internal/intent"
)

func newIntentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intent <FindItem|ListContainer|AddItem|FindSpace> [slot=value...]",
		Short: "Run a voice intent against a running mediator",
		Example: `  shelfd intent FindItem item_description="47k resistor"
  shelfd intent AddItem item_description="2.2uF capacitor" location="shelf 1.3"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slots, err := parseSlots(args[1:])
			if err != nil {
				return err
			}

			c, err := client.New(a.cfg.Client)
			if err != nil {
				return err
			}
			defer c.Close()

			adapter := intent.New(c)
			h, ok := adapter.Lookup(args[0])
			if !ok {
				return fmt.Errorf("%w %q (known: %s)", intent.ErrUnknownIntent, args[0], strings.Join(adapter.Types(), ", "))
			}
			if err := checkSlots(h, slots); err != nil {
				return err
			}

			resp, err := adapter.Handle(cmd.Context(), intent.Intent{Type: h.Type, Slots: slots})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Speech)
			return err
		},
	}
	return cmd
}

// parseSlots turns name=value arguments into intent slots.
func parseSlots(args []string) (intent.Slots, error) {
	slots := make(intent.Slots, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid slot %q: want name=value", arg)
		}
		slots[name] = intent.Slot{Value: value}
	}
	return slots, nil
}

// checkSlots rejects slot names the intent does not take. Missing slots are
// fine and are sent as empty text.
func checkSlots(h intent.Handler, slots intent.Slots) error {
	for name := range slots {
		if !slices.Contains(h.Slots, name) {
			return fmt.Errorf("intent %s has no slot %q (slots: %s)", h.Type, name, strings.Join(h.Slots, ", "))
		}
	}
	return nil
}
