package svcbot

import (
	"fmt"
	"strings"
)

// Button is one pressable inline button: a visible label plus the opaque
// callback data routed back through ParseAction when pressed.
type Button struct {
	Label string
	Data  string
}

// Keyboard is an ordered sequence of button rows.
type Keyboard [][]Button

// summarySeparator is the rule drawn between processes in the summary body
const summarySeparator = "\n---------------------------------\n"

// RenderSummary builds the Home view: a MarkdownV2 status summary of every
// process and the keyboard to drive them. Process buttons are laid out two
// per row (a final odd one sits alone) under a header row, followed by the
// fleet-wide control rows. The body ends in an escaped period, which
// MarkdownV2 requires for a clean trailing line.
func RenderSummary(records []ProcessRecord) (string, Keyboard) {
	keyboard := Keyboard{
		{{Label: "Supervisors 👇", Data: "-"}},
	}
	for i := 0; i < len(records); i += 2 {
		row := make([]Button, 0, 2)
		for _, rec := range records[i:min(i+2, len(records))] {
			row = append(row, Button{
				Label: fmt.Sprintf("%s %s", rec.GroupName, rec.StatusEmoji()),
				Data:  ManageData(rec.GroupName),
			})
		}
		keyboard = append(keyboard, row)
	}
	keyboard = append(keyboard,
		[]Button{
			{Label: "Start all programs ✅", Data: "start_supervisors"},
			{Label: "Stop all programs ❌", Data: "stop_supervisors"},
		},
		[]Button{
			{Label: "Reload supervisor 🔄", Data: "reload_supervisors"},
		},
	)

	entries := make([]string, 0, len(records))
	for _, rec := range records {
		entries = append(entries, fmt.Sprintf(
			"*name*: %s\n*status*: *%s* %s",
			EscapeMarkdown(rec.GroupName), rec.State, rec.StatusEmoji(),
		))
	}

	text := fmt.Sprintf(
		"You can see a summary of the supervisor's status:\n\n\n%s\n\n\\.",
		strings.Join(entries, EscapeMarkdown(summarySeparator)),
	)

	return text, keyboard
}

// RenderDetail builds the Detail view for a single process: name, state, and
// uptime, with start/stop controls and a way back to the summary.
func RenderDetail(rec ProcessRecord) (string, Keyboard) {
	text := fmt.Sprintf(
		"*name*: %s\n*status*: *%s* %s\nuptime: %s\n\n\\.",
		EscapeMarkdown(rec.GroupName), rec.State, rec.StatusEmoji(),
		EscapeMarkdown(rec.Uptime),
	)

	keyboard := Keyboard{
		{
			{Label: "Start", Data: StartData(rec.GroupName)},
			{Label: "Stop", Data: StopData(rec.GroupName)},
		},
		{
			{Label: "Back 🔙", Data: "back_to_home"},
		},
	}

	return text, keyboard
}
