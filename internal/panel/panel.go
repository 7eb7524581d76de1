// Package panel builds the playback control panel and remembers who may
// press its buttons.
package panel

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/glizzus/sound-panel/internal/emoji"
)

type Action string

const (
	ActionPlay    Action = "play"
	ActionStop    Action = "stop"
	ActionSkip    Action = "skip"
	ActionRestart Action = "restart"
	ActionVolUp   Action = "vol_up"
	ActionVolDown Action = "vol_down"
)

// VolumeStep is how much one volume button press changes the volume.
const VolumeStep = 10

const customIDPrefix = "control_"

// buttons is the display order of the panel. Each action shows the emoji
// stored under its key.
var buttons = []struct {
	action Action
	key    emoji.Key
}{
	{ActionPlay, emoji.Resume},
	{ActionStop, emoji.Stop},
	{ActionSkip, emoji.Skip},
	{ActionRestart, emoji.Restart},
	{ActionVolUp, emoji.VolUp},
	{ActionVolDown, emoji.VolDown},
}

const buttonsPerRow = 5

// Buttons show only their emoji.
const zeroWidthSpace = "\u200b"

func CustomID(action Action, panelID string) string {
	return customIDPrefix + string(action) + ":" + panelID
}

// ParseCustomID splits a custom ID made by CustomID.
func ParseCustomID(customID string) (action Action, panelID string, ok bool) {
	rest, found := strings.CutPrefix(customID, customIDPrefix)
	if !found {
		return "", "", false
	}
	name, panelID, found := strings.Cut(rest, ":")
	if !found || panelID == "" {
		return "", "", false
	}
	action = Action(name)
	switch action {
	case ActionPlay, ActionStop, ActionSkip, ActionRestart, ActionVolUp, ActionVolDown:
		return action, panelID, true
	}
	return "", "", false
}

func Content(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "غير معروف"
	}
	return fmt.Sprintf("🎶 **%s**", title)
}

// Build returns the panel message for panelID.
func Build(panelID, title string, emojis emoji.Set) *discordgo.MessageSend {
	var rows []discordgo.MessageComponent
	var row discordgo.ActionsRow
	for _, b := range buttons {
		row.Components = append(row.Components, discordgo.Button{
			Label:    zeroWidthSpace,
			Style:    discordgo.SecondaryButton,
			CustomID: CustomID(b.action, panelID),
			Emoji:    emoji.ComponentEmoji(emojis[b.key]),
		})
		if len(row.Components) == buttonsPerRow {
			rows = append(rows, row)
			row = discordgo.ActionsRow{}
		}
	}
	if len(row.Components) > 0 {
		rows = append(rows, row)
	}

	return &discordgo.MessageSend{
		Content:    Content(title),
		Components: rows,
	}
}
