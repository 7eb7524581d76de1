// Package emoji resolves the emojis shown on the control panel buttons.
package emoji

import (
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/glizzus/sound-panel/internal/config"
)

// Key names one panel emoji slot.
type Key string

const (
	Pause   Key = "pause"
	Resume  Key = "resume"
	Stop    Key = "stop"
	Skip    Key = "skip"
	Restart Key = "restart"
	VolUp   Key = "vol_up"
	VolDown Key = "vol_down"
)

// Keys lists every slot in the order commands accept them.
var Keys = []Key{Pause, Resume, Stop, Skip, Restart, VolUp, VolDown}

// Set maps each slot to the emoji text shown for it.
type Set map[Key]string

// Defaults builds the base set from configuration.
func Defaults(cfg *config.EmojiConfig) Set {
	return Set{
		Pause:   cfg.Pause,
		Resume:  cfg.Resume,
		Stop:    cfg.Stop,
		Skip:    cfg.Skip,
		Restart: cfg.Restart,
		VolUp:   cfg.VolUp,
		VolDown: cfg.VolDown,
	}
}

// Merge returns a copy of s with overrides applied on top.
func (s Set) Merge(overrides map[Key]string) Set {
	merged := make(Set, len(s)+len(overrides))
	for k, v := range s {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// Parse normalises a user supplied emoji. Blank input yields ok == false.
// A bare numeric ID is turned into custom emoji markup.
func Parse(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if isDigits(value) {
		return "<:custom:" + value + ">", true
	}
	return value, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var customEmojiRegex = regexp.MustCompile(`^<(a?):([A-Za-z0-9_~]+):([0-9]+)>$`)

// ComponentEmoji converts emoji text into the form button components expect.
func ComponentEmoji(value string) *discordgo.ComponentEmoji {
	if value == "" {
		return nil
	}
	if m := customEmojiRegex.FindStringSubmatch(value); m != nil {
		return &discordgo.ComponentEmoji{
			Name:     m[2],
			ID:       m[3],
			Animated: m[1] == "a",
		}
	}
	return &discordgo.ComponentEmoji{Name: value}
}
