package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glizzus/sound-panel/internal/config"
	"github.com/glizzus/sound-panel/internal/emoji"
	"github.com/glizzus/sound-panel/internal/lavalink"
	"github.com/glizzus/sound-panel/internal/music"
	"github.com/glizzus/sound-panel/internal/store"
	"github.com/urfave/cli/v2"
)

var stdinReader = bufio.NewReader(os.Stdin)

func prompt(label string) string {
	fmt.Printf("%s: ", label)
	input, _ := stdinReader.ReadString('\n')
	return strings.TrimSpace(input)
}

var guildFlag = &cli.StringFlag{
	Name:     "guild-id",
	Usage:    "ID of the guild",
	Required: true,
}

// withStore opens the configured store for the duration of fn.
func withStore(ctx context.Context, fn func(store.GuildStore) error) error {
	cfg, err := config.NewStorageConfigFromEnv()
	if err != nil {
		return cli.Exit("Invalid storage config: "+err.Error(), 1)
	}
	s, err := store.Open(ctx, cfg)
	if err != nil {
		return cli.Exit("Failed to open store: "+err.Error(), 1)
	}
	defer s.Close()
	return fn(s)
}

func emojiRegistry(s store.GuildStore) (*emoji.Registry, error) {
	cfg, err := config.NewEmojiConfigFromEnv()
	if err != nil {
		return nil, cli.Exit("Invalid emoji config: "+err.Error(), 1)
	}
	return emoji.NewRegistry(emoji.Defaults(cfg), s), nil
}

func emojiFlags() []cli.Flag {
	flags := []cli.Flag{guildFlag}
	for _, k := range emoji.Keys {
		flags = append(flags, &cli.StringFlag{
			Name:  string(k),
			Usage: "Emoji for the " + string(k) + " button",
		})
	}
	return flags
}

var emojisCommand = &cli.Command{
	Name:  "emojis",
	Usage: "Inspect and change a guild's panel emojis",
	Subcommands: []*cli.Command{
		{
			Name:  "show",
			Usage: "Print the emojis a guild's panel uses",
			Flags: []cli.Flag{guildFlag},
			Action: func(c *cli.Context) error {
				return withStore(c.Context, func(s store.GuildStore) error {
					registry, err := emojiRegistry(s)
					if err != nil {
						return err
					}
					set, err := registry.ForGuild(c.Context, c.String("guild-id"))
					if err != nil {
						return cli.Exit("Failed to load emojis: "+err.Error(), 1)
					}
					for _, k := range emoji.Keys {
						fmt.Printf("%-8s %s\n", k, set[k])
					}
					return nil
				})
			},
		},
		{
			Name:  "set",
			Usage: "Override panel emojis, prompting for each one when no flag is given",
			Flags: emojiFlags(),
			Action: func(c *cli.Context) error {
				raw := make(map[emoji.Key]string)
				for _, k := range emoji.Keys {
					if v := c.String(string(k)); v != "" {
						raw[k] = v
					}
				}
				if len(raw) == 0 {
					for _, k := range emoji.Keys {
						raw[k] = prompt("Emoji for " + string(k) + " (blank keeps the current one)")
					}
				}

				return withStore(c.Context, func(s store.GuildStore) error {
					registry, err := emojiRegistry(s)
					if err != nil {
						return err
					}
					if err := registry.Update(c.Context, c.String("guild-id"), raw); err != nil {
						return cli.Exit("Failed to save emojis: "+err.Error(), 1)
					}
					log.Println("Emojis updated.")
					return nil
				})
			},
		},
	},
}

var channelsCommand = &cli.Command{
	Name:  "channels",
	Usage: "Inspect and change where a guild's panels are posted",
	Subcommands: []*cli.Command{
		{
			Name:  "show",
			Usage: "Print a guild's panel channel",
			Flags: []cli.Flag{guildFlag},
			Action: func(c *cli.Context) error {
				return withStore(c.Context, func(s store.GuildStore) error {
					channelID, err := s.TextChannel(c.Context, c.String("guild-id"))
					if errors.Is(err, store.ErrNotFound) {
						log.Println("No text channel recorded for the specified guild.")
						return nil
					}
					if err != nil {
						return cli.Exit("Failed to read text channel: "+err.Error(), 1)
					}
					fmt.Println(channelID)
					return nil
				})
			},
		},
		{
			Name:  "set",
			Usage: "Record a guild's panel channel",
			Flags: []cli.Flag{
				guildFlag,
				&cli.StringFlag{
					Name:     "channel-id",
					Usage:    "ID of the text channel",
					Required: true,
				},
			},
			Action: func(c *cli.Context) error {
				return withStore(c.Context, func(s store.GuildStore) error {
					if err := s.SetTextChannel(c.Context, c.String("guild-id"), c.String("channel-id")); err != nil {
						return cli.Exit("Failed to save text channel: "+err.Error(), 1)
					}
					log.Println("Text channel saved.")
					return nil
				})
			},
		},
	},
}

var tokensCommand = &cli.Command{
	Name:  "tokens",
	Usage: "Count the configured bot tokens",
	Action: func(c *cli.Context) error {
		tokens := config.LoadTokens(os.Environ())
		if len(tokens) == 0 {
			return cli.Exit("No tokens configured.", 1)
		}
		fmt.Printf("%d token(s) configured\n", len(tokens))
		return nil
	},
}

func lavalinkClient() (*lavalink.RESTClient, *config.LavalinkConfig, error) {
	cfg, err := config.NewLavalinkConfigFromEnv()
	if err != nil {
		return nil, nil, cli.Exit("Invalid lavalink config: "+err.Error(), 1)
	}
	return lavalink.NewRESTClient(cfg.BaseURL(), cfg.Password), cfg, nil
}

var lavalinkCommand = &cli.Command{
	Name:  "lavalink",
	Usage: "Talk to the configured Lavalink node",
	Subcommands: []*cli.Command{
		{
			Name:      "search",
			Usage:     "Resolve a query the way the play command does",
			ArgsUsage: "<query>",
			Action: func(c *cli.Context) error {
				query := strings.Join(c.Args().Slice(), " ")
				if query == "" {
					return cli.Exit("Please provide a query", 1)
				}
				client, cfg, err := lavalinkClient()
				if err != nil {
					return err
				}

				result, err := client.LoadTracks(c.Context, music.Identifier(query, cfg.SearchPrefix))
				if err != nil {
					return cli.Exit("Search failed: "+err.Error(), 1)
				}
				tracks, err := result.Tracks()
				if err != nil {
					return cli.Exit("Search failed: "+err.Error(), 1)
				}
				if len(tracks) == 0 {
					log.Println("No tracks found.")
					return nil
				}
				for _, t := range tracks {
					var uri string
					if t.Info.URI != nil {
						uri = *t.Info.URI
					}
					fmt.Printf("%s\t%s\t%s\n", t.Info.Title, t.Info.Author, uri)
				}
				return nil
			},
		},
		{
			Name:  "version",
			Usage: "Print the node's version",
			Action: func(c *cli.Context) error {
				client, _, err := lavalinkClient()
				if err != nil {
					return err
				}
				version, err := client.Version(c.Context)
				if err != nil {
					return cli.Exit("Failed to reach lavalink: "+err.Error(), 1)
				}
				fmt.Println(version)
				return nil
			},
		},
		{
			Name:  "stats",
			Usage: "Print the node's player count and load",
			Action: func(c *cli.Context) error {
				client, _, err := lavalinkClient()
				if err != nil {
					return err
				}
				stats, err := client.Stats(c.Context)
				if err != nil {
					return cli.Exit("Failed to reach lavalink: "+err.Error(), 1)
				}
				fmt.Printf("players: %d (%d playing)\n", stats.Players, stats.PlayingPlayers)
				fmt.Printf("uptime: %s\n", time.Duration(stats.Uptime)*time.Millisecond)
				fmt.Printf("memory: %d used / %d allocated bytes\n", stats.Memory.Used, stats.Memory.Allocated)
				fmt.Printf("cpu: %d cores, system %.2f, lavalink %.2f\n", stats.CPU.Cores, stats.CPU.SystemLoad, stats.CPU.LavalinkLoad)
				return nil
			},
		},
	},
}

func main() {
	if err := config.LoadEnv(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to load .env file: %v", err)
	}

	app := &cli.App{
		Name:        "sound-panel-cli",
		Description: "A development CLI tool for inspecting Sound Panel without Discord",
		Commands: []*cli.Command{
			emojisCommand,
			channelsCommand,
			tokensCommand,
			lavalinkCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Error running CLI: %v", err)
	}
}
