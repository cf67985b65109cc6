package command

// comments.go follows one anime's comment section live: the feed is seeded
// from the REST API and kept in sync by the realtime channel, so comments
// from other viewers appear as they happen.

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"animehub/pkg/commentfeed"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var commentsCmd = &cobra.Command{
	Use:   "comments [anime-id]",
	Short: "Follow an anime's comment section live",
	Long: `Open a live view of an anime's comments. New comments, edits, deletions and
likes from other viewers stream in over the realtime channel.

Input commands:
  /post <text>    post a new comment
  /edit <id> <text>  edit your comment
  /del <id>       delete your comment
  /like <id>      toggle your like on a comment
  /more           load an older page
  /quit           leave`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		animeID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid anime ID: %w", err)
		}
		if token == "" {
			return fmt.Errorf("no token; run `animehubCLI auth login` first")
		}

		channel, err := commentfeed.NewWSChannel(wsURL, token)
		if err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}

		rest := commentfeed.NewRestClient(apiURL, token)
		feed := commentfeed.NewFeed(rest, channel, 10)

		// OnChange runs with the feed lock held, so just nudge the render
		// goroutine instead of rendering inline
		changed := make(chan struct{}, 1)
		feed.OnChange = func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		}
		go func() {
			for range changed {
				renderFeed(feed)
			}
		}()

		fmt.Printf("\n🔌 Opening comment section for anime %d...\n", animeID)
		if err := feed.Open(animeID); err != nil {
			channel.Close()
			return fmt.Errorf("failed to open feed: %w", err)
		}
		defer func() {
			feed.Close()
			channel.Close()
		}()

		renderFeed(feed)
		fmt.Println("✅ Live! Type /post <text> to comment (or /quit to exit)")

		// Channel for interrupt signal
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)

		// Goroutine to read input commands
		go func() {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "/quit" {
					interrupt <- os.Interrupt
					return
				}
				if err := handleInput(feed, line); err != nil {
					color.Red("✗ %v", err)
				}
			}
		}()

		// Wait for interrupt
		<-interrupt
		fmt.Println("Leaving comment section...")
		return nil
	},
}

func handleInput(feed *commentfeed.Feed, line string) error {
	switch {
	case strings.HasPrefix(line, "/post "):
		_, err := feed.Post(strings.TrimPrefix(line, "/post "))
		return err
	case strings.HasPrefix(line, "/edit "):
		rest := strings.TrimPrefix(line, "/edit ")
		parts := strings.SplitN(rest, " ", 2)
		if len(parts) != 2 {
			return fmt.Errorf("usage: /edit <id> <text>")
		}
		_, err := feed.Edit(parts[0], parts[1])
		return err
	case strings.HasPrefix(line, "/del "):
		return feed.Delete(strings.TrimPrefix(line, "/del "))
	case strings.HasPrefix(line, "/like "):
		_, err := feed.ToggleLike(strings.TrimPrefix(line, "/like "))
		return err
	case line == "/more":
		return feed.LoadMore()
	case line == "":
		return nil
	default:
		return fmt.Errorf("unknown command: %s", line)
	}
}

func renderFeed(feed *commentfeed.Feed) {
	comments := feed.Comments()
	fmt.Println()
	color.Yellow("── %d comments cached ──", len(comments))
	for _, cm := range comments {
		likes := ""
		if cm.LikeCount > 0 {
			likes = fmt.Sprintf(" ❤ %d", cm.LikeCount)
		}
		color.Cyan("[%s] %s%s", cm.Username, cm.Content, likes)
		color.White("    id=%s  %s", cm.ID, cm.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if feed.HasMore() {
		color.Yellow("── /more to load older comments ──")
	}
}

func init() {
	rootCmd.AddCommand(commentsCmd)
}
