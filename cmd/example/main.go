package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	graw "github.com/jamesprial/go-reddit-dispatch"
	"github.com/jamesprial/go-reddit-dispatch/pkg/types"
)

func main() {
	configPath := flag.String("config", "", "path to a yaml config file (optional)")
	user := flag.String("user", "spez", "account to look up")
	post := flag.String("post", "", "fullname of a self post to hydrate, e.g. t3_abc123")
	help := flag.Bool("help-env", false, "print the environment variables understood by the loader")
	flag.Parse()

	if *help {
		text, err := graw.Help()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(text)
		return
	}

	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	settings, err := graw.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config, err := settings.Config()
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	err = run(ctx, config, *user, *post)
	cancel()
	if err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, config *graw.Config, user, post string) error {
	d, err := graw.NewDispatch(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create dispatch: %w", err)
	}
	fmt.Println("Successfully authenticated with Reddit!")

	account := graw.NewUser(d, user)
	futures := []graw.Waiter{account.AboutAsync(ctx)}

	var sp *graw.SelfPost
	if post != "" {
		sp = graw.NewSelfPostStub(d, post, "")
		futures = append(futures, sp.AboutAsync(ctx))
	}

	if err := graw.WaitAll(futures...); err != nil {
		log.Printf("Lookup failed: %v", err)
	}

	if account.Fullname != "" {
		fmt.Printf("\nu/%s (%s)\n", account.Name, account.Fullname)
		fmt.Printf("Link karma: %d, comment karma: %d\n", account.LinkKarma, account.CommentKarma)
		fmt.Printf("Account age: %s\n", account.Age(time.Now()).Round(time.Hour))
	}

	if sp != nil && sp.ID != "" {
		fmt.Printf("\n%s in r/%s (score: %d, comments: %d)\n", sp.Title, sp.Subreddit, sp.Score, sp.NumComments)
		fmt.Printf("%.200s\n", sp.SelfText)
	}

	count, err := unreadCount(ctx, d)
	if err != nil {
		// Only moderators can read modmail.
		log.Printf("Modmail unavailable: %v", err)
		return nil
	}
	fmt.Printf("\nUnread modmail: %d new, %d in progress, %d highlighted\n", count.New, count.InProgress, count.Highlighted)
	return nil
}

func unreadCount(ctx context.Context, d *graw.Dispatch) (*types.ModmailUnreadCount, error) {
	count, err := d.Modmail().UnreadCount(ctx)
	if err != nil {
		return nil, err
	}
	return graw.Validate(count)
}
