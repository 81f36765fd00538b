package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/finalyzer/support/backend/internal/config"
	"github.com/finalyzer/support/backend/internal/logging"
	"github.com/finalyzer/support/backend/internal/model/profile"
	"github.com/finalyzer/support/backend/internal/service/webhook"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Warn("failed to load .env, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	message := flag.String("message", "", "question to send to the chat webhook")
	url := flag.String("url", cfg.Webhook.ChatURL, "chat webhook URL")
	name := flag.String("name", "", "userProfile.name to attach; empty sends null")
	email := flag.String("email", "", "userProfile.email to attach")
	timeout := flag.Duration("timeout", 45*time.Second, "request timeout")
	verbose := flag.Bool("v", false, "enable debug logging")

	flag.Parse()

	if *message == "" {
		flag.Usage()
		logrus.Fatal("-message is required")
	}

	logger := logging.New(cfg.Log)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	var p *profile.UserProfile
	if *name != "" {
		p = &profile.UserProfile{Name: *name, Email: *email}
	}

	client := webhook.NewClient(*url, *timeout, logger)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	result := client.Reply(ctx, *message, p)

	fmt.Printf("status:  %s\n", result.Status)
	fmt.Printf("elapsed: %s\n", time.Since(start).Round(time.Millisecond))
	if result.Reason != nil {
		fmt.Printf("reason:  %v\n", result.Reason)
	}
	fmt.Printf("reply:\n%s\n", result.Text)

	if !result.Accepted() {
		os.Exit(1)
	}
}
