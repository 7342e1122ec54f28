// Command-line client that chats with the generator on behalf of an existing account.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"manimate/manimate/config"
	"manimate/manimate/controllers"
	"manimate/manimate/services/llm"
	"manimate/manimate/services/prompts"
	"manimate/manimate/sources/psql"
	"manimate/manimate/sources/psql/dao"
	"manimate/manimate/utils/apperrors"
	"manimate/manimate/utils/color"
	"manimate/manimate/utils/logging"

	"go.uber.org/zap"
)

func main() {
	args := os.Args[1:]
	if len(args) < 2 || args[0] != "connect" {
		fmt.Println("manimate CLI usage:")
		fmt.Println("  manimate connect <email>   # start a new chat session as this user")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.ColorError("configuration error: "+err.Error()))
		os.Exit(1)
	}
	if err := logging.InitLogger(cfg.LogDir, false); err != nil {
		fmt.Fprintln(os.Stderr, color.ColorError("logger init error: "+err.Error()))
		os.Exit(1)
	}
	defer logging.Sync()

	if err := run(cfg, strings.TrimSpace(args[1])); err != nil {
		fmt.Fprintln(os.Stderr, color.ColorError(err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config, email string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database connection error: %w", err)
	}
	defer db.Close()

	catalogue, err := prompts.Load()
	if err != nil {
		return err
	}
	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return err
	}

	user, err := dao.NewUserDAO(db.DB).GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no account for %s", email)
	}

	chat := controllers.NewChatController(dao.NewSessionDAO(db.DB), dao.NewChatMessageDAO(db.DB),
		provider, catalogue, cfg, nil)
	userID := user.ID.String()
	session, err := chat.CreateSession(context.Background(), userID, "")
	if err != nil {
		return err
	}
	sessionID := session.ID.String()
	logging.AppLogger.Info("CLI session started", zap.String("user_id", userID), zap.String("session_id", sessionID))

	fmt.Printf("\n%s\n", color.ColorSuccess("Connected as "+user.FirstName+" <"+user.Email+">"))
	fmt.Println(color.ColorInfo("Session: " + sessionID))
	fmt.Println(color.ColorInfo("Describe an animation to start; follow-ups refine it. Type 'exit' to quit."))
	fmt.Println()

	first := true
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(color.ColorPrompt("manimate> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			break
		}
		if line == "" {
			continue
		}

		if first {
			res, err := chat.GenerateInitialResponse(context.Background(), userID, sessionID, line)
			if err != nil {
				printError(err)
				continue
			}
			first = false
			fmt.Println(color.ColorTitle(res.Script.ChatName))
			fmt.Println(color.ColorInfo(res.Script.Description))
			fmt.Println(color.ColorScript(res.Script.ManimCode))
			fmt.Println()
			continue
		}

		_, err := chat.GenerateFollowUpStream(context.Background(), userID, sessionID, line, func(chunk string) error {
			fmt.Print(color.ColorScript(chunk))
			return nil
		})
		fmt.Println()
		if err != nil {
			printError(err)
		}
	}
	fmt.Println(color.ColorSuccess("Goodbye!"))
	return nil
}

func printError(err error) {
	appErr := apperrors.From(err)
	logging.ErrorLogger.Error("CLI generation failed", zap.Error(appErr))
	fmt.Println(color.ColorError(appErr.Message))
}
