// Package api provides handlers for external APIs and interfaces
package api

import (
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mzivkov/bikedash/internal/usecases"
)

// TelegramBot handles interactions with the Telegram API
type TelegramBot struct {
	bot         *tgbotapi.BotAPI
	useCase     *usecases.TripUseCase
	defaultYear int
}

// NewTelegramBot creates a new Telegram bot handler
func NewTelegramBot(botToken string, useCase *usecases.TripUseCase, defaultYear int) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %v", err)
	}

	return &TelegramBot{
		bot:         bot,
		useCase:     useCase,
		defaultYear: defaultYear,
	}, nil
}

// Start begins listening for and handling Telegram messages
func (t *TelegramBot) Start() {
	log.Printf("Authorized on Telegram account %s", t.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	log.Println("Bot is now listening for messages...")

	for update := range updates {
		if update.Message == nil {
			continue
		}

		// Log incoming messages
		log.Printf("Received message from %s (ID: %d): %s",
			update.Message.From.UserName,
			update.Message.From.ID,
			update.Message.Text)

		t.handleMessage(update)
	}
}

// handleMessage processes a Telegram message update
func (t *TelegramBot) handleMessage(update tgbotapi.Update) {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")

	if update.Message.IsCommand() {
		t.handleCommand(update.Message, &msg)
	} else {
		msg.Text = "I only understand commands. Use /help to see what I can do."
	}

	log.Printf("Sending response to user %s", update.Message.From.UserName)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// handleCommand processes commands like /start, /help, etc.
func (t *TelegramBot) handleCommand(message *tgbotapi.Message, msg *tgbotapi.MessageConfig) {
	switch message.Command() {
	case "start":
		log.Printf("Handling /start command for user %s", message.From.UserName)
		msg.Text = "Welcome to the Bike Dash bot! Use /months for monthly ride totals or /top for the busiest stations."

	case "help":
		log.Printf("Handling /help command for user %s", message.From.UserName)
		msg.Text = "Available commands:\n" +
			"/start - Start the bot\n" +
			"/months [year] - Monthly ride totals\n" +
			"/top - Top stations for the latest month\n" +
			"/help - Show this help message"

	case "months":
		args := message.CommandArguments()
		log.Printf("Handling /months command with args '%s' for user %s", args, message.From.UserName)
		year := t.defaultYear
		if args != "" {
			parsed, err := strconv.Atoi(args)
			if err != nil {
				msg.Text = "That doesn't look like a year. Example: /months 2025"
				return
			}
			year = parsed
		}
		t.handleMonthsCommand(year, msg)

	case "top":
		log.Printf("Handling /top command for user %s", message.From.UserName)
		t.handleTopCommand(msg)

	default:
		log.Printf("Received unknown command /%s from user %s", message.Command(), message.From.UserName)
		msg.Text = "Unknown command. Use /help to see available commands."
	}
}

// handleMonthsCommand processes the /months command
func (t *TelegramBot) handleMonthsCommand(year int, msg *tgbotapi.MessageConfig) {
	totals, err := t.useCase.GetMonthlyTotals(year)
	if err != nil {
		msg.Text = "Error fetching monthly totals. Please try again later."
		log.Printf("Error fetching monthly totals: %v", err)
		return
	}

	msg.Text = t.useCase.FormatMonthlyTotals(totals)

	if lastUpdate, err := t.useCase.GetLastUpdateTime(); err == nil && !lastUpdate.IsZero() {
		msg.Text += fmt.Sprintf("\n🕒 Last update: %s", lastUpdate.Format("2006-01-02 15:04:05"))
	}
}

// handleTopCommand processes the /top command
func (t *TelegramBot) handleTopCommand(msg *tgbotapi.MessageConfig) {
	report, err := t.useCase.GetTopStations()
	if err != nil {
		msg.Text = "Error fetching the top stations report. Please try again later."
		log.Printf("Error fetching top stations report: %v", err)
		return
	}

	msg.Text = t.useCase.FormatTopStations(report)
}
