package notify

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"pantry-planner/internal/ingredient"
	"pantry-planner/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender delivers a formatted message to a chat.
type Sender interface {
	Send(chatID int64, text string) error
}

// telegramSender sends messages through the Telegram Bot API.
type telegramSender struct {
	api *tgbotapi.BotAPI
}

// NewTelegramSender authenticates against the Telegram Bot API.
func NewTelegramSender(token string) (Sender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	return &telegramSender{api: api}, nil
}

func (s *telegramSender) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// Notifier formats pantry events into chat messages.
type Notifier struct {
	sender Sender
	chatID int64
}

// NewNotifier creates a Notifier targeting a single chat.
func NewNotifier(sender Sender, chatID int64) *Notifier {
	return &Notifier{sender: sender, chatID: chatID}
}

// ExpiringSoon announces ingredients whose expiry date falls within the
// reminder window. Ingredients without an expiry date are skipped by the
// repository query and never reach this method.
func (n *Notifier) ExpiringSoon(items []ingredient.Ingredient, now time.Time) error {
	if len(items) == 0 {
		return nil
	}

	sorted := make([]ingredient.Ingredient, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ExpirationDate.Before(*sorted[j].ExpirationDate)
	})

	var b strings.Builder
	b.WriteString("*Expiring soon*\n")
	for _, item := range sorted {
		days := int(item.ExpirationDate.Sub(now).Hours() / 24)
		switch {
		case days < 0:
			fmt.Fprintf(&b, "- %s (%s): expired\n", item.Name, item.Location)
		case days == 0:
			fmt.Fprintf(&b, "- %s (%s): expires today\n", item.Name, item.Location)
		default:
			fmt.Fprintf(&b, "- %s (%s): %dd left\n", item.Name, item.Location, days)
		}
	}
	return n.sender.Send(n.chatID, b.String())
}

// ShoppingList shares a generated list, grouping unpurchased items first.
func (n *Notifier) ShoppingList(list *shopping.ShoppingList) error {
	var b strings.Builder
	if list.WeekStart != nil {
		fmt.Fprintf(&b, "*%s* (week of %s)\n", list.Name, list.WeekStart.Format("Jan 2"))
	} else {
		fmt.Fprintf(&b, "*%s*\n", list.Name)
	}

	var bought []shopping.ListItem
	for _, item := range list.Items {
		if item.Purchased {
			bought = append(bought, item)
			continue
		}
		b.WriteString(formatItem(item))
	}
	if len(bought) > 0 {
		b.WriteString("\n*Already bought*\n")
		for _, item := range bought {
			b.WriteString(formatItem(item))
		}
	}
	return n.sender.Send(n.chatID, b.String())
}

func formatItem(item shopping.ListItem) string {
	line := fmt.Sprintf("- %s: %s %s", item.Name, trimAmount(item.TotalAmount), item.Unit)
	if item.InInventory && !item.NeedToBuy {
		line += " (have enough)"
	} else if item.InInventory {
		line += fmt.Sprintf(" (have %s)", trimAmount(item.InventoryAmount))
	}
	return line + "\n"
}

func trimAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
