// AngelaMos | 2026
// service.go

package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/menu"
)

var ErrEmptyReply = errors.New("assistant returned no reply")

const instructions = `You are a friendly and helpful assistant for the Smart Cafeteria System.
Answer questions about the menu, help users decide what to eat, and give information about the cafeteria.
Base your answers strictly on the menu below. Politely decline questions unrelated to the cafeteria or its menu.
Keep answers concise, friendly and relevant.`

// MenuSource lists the entries currently offered.
type MenuSource interface {
	ListAvailable(ctx context.Context) ([]menu.MenuItem, error)
}

type Service struct {
	menus     MenuSource
	generator Generator
	logger    *slog.Logger
}

func NewService(menus MenuSource, generator Generator, logger *slog.Logger) *Service {
	return &Service{menus: menus, generator: generator, logger: logger}
}

func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("chat: message required: %w", core.ErrInvalidInput)
	}

	items, err := s.menus.ListAvailable(ctx)
	if err != nil {
		return "", err
	}

	reply, err := s.generator.Generate(ctx, SystemPrompt(items), message)
	if err != nil {
		s.logger.Error("assistant generation failed", "error", err)
		return "", err
	}

	return reply, nil
}

// SystemPrompt renders the instructions followed by the menu grouped by
// category in first-seen order.
func SystemPrompt(items []menu.MenuItem) string {
	var order []string
	grouped := make(map[string][]string)

	for _, it := range items {
		if _, seen := grouped[it.Category]; !seen {
			order = append(order, it.Category)
		}
		grouped[it.Category] = append(grouped[it.Category],
			fmt.Sprintf("- %s ($%s): %s", it.Name, it.Price.String(), it.Description))
	}

	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\nHere is the current menu:\n")
	for _, category := range order {
		b.WriteString("\nCategory: ")
		b.WriteString(category)
		b.WriteString("\n")
		b.WriteString(strings.Join(grouped[category], "\n"))
		b.WriteString("\n")
	}

	return b.String()
}
