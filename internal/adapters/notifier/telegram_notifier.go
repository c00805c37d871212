package notifier_adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"monitoring-service/internal/contextkeys"
	"monitoring-service/internal/core/domain"
	"monitoring-service/internal/core/port"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const defaultTelegramAPIBaseURL = "https://api.telegram.org"

// Пауза между сообщениями одному чату, чтобы не упереться в лимиты Bot API
const messageDelay = 500 * time.Millisecond

// Цены показываем в испанской записи: 250.000 €
var pricePrinter = message.NewPrinter(language.Spanish)

// TelegramNotifier доставляет подборку новых объявлений в чаты через
// Telegram Bot API: одно сводное сообщение и по сообщению на объявление.
type TelegramNotifier struct {
	apiBaseURL string
	botToken   string
	chatIDs    []string
	httpClient *http.Client
}

// NewTelegramNotifier создает новый экземпляр TelegramNotifier.
// Пустой apiBaseURL означает боевой адрес Bot API.
func NewTelegramNotifier(apiBaseURL, botToken string, chatIDs []string) (*TelegramNotifier, error) {
	if botToken == "" {
		return nil, fmt.Errorf("telegram notifier: botToken cannot be empty")
	}
	if len(chatIDs) == 0 {
		return nil, fmt.Errorf("telegram notifier: at least one chat id is required")
	}
	if apiBaseURL == "" {
		apiBaseURL = defaultTelegramAPIBaseURL
	}

	return &TelegramNotifier{
		apiBaseURL: apiBaseURL,
		botToken:   botToken,
		chatIDs:    chatIDs,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Name возвращает идентификатор уведомителя
func (n *TelegramNotifier) Name() string {
	return "telegram"
}

// Notify отправляет сводку и карточки объявлений во все настроенные чаты.
// Сбой одного чата не мешает доставке в остальные.
func (n *TelegramNotifier) Notify(ctx context.Context, runID uuid.UUID, profileName string, listings []domain.Listing) error {
	logger := contextkeys.LoggerFromContext(ctx)
	notifierLogger := logger.WithFields(port.Fields{
		"component": "TelegramNotifier",
		"profile":   profileName,
		"run_id":    runID.String(),
	})

	if len(listings) == 0 {
		return nil
	}

	summary := buildSummaryMessage(profileName, listings)
	cards := make([]string, 0, len(listings))
	for _, listing := range listings {
		cards = append(cards, buildListingMessage(listing))
	}

	var failed int
	for _, chatID := range n.chatIDs {
		if err := n.sendToChat(ctx, chatID, summary, cards); err != nil {
			notifierLogger.Error("Failed to deliver notification to chat", err, port.Fields{"chat_id": chatID})
			failed++
			continue
		}
		notifierLogger.Info("Notification delivered to chat", port.Fields{
			"chat_id":  chatID,
			"listings": len(cards),
		})
	}

	if failed == len(n.chatIDs) {
		return &domain.NotifierError{
			Notifier: n.Name(),
			Err:      fmt.Errorf("delivery failed for all %d chats", failed),
		}
	}
	return nil
}

func (n *TelegramNotifier) sendToChat(ctx context.Context, chatID, summary string, cards []string) error {
	// Сводка без превью, карточки с превью первой ссылки
	if err := n.sendMessage(ctx, chatID, summary, true); err != nil {
		return err
	}

	for _, card := range cards {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(messageDelay):
		}

		if err := n.sendMessage(ctx, chatID, card, false); err != nil {
			return err
		}
	}
	return nil
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (n *TelegramNotifier) sendMessage(ctx context.Context, chatID, text string, disablePreview bool) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: disablePreview,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sendMessage request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBaseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendMessage request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram returned non-success status code %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("failed to decode sendMessage response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram rejected message: %s", apiResp.Description)
	}
	return nil
}

// buildSummaryMessage собирает сводное сообщение по подборке
func buildSummaryMessage(profileName string, listings []domain.Listing) string {
	lines := []string{
		"🏠 <b>NUEVOS PISOS ENCONTRADOS</b>",
		"",
		fmt.Sprintf("📊 Total: <b>%d</b> anuncios", len(listings)),
		"📅 " + time.Now().Format("02/01/2006 15:04"),
	}

	if profileName != "" {
		lines = append(lines, "🔍 Perfil: "+profileName)
	}

	perSource := make(map[string]int)
	for _, l := range listings {
		perSource[l.Source]++
	}
	if len(perSource) > 0 {
		lines = append(lines, "", "📱 Por portal:")
		for _, source := range sortedByCount(perSource) {
			lines = append(lines, fmt.Sprintf("  • %s: %d", source, perSource[source]))
		}
	}

	var minPrice, maxPrice *float64
	for _, l := range listings {
		if l.Price == nil {
			continue
		}
		if minPrice == nil || *l.Price < *minPrice {
			minPrice = l.Price
		}
		if maxPrice == nil || *l.Price > *maxPrice {
			maxPrice = l.Price
		}
	}
	if minPrice != nil {
		lines = append(lines, "", fmt.Sprintf("💰 Precios: %s - %s", formatPrice(*minPrice), formatPrice(*maxPrice)))
	}

	return strings.Join(lines, "\n")
}

// buildListingMessage собирает карточку одного объявления
func buildListingMessage(l domain.Listing) string {
	lines := make([]string, 0, 8)

	title := l.Title
	if title == "" {
		title = "Sin título"
	}
	lines = append(lines, "🏢 <b>"+escapeHTML(truncateText(title, 100))+"</b>")

	if l.Price != nil {
		lines = append(lines, "💰 <b>"+formatPrice(*l.Price)+"</b>")
	} else {
		lines = append(lines, "💰 Consultar precio")
	}

	lines = append(lines, "📍 "+escapeHTML(l.Location.String()))

	features := make([]string, 0, 4)
	if l.Bedrooms != nil {
		features = append(features, fmt.Sprintf("🛏 %d hab", *l.Bedrooms))
	}
	if l.Bathrooms != nil {
		features = append(features, fmt.Sprintf("🚿 %d baños", *l.Bathrooms))
	}
	if l.SurfaceArea != nil {
		features = append(features, fmt.Sprintf("📐 %.0f m²", *l.SurfaceArea))
	}
	if l.Floor != nil && *l.Floor != "" {
		features = append(features, "🏢 Planta "+escapeHTML(*l.Floor))
	}
	if len(features) > 0 {
		lines = append(lines, strings.Join(features, " | "))
	}

	extras := make([]string, 0, 6)
	for _, e := range []struct {
		feature string
		label   string
	}{
		{domain.FeatureElevator, "Ascensor"},
		{domain.FeatureParking, "Garaje"},
		{domain.FeaturePool, "Piscina"},
		{domain.FeatureTerrace, "Terraza"},
		{domain.FeatureAC, "A/A"},
		{domain.FeatureStorage, "Trastero"},
	} {
		if l.HasFeature(e.feature) {
			extras = append(extras, e.label)
		}
	}
	if len(extras) > 0 {
		lines = append(lines, "✨ "+strings.Join(extras, ", "))
	}

	if l.Description != "" {
		lines = append(lines, "\n📝 "+escapeHTML(truncateText(l.Description, 150)))
	}

	lines = append(lines, "", fmt.Sprintf("🔗 <a href=\"%s\">Ver en %s</a>", l.URL, escapeHTML(l.Source)))

	return strings.Join(lines, "\n")
}

// sortedByCount возвращает ключи по убыванию счётчика, при равенстве по имени
func sortedByCount(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func formatPrice(price float64) string {
	return pricePrinter.Sprintf("%.0f €", price)
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// truncateText режет по рунам, а не по байтам: в испанском тексте
// срез по байтам может разорвать символ с диакритикой
func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	const suffix = "..."
	return strings.TrimSpace(string(runes[:maxLen-len(suffix)])) + suffix
}
