package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/logger"

	"llmchat/internal/config"
	"llmchat/internal/database"
	"llmchat/internal/models"
	"llmchat/internal/services"
	"llmchat/internal/storage"
)

const helpText = `Commands:
  /new              start a new conversation
  /list             list conversations
  /switch <n|id>    switch to a conversation
  /delete [n|id]    delete a conversation (current by default)
  /image <prompt>   generate an image with the current provider
  /model [id]       show providers and models, or select a model
  /help             show this help
  /quit             exit`

var (
	userLabel      = color.New(color.FgGreen, color.Bold).SprintFunc()
	assistantLabel = color.New(color.FgCyan, color.Bold).SprintFunc()
	infoText       = color.New(color.FgYellow).SprintFunc()
	errorText      = color.New(color.FgRed).SprintFunc()
	dimText        = color.New(color.Faint).SprintFunc()
)

// App struct
type App struct {
	ctx     context.Context
	cfg     *config.Config
	in      io.Reader
	out     io.Writer
	storage storage.Storage
	factory services.ProviderFactory
	svc     *services.Services
}

// NewApp creates a new App application struct
func NewApp(cfg *config.Config, in io.Reader, out io.Writer) *App {
	return &App{cfg: cfg, in: in, out: out}
}

// startup opens storage and the keyring, then wires and rehydrates the
// services.
func (a *App) startup(ctx context.Context) error {
	a.ctx = ctx

	st, err := openStorage(a.cfg)
	if err != nil {
		return err
	}
	a.storage = st

	var keys *services.KeyringService
	if a.cfg.Keyring.Enabled() {
		ring, err := services.OpenKeyring(services.KeyringOptions{
			Backend:  a.cfg.Keyring.Backend,
			FileDir:  a.cfg.Keyring.FileDir,
			Password: a.cfg.Keyring.Password,
		})
		if err != nil {
			log.Warn().Err(err).Msg("keyring unavailable, API keys will be stored with settings")
		} else {
			keys = services.NewKeyringService(ring)
		}
	}

	a.svc = services.NewServices(st, keys, a.factory)
	a.svc.Startup(ctx)
	a.seedProviders()
	return nil
}

// shutdown is called when the app is closing. Clean up resources here.
func (a *App) shutdown() {
	if a.storage == nil {
		return
	}
	if err := a.storage.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close storage")
	} else {
		log.Debug().Msg("storage closed")
	}
	a.storage = nil
}

func openStorage(cfg *config.Config) (storage.Storage, error) {
	backend, err := storage.ParseType(cfg.Storage.Backend)
	if err != nil {
		return nil, err
	}

	switch backend {
	case storage.TypeMemory:
		return storage.NewMemory(), nil
	case storage.TypeRedis:
		return storage.NewRedis(storage.RedisConfig{
			Host:      cfg.Redis.Host,
			Port:      cfg.Redis.Port,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
	default:
		db, err := database.Init(database.Config{
			Path:     cfg.Storage.DBPath,
			LogLevel: logger.Warn,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return storage.NewSQLite(db), nil
	}
}

// seedProviders registers providers whose credentials come from the
// environment and applies the configured selection.
func (a *App) seedProviders() {
	settings := a.svc.Settings
	for _, env := range a.cfg.Providers {
		if _, ok := settings.Provider(env.ID); ok {
			upd := services.ProviderUpdate{APIKey: &env.APIKey}
			if env.APIBase != "" {
				upd.APIBase = &env.APIBase
			}
			if err := settings.UpdateProvider(env.ID, upd); err != nil {
				log.Warn().Err(err).Str("provider_id", env.ID).Msg("failed to update provider")
			}
			continue
		}

		preset, ok := services.PresetProvider(env.ID)
		if !ok {
			log.Warn().Str("provider_id", env.ID).Msg("no preset for provider")
			continue
		}
		cfg := models.ProviderConfig{Provider: preset, APIKey: env.APIKey, APIBase: env.APIBase}
		if err := settings.AddProvider(cfg); err != nil {
			log.Warn().Err(err).Str("provider_id", env.ID).Msg("failed to add provider")
		}
	}

	if id := a.cfg.Chat.Provider; id != "" {
		if err := settings.SetDefaultProvider(id); err != nil {
			log.Warn().Err(err).Msg("configured provider not available")
		}
	}
	if id := a.cfg.Chat.Model; id != "" {
		if err := settings.SelectModel(id); err != nil {
			log.Warn().Err(err).Msg("configured model not available")
		}
	}
}

// Run reads lines until /quit, end of input or cancellation.
func (a *App) Run(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(a.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	a.printBanner()
	for {
		fmt.Fprint(a.out, userLabel("You: "))
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(a.out)
				return nil
			}
			line = strings.TrimSpace(l)
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := a.handleCommand(ctx, line); quit {
				return nil
			}
			continue
		}
		a.send(ctx, line)
	}
}

func (a *App) printBanner() {
	fmt.Fprintln(a.out, assistantLabel("llmchat"))
	if p, m, ok := a.svc.Settings.DefaultSelection(); ok {
		fmt.Fprintf(a.out, "Using %s / %s\n", p.Name, m.Name)
	} else {
		fmt.Fprintln(a.out, infoText("No provider configured. Set OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY."))
	}
	fmt.Fprintln(a.out, dimText("Type /help for commands."))
	fmt.Fprintln(a.out)
}

func (a *App) currentChat() string {
	p, m, _ := a.svc.Settings.DefaultSelection()
	return a.svc.Chats.GetOrCreateChat(p.ID, m.ID)
}

func (a *App) send(ctx context.Context, content string) {
	chatID := a.currentChat()

	fmt.Fprint(a.out, assistantLabel("Assistant: "))
	printed := 0
	_, err := a.svc.Conversations.Send(ctx, chatID, content, func(text string) {
		if len(text) > printed {
			fmt.Fprint(a.out, text[printed:])
			printed = len(text)
		}
	})
	fmt.Fprintln(a.out)
	if err != nil {
		fmt.Fprintln(a.out, errorText("Error: "+err.Error()))
		return
	}

	if chat, ok := a.svc.Chats.GetChat(chatID); ok && printed > 0 {
		fmt.Fprintln(a.out, dimText("["+chat.Title+"]"))
	}
	fmt.Fprintln(a.out)
}

func (a *App) handleCommand(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(a.out, helpText)
	case "/new":
		p, m, _ := a.svc.Settings.DefaultSelection()
		a.svc.Chats.CreateNewChat(p.ID, m.ID)
		fmt.Fprintln(a.out, infoText("Started a new conversation."))
	case "/list":
		a.listChats()
	case "/switch":
		id, ok := a.resolveChat(arg)
		if !ok || !a.svc.Chats.SetCurrentChat(id) {
			fmt.Fprintln(a.out, errorText("No such conversation: "+arg))
			return false
		}
		a.printHistory(id)
	case "/delete":
		id := a.svc.Chats.CurrentChatID()
		if arg != "" {
			id, _ = a.resolveChat(arg)
		}
		if !a.svc.Chats.DeleteChat(id) {
			fmt.Fprintln(a.out, errorText("No such conversation."))
			return false
		}
		fmt.Fprintln(a.out, infoText("Conversation deleted."))
	case "/image":
		a.generateImage(ctx, arg)
	case "/model":
		a.model(arg)
	default:
		fmt.Fprintln(a.out, errorText("Unknown command "+cmd+". Type /help."))
	}
	return false
}

func (a *App) listChats() {
	chats := a.svc.Chats.ListChats()
	if len(chats) == 0 {
		fmt.Fprintln(a.out, infoText("No conversations yet."))
		return
	}
	current := a.svc.Chats.CurrentChatID()
	for i, c := range chats {
		marker := " "
		if c.ID == current {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %2d. %s %s\n", marker, i+1, c.Title, dimText(fmt.Sprintf("(%d messages)", len(c.Messages))))
	}
}

// resolveChat accepts a 1-based index into /list output or a chat id.
func (a *App) resolveChat(arg string) (string, bool) {
	if arg == "" {
		return "", false
	}
	chats := a.svc.Chats.ListChats()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(chats) {
			return "", false
		}
		return chats[n-1].ID, true
	}
	for _, c := range chats {
		if c.ID == arg {
			return c.ID, true
		}
	}
	return "", false
}

func (a *App) printHistory(chatID string) {
	chat, ok := a.svc.Chats.GetChat(chatID)
	if !ok {
		return
	}
	fmt.Fprintln(a.out, infoText("Switched to "+chat.Title))
	for _, m := range chat.Messages {
		label := userLabel("You: ")
		if m.Role != models.RoleUser {
			label = assistantLabel("Assistant: ")
		}
		fmt.Fprintln(a.out, label+m.Content)
	}
}

func (a *App) generateImage(ctx context.Context, prompt string) {
	if prompt == "" {
		fmt.Fprintln(a.out, errorText("Usage: /image <prompt>"))
		return
	}
	images, err := a.svc.Conversations.GenerateImage(ctx, a.currentChat(), prompt, 1)
	if err != nil {
		if errors.Is(err, services.ErrCapabilityNotSupported) {
			fmt.Fprintln(a.out, errorText("The current provider cannot generate images."))
			return
		}
		fmt.Fprintln(a.out, errorText("Error: "+err.Error()))
		return
	}
	for _, img := range images {
		fmt.Fprintln(a.out, assistantLabel("Image: ")+img.URL)
	}
}

func (a *App) model(arg string) {
	settings := a.svc.Settings
	if arg != "" {
		if err := settings.SelectModel(arg); err != nil {
			fmt.Fprintln(a.out, errorText("Error: "+err.Error()))
			return
		}
	}

	_, current, _ := settings.DefaultSelection()
	providers := settings.Providers()
	if len(providers) == 0 {
		fmt.Fprintln(a.out, infoText("No providers configured."))
		return
	}
	stored := a.storedKeys()
	for _, p := range providers {
		header := p.Name
		if stored != nil {
			if stored[p.ID] {
				header += dimText(" (key in keyring)")
			} else {
				header += dimText(" (no key in keyring)")
			}
		}
		fmt.Fprintln(a.out, header)
		for _, m := range p.SupportedModels {
			marker := " "
			if m.ID == current.ID && m.Provider == current.Provider {
				marker = "*"
			}
			fmt.Fprintf(a.out, "  %s %s %s\n", marker, m.ID, dimText(m.Name))
		}
	}
}

// storedKeys reports which providers hold a keyring entry. It is nil when no
// keyring is attached.
func (a *App) storedKeys() map[string]bool {
	if a.svc.Keyring == nil {
		return nil
	}
	ids, err := a.svc.Keyring.ListApiKeys()
	if err != nil {
		log.Warn().Err(err).Msg("failed to list keyring entries")
		return nil
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}
