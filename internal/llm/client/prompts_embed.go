package client

import (
	"embed"
	"fmt"
	"strings"
)

// embeddedPrompts holds the built-in prompt templates so packaged executables
// can load them without needing access to the source tree.
//
//go:embed prompts/*.txt
var embeddedPrompts embed.FS

const (
	PromptTitleSystem = "title_system"
	PromptTitleUser   = "title_user"
)

// Prompt returns the named template with surrounding whitespace removed.
func Prompt(name string) (string, error) {
	data, err := embeddedPrompts.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("prompt %s not found: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}
