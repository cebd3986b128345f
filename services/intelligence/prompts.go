package ai

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Prompt names.
const (
	PromptRouterIntent      = "router_intent"
	PromptBookSlotsExtract  = "book_slots_extract"
	PromptCheckSlotsExtract = "check_slots_extract"
	PromptReporter          = "reporter"
)

//go:embed prompts/*.yml
var defaultPrompts embed.FS

type promptFile struct {
	Content string `yaml:"content"`
}

// PromptManager loads <name>.yml prompt files from Dir, falling back to the built-in
// copies, and caches them.
type PromptManager struct {
	Dir string

	mu    sync.Mutex
	cache map[string]string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Dir: dir, cache: make(map[string]string)}
}

// Get returns the prompt content with every {key} of params substituted.
func (p *PromptManager) Get(name string, params map[string]string) (string, error) {
	content, err := p.load(name)
	if err != nil {
		return "", err
	}
	if len(params) == 0 {
		return content, nil
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(content), nil
}

func (p *PromptManager) load(name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if content, ok := p.cache[name]; ok {
		return content, nil
	}

	data, err := p.read(name)
	if err != nil {
		return "", err
	}
	var file promptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return "", fmt.Errorf("invalid prompt yml %s: %w", name, err)
	}
	if strings.TrimSpace(file.Content) == "" {
		return "", fmt.Errorf("prompt %q has no content", name)
	}
	content := strings.TrimSpace(file.Content)
	p.cache[name] = content
	return content, nil
}

func (p *PromptManager) read(name string) ([]byte, error) {
	if p.Dir != "" {
		data, err := os.ReadFile(filepath.Join(p.Dir, name+".yml"))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read prompt %s: %w", name, err)
		}
	}
	data, err := defaultPrompts.ReadFile("prompts/" + name + ".yml")
	if err != nil {
		return nil, fmt.Errorf("prompt file not found: %s", name)
	}
	return data, nil
}
