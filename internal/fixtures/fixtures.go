// Package fixtures содержит начальные наборы категорий и товаров для кассы.
package fixtures

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// DefaultLocale: набор, который используется, если локаль не задана.
const DefaultLocale = "fr"

//go:embed data/*.yaml
var dataFS embed.FS

// ErrUnknownLocale возвращается, если встроенного набора для локали нет.
var ErrUnknownLocale = errors.New("unknown fixture locale")

// Load возвращает встроенный набор для локали ("fr", "en").
func Load(locale string) (domain.Fixtures, error) {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		locale = DefaultLocale
	}

	raw, err := dataFS.ReadFile("data/" + locale + ".yaml")
	if err != nil {
		return domain.Fixtures{}, fmt.Errorf("%w: %s", ErrUnknownLocale, locale)
	}
	return Parse(raw)
}

// LoadFile читает набор из внешнего YAML-файла.
func LoadFile(path string) (domain.Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Fixtures{}, fmt.Errorf("read fixture file %s: %w", path, err)
	}
	return Parse(raw)
}

// Resolve выбирает источник: внешний файл важнее локали.
func Resolve(locale, path string) (domain.Fixtures, error) {
	if strings.TrimSpace(path) != "" {
		return LoadFile(path)
	}
	return Load(locale)
}

// Parse разбирает YAML и проверяет целостность набора.
func Parse(raw []byte) (domain.Fixtures, error) {
	var f domain.Fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return domain.Fixtures{}, fmt.Errorf("decode fixtures: %w", err)
	}
	if err := validate(f); err != nil {
		return domain.Fixtures{}, err
	}
	return f, nil
}

func validate(f domain.Fixtures) error {
	categories := make(map[string]struct{}, len(f.Categories))
	for i, c := range f.Categories {
		if c.ID == "" || c.Label == "" {
			return fmt.Errorf("fixtures: category[%d] needs id and label", i)
		}
		if _, dup := categories[c.ID]; dup {
			return fmt.Errorf("fixtures: duplicate category id %q", c.ID)
		}
		categories[c.ID] = struct{}{}
	}

	products := make(map[string]struct{}, len(f.Products))
	for i, p := range f.Products {
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("fixtures: product[%d] needs id and name", i)
		}
		if _, dup := products[p.ID]; dup {
			return fmt.Errorf("fixtures: duplicate product id %q", p.ID)
		}
		if p.Price < 0 {
			return fmt.Errorf("fixtures: product %q has negative price", p.ID)
		}
		if _, ok := categories[p.CategoryID]; !ok {
			return fmt.Errorf("fixtures: product %q references unknown category %q", p.ID, p.CategoryID)
		}
		products[p.ID] = struct{}{}
	}
	return nil
}
