package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/QJQnova/Eps-sub001/internal/models"
	"github.com/QJQnova/Eps-sub001/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultCategoryName = "Инструменты"
	defaultCategoryIcon = "tool"
	defaultSlugAttempts = 50
)

type keywordRule struct {
	keys  []string
	value string
}

// Product name keywords -> category, for rows that carry no category.
var categoryGuesses = []keywordRule{
	{[]string{"дрель", "drill"}, "Дрели"},
	{[]string{"шуруповерт", "шуруповёрт", "screwdriv"}, "Шуруповерты"},
	{[]string{"гайковерт", "гайковёрт", "impact"}, "Гайковерты"},
	{[]string{"перфоратор", "hammer"}, "Перфораторы"},
	{[]string{"болгарк", "ушм", "grinder"}, "Болгарки"},
	{[]string{"лобзик", "jigsaw"}, "Лобзики"},
	{[]string{"пила", "saw"}, "Пилы"},
	{[]string{"рубанок", "planer"}, "Рубанки"},
	{[]string{"фрезер", "router"}, "Фрезеры"},
	{[]string{"миксер", "mixer"}, "Миксеры"},
	{[]string{"генератор", "generator"}, "Генераторы"},
	{[]string{"компрессор", "compressor"}, "Компрессоры"},
	{[]string{"сварочн", "weld"}, "Сварочное оборудование"},
	{[]string{"краскопульт", "spray"}, "Краскопульты"},
	{[]string{"насос", "pump"}, "Насосы"},
	{[]string{"полировальн", "polish"}, "Полировальные машины"},
	{[]string{"паяльник", "solder"}, "Паяльники"},
	{[]string{"фен", "heat gun"}, "Фены технические"},
	{[]string{"пневмо", "pneumatic"}, "Пневмоинструменты"},
	{[]string{"штангенциркул", "линейка", "рулетка", "уровень", "measur"}, "Измерительные инструменты"},
	{[]string{"отвертка", "отвёртка", "ключ", "молоток", "плоскогубцы"}, "Ручной инструмент"},
	{[]string{"газонокосил", "триммер", "секатор"}, "Садовая техника"},
	{[]string{"станок", "machine"}, "Станки"},
}

// Category name keywords -> icon shown in the storefront menu.
var categoryIcons = []keywordRule{
	{[]string{"дрел", "перфоратор", "электроинструмент"}, "drill"},
	{[]string{"шуруповерт", "гайковерт", "отверт"}, "screwdriver"},
	{[]string{"болгарк", "шлиф", "полир"}, "disc"},
	{[]string{"пил", "лобзик"}, "saw"},
	{[]string{"свар", "паяльн"}, "sparkles"},
	{[]string{"измер"}, "ruler"},
	{[]string{"ручн", "молот"}, "hammer"},
	{[]string{"компрессор", "пневмо"}, "wind"},
	{[]string{"генератор", "электрообор"}, "zap"},
	{[]string{"насос"}, "droplet"},
	{[]string{"сад"}, "leaf"},
	{[]string{"строител", "станк"}, "construction"},
}

func matchKeyword(s string, rules []keywordRule, fallback string) string {
	ls := strings.ToLower(s)
	for _, r := range rules {
		if containsAny(ls, r.keys) {
			return r.value
		}
	}
	return fallback
}

// GuessCategory picks a category name from a product name.
func GuessCategory(productName string) string {
	return matchKeyword(productName, categoryGuesses, defaultCategoryName)
}

// IconFor picks the menu icon of a new category.
func IconFor(categoryName string) string {
	return matchKeyword(categoryName, categoryIcons, defaultCategoryIcon)
}

// CategoryResolver turns category names into ids, creating categories on
// first sight. Its cache lives for one import run.
type CategoryResolver struct {
	store       Store
	logger      *zap.Logger
	cache       map[string]uint
	maxAttempts int
	created     []uint
}

func NewCategoryResolver(store Store, logger *zap.Logger) *CategoryResolver {
	return &CategoryResolver{
		store:       store,
		logger:      logger,
		cache:       make(map[string]uint),
		maxAttempts: defaultSlugAttempts,
	}
}

// Resolve returns the id of the category called name: from the run cache,
// then the store by exact name, otherwise a newly created category. A slug
// collision retries with -1, -2, ...; any other failure is returned.
func (r *CategoryResolver) Resolve(ctx context.Context, name string) (uint, error) {
	name = cleanCell(name)
	if name == "" {
		return 0, fmt.Errorf("empty category name")
	}
	if id, ok := r.cache[name]; ok {
		return id, nil
	}

	existing, err := r.store.FindCategoryByName(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to look up category %q: %w", name, err)
	}
	if existing != nil {
		r.cache[name] = existing.ID
		return existing.ID, nil
	}

	base := Slugify(name)
	description := "Категория " + name
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		slug := base
		if attempt > 0 {
			slug = fmt.Sprintf("%s-%d", base, attempt)
		}
		cat := &models.Category{
			Name:        name,
			Slug:        slug,
			Description: &description,
			Icon:        IconFor(name),
		}
		err := r.store.CreateCategory(ctx, cat)
		if err == nil {
			r.cache[name] = cat.ID
			r.created = append(r.created, cat.ID)
			r.logger.Info("Category created",
				zap.String("name", name),
				zap.String("slug", slug),
				zap.Uint("id", cat.ID),
			)
			return cat.ID, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return 0, fmt.Errorf("failed to create category %q: %w", name, err)
		}
	}
	return 0, fmt.Errorf("no free slug for category %q after %d attempts", name, r.maxAttempts)
}

// Created returns the ids of categories created during the run.
func (r *CategoryResolver) Created() []uint {
	return r.created
}
