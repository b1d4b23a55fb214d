package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/transitdir/internal/catalog"
)

// RunWizard runs an interactive configuration wizard and saves the result
// to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to transitdir! Let's configure your route directory.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. City and title.
	cityPrompt := promptui.Prompt{
		Label:   "City",
		Default: cfg.Site.City,
	}
	city, err := cityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("city: %w", err)
	}
	cfg.Site.City = strings.TrimSpace(city)

	titlePrompt := promptui.Prompt{
		Label:   "Site title",
		Default: cfg.Site.City + " Transit Routes",
	}
	title, err := titlePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("title: %w", err)
	}
	cfg.Site.Title = strings.TrimSpace(title)

	// 2. Fare currency.
	currencyPrompt := promptui.Prompt{
		Label:   "Fare currency symbol",
		Default: cfg.Site.Currency,
	}
	currency, err := currencyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("currency: %w", err)
	}
	cfg.Site.Currency = strings.TrimSpace(currency)

	// 3. Page size.
	pageSizePrompt := promptui.Prompt{
		Label:    "Routes per page",
		Default:  strconv.Itoa(cfg.Site.PageSize),
		Validate: validatePositiveInt,
	}
	pageSize, err := pageSizePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("page size: %w", err)
	}
	cfg.Site.PageSize, _ = strconv.Atoi(pageSize)

	// 4. Route data.
	catalogPrompt := promptui.Prompt{
		Label:   "Route file or glob (leave blank for the built-in routes)",
		Default: "",
	}
	source, err := catalogPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	cfg.Site.Catalog = strings.TrimSpace(source)
	if cfg.Site.Catalog != "" {
		cat, err := catalog.Load(cfg.Site.Catalog)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", cfg.Site.Catalog, err)
		}
		fmt.Printf("Found %d routes.\n", cat.Len())
	}

	// 5. Offline storage.
	storagePrompt := promptui.Select{
		Label: "Offline cache storage",
		Items: []string{
			"sqlite - persists between runs",
			"memory - discarded on exit",
		},
	}
	storageIdx, _, err := storagePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("storage selection: %w", err)
	}
	cfg.Offline.Storage = []StorageType{StorageSQLite, StorageMemory}[storageIdx]

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number greater than zero")
	}
	return nil
}
