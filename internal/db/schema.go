package db

import (
	_ "embed"
	"fmt"
	"log"
)

//go:embed schema.sql
var schemaSQL string

// InitSchema применяет схему базы данных. Все выражения написаны как
// IF NOT EXISTS, поэтому повторный запуск безопасен.
func InitSchema() error {
	ctx, cancel := GetContext()
	defer cancel()

	if _, err := Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ошибка при применении схемы: %w", err)
	}

	log.Println("✅ Схема базы данных проверена")
	return nil
}
