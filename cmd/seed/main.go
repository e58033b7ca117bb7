// Command seed creates the items table if needed and loads a batch of
// sample items, for local development and manual testing.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"

	_ "github.com/go-sql-driver/mysql"

	"github.com/rl1809/catalog-service/internal/adapter/storage"
	"github.com/rl1809/catalog-service/internal/core/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id          CHAR(36) PRIMARY KEY,
	name        VARCHAR(255) NOT NULL,
	category    VARCHAR(255) NOT NULL,
	price       DOUBLE NOT NULL,
	stock       INT NOT NULL,
	description TEXT NOT NULL,
	size        VARCHAR(16) NOT NULL DEFAULT 'regular',
	color       VARCHAR(64) NOT NULL,
	image_ref   VARCHAR(512) NOT NULL,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL,
	INDEX idx_items_category (category),
	INDEX idx_items_created_at (created_at)
)`

func main() {
	dsn := flag.String("dsn", "root:root@tcp(localhost:3306)/catalog?parseTime=true", "mysql dsn")
	count := flag.Int("count", 25, "items per category")
	flag.Parse()

	ctx := context.Background()

	db, err := sql.Open("mysql", *dsn)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		log.Fatalf("failed to create schema: %v", err)
	}

	items := storage.NewMySQLAdapter(db)

	categories := []string{"shoes", "shirts", "hats"}
	colors := []string{"black", "white", "red", "blue"}
	sizes := []domain.Size{domain.SizeS, domain.SizeM, domain.SizeL, domain.SizeRegular}

	created := 0
	for _, category := range categories {
		for i := 0; i < *count; i++ {
			item := &domain.Item{
				Name:        fmt.Sprintf("sample %s %d", category, i+1),
				Category:    category,
				Price:       float64(10 + i*5),
				Stock:       10 + i,
				Description: fmt.Sprintf("seeded %s number %d", category, i+1),
				Size:        sizes[i%len(sizes)],
				Color:       colors[i%len(colors)],
				ImageRef:    fmt.Sprintf("uploads/sample-%s-%d.jpg", category, i+1),
			}
			if err := items.Create(ctx, item); err != nil {
				log.Fatalf("failed to create item: %v", err)
			}
			created++
		}
	}

	log.Printf("seeded %d items across %d categories", created, len(categories))
}
