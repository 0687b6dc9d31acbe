package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the tables. Statements run one at a time because the driver
// does not enable multiStatements.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id                CHAR(36)      NOT NULL PRIMARY KEY,
		name              VARCHAR(100)  NOT NULL,
		type              VARCHAR(32)   NOT NULL,
		description       TEXT          NOT NULL,
		cover_image       VARCHAR(512)  NOT NULL,
		additional_images JSON          NOT NULL,
		date_added        DATETIME(3)   NOT NULL,
		is_active         TINYINT(1)    NOT NULL DEFAULT 1,
		tags              JSON          NOT NULL,
		price             DOUBLE        NULL,
		size              VARCHAR(16)   NOT NULL DEFAULT '',
		color             VARCHAR(64)   NOT NULL DEFAULT '',
		brand             VARCHAR(100)  NOT NULL DEFAULT '',
		item_condition    VARCHAR(16)   NOT NULL DEFAULT '',
		created_at        DATETIME(3)   NOT NULL,
		updated_at        DATETIME(3)   NOT NULL,
		INDEX idx_items_type (type),
		INDEX idx_items_date_added (date_added),
		INDEX idx_items_active (is_active),
		FULLTEXT INDEX ft_items_search (name, description, type)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	// item_id is deliberately not a foreign key: enquiries keep pointing at
	// soft-deleted items.
	`CREATE TABLE IF NOT EXISTS enquiries (
		id             CHAR(36)      NOT NULL PRIMARY KEY,
		item_id        CHAR(36)      NOT NULL,
		customer_name  VARCHAR(100)  NOT NULL,
		customer_email VARCHAR(255)  NOT NULL,
		customer_phone VARCHAR(20)   NOT NULL DEFAULT '',
		message        VARCHAR(500)  NOT NULL DEFAULT '',
		status         VARCHAR(16)   NOT NULL DEFAULT 'pending',
		email_sent     TINYINT(1)    NOT NULL DEFAULT 0,
		email_sent_at  DATETIME(3)   NULL,
		created_at     DATETIME(3)   NOT NULL,
		updated_at     DATETIME(3)   NOT NULL,
		INDEX idx_enquiries_item (item_id),
		INDEX idx_enquiries_email (customer_email),
		INDEX idx_enquiries_status (status),
		INDEX idx_enquiries_created (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables. It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("running schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
