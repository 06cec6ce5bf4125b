package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Delete relies on the schema cascading sale_items away with their parent
// product, so the repository never has to clean them up itself. Pin the
// constraint here so a schema edit cannot silently turn staff deletes of
// sold products into foreign key violations.
func TestSaleItemForeignKeysCascade(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "migrations", "0001_init.sql"))
	require.NoError(t, err)

	var productFK, saleFK string
	for _, line := range strings.Split(string(raw), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "product_id") && strings.Contains(trimmed, "REFERENCES products"):
			productFK = trimmed
		case strings.HasPrefix(trimmed, "sale_id") && strings.Contains(trimmed, "REFERENCES sales"):
			saleFK = trimmed
		}
	}

	require.NotEmpty(t, productFK, "sale_items.product_id foreign key missing")
	require.Contains(t, productFK, "ON DELETE CASCADE")
	require.NotEmpty(t, saleFK, "sale_items.sale_id foreign key missing")
	require.Contains(t, saleFK, "ON DELETE CASCADE")
}
