package catalog

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// ProductChangedTopic carries catalog product changes.
var ProductChangedTopic = pkgkafka.Topic("catalog", "product.changed")

// ProductChangedData is the payload of a product change event. An empty
// ProductID means the whole catalog changed.
type ProductChangedData struct {
	ProductID string `json:"product_id"`
}

// InvalidationHandler returns a consumer handler that drops cached catalog
// entries when the catalog announces a change.
func InvalidationHandler(c *Client, log *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, event *pkgkafka.Event) error {
		var data ProductChangedData
		if err := event.UnmarshalData(&data); err != nil {
			return fmt.Errorf("decode %s payload: %w", event.EventType, err)
		}
		if data.ProductID == "" {
			data.ProductID = event.AggregateID
		}

		n, err := c.Invalidate(ctx, data.ProductID)
		if err != nil {
			return fmt.Errorf("invalidate catalog cache: %w", err)
		}

		logger.WithContext(ctx, log).Info("catalog cache invalidated",
			slog.String("product_id", data.ProductID),
			slog.Int("entries", n),
		)
		return nil
	}
}
