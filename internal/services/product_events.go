package services

import (
	"fmt"

	"github.com/Faisal-Sha/eco-product-task/internal/domain"
	"github.com/Faisal-Sha/eco-product-task/pkg/logger"
)

// ProductEventRelay maps product events arriving from the CRUD layer
// (over the Redis ingest channel) onto broadcaster operations.
type ProductEventRelay struct {
	broadcaster domain.ProductBroadcaster
	log         logger.Logger
}

func NewProductEventRelay(broadcaster domain.ProductBroadcaster, log logger.Logger) *ProductEventRelay {
	return &ProductEventRelay{broadcaster: broadcaster, log: log}
}

// Handle dispatches one event. Malformed events are reported back to
// the subscriber loop, which logs and keeps consuming.
func (s *ProductEventRelay) Handle(event *domain.ProductEvent) error {
	switch event.Kind {
	case domain.EventStockUpdate:
		if event.Stock == nil || event.PreviousStock == nil {
			return fmt.Errorf("stock_update event for %q missing stock fields", event.ProductID)
		}
		s.broadcaster.BroadcastStockUpdate(event.ProductID, *event.Stock, *event.PreviousStock)

	case domain.EventPriceUpdate:
		if event.Price == nil || event.OldPrice == nil {
			return fmt.Errorf("price_update event for %q missing price fields", event.ProductID)
		}
		s.broadcaster.BroadcastPriceUpdate(event.ProductID, *event.Price, *event.OldPrice)

	case domain.EventProductUpdate:
		s.broadcaster.BroadcastProductUpdate(event.ProductID, domain.FieldUpdate{
			Type:      domain.EventProductUpdate,
			ProductID: event.ProductID,
			Fields:    event.Fields,
		})

	case domain.EventNewProduct:
		if event.Product == nil {
			return fmt.Errorf("new_product event missing product")
		}
		s.broadcaster.BroadcastNewProduct(event.Product)

	case domain.EventUserActivity:
		if event.Activity == nil {
			return fmt.Errorf("user_activity event missing activity")
		}
		s.broadcaster.BroadcastUserActivity(*event.Activity)

	case domain.EventAdminAlert:
		if event.Alert == nil {
			return fmt.Errorf("admin_alert event missing alert")
		}
		s.broadcaster.SendAdminAlert(*event.Alert)

	default:
		return fmt.Errorf("unknown product event kind %q", event.Kind)
	}

	return nil
}
