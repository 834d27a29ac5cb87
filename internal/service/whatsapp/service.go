package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockkeeper/internal/config"
	"github.com/mamadbah2/stockkeeper/internal/domain/models"
	"github.com/mamadbah2/stockkeeper/internal/service/inventory"
	client "github.com/mamadbah2/stockkeeper/pkg/clients/whatsapp"
)

// maxListed caps the number of lines in one alert to keep messages readable.
const maxListed = 30

// AlertService sends low stock summaries over the WhatsApp Cloud API.
type AlertService struct {
	cfg    config.WhatsAppConfig
	sender client.Sender
	logger *zap.Logger
}

// NewAlertService wires a new service instance.
func NewAlertService(cfg config.WhatsAppConfig, sender client.Sender, logger *zap.Logger) *AlertService {
	svc := &AlertService{
		cfg:    cfg,
		sender: sender,
		logger: logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// SendLowStockAlert notifies the configured recipient about the given low stock lines.
// Nothing is sent for an empty list.
func (s *AlertService) SendLowStockAlert(ctx context.Context, records []models.Record, threshold int) error {
	if len(records) == 0 {
		return nil
	}
	if s.cfg.AlertTo == "" {
		return errors.New("no alert recipient configured")
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	messageID, err := s.sender.SendText(ctxWithTimeout, s.cfg.AlertTo, FormatAlert(records, threshold))
	if err != nil {
		return err
	}

	s.logger.Info("low stock alert sent", zap.Int("items", len(records)), zap.String("message_id", messageID))
	return nil
}

// FormatAlert renders the message body for a low stock alert.
func FormatAlert(records []models.Record, threshold int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Low stock alert: %d products below %d units.", len(records), threshold)
	for i, record := range records {
		if i == maxListed {
			fmt.Fprintf(&b, "\n... and %d more.", len(records)-maxListed)
			break
		}
		b.WriteString("\n")
		b.WriteString(inventory.FormatItem(record))
	}
	return b.String()
}
