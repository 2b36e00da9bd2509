package worker

// email_worker.go
// Processes email jobs from QueueEmail: renders the invoice PDF and mails it
// to the customer. Best-effort — a failed send parks the job in the DLQ and
// never affects the settled factura.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/infra"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

type EmailWorker struct {
	mailer      *infra.Mailer
	facturaRepo repository.FacturaRepository
	storagePath string
}

func NewEmailWorker(mailer *infra.Mailer, facturaRepo repository.FacturaRepository, storagePath string) *EmailWorker {
	return &EmailWorker{mailer: mailer, facturaRepo: facturaRepo, storagePath: storagePath}
}

// Process renders and mails the invoice referenced by the job.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var job EmailJob
	if err := json.Unmarshal(raw, &job); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return err
	}
	if job.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email — skipping")
		return nil
	}

	factura, err := w.facturaRepo.FindByID(ctx, job.FacturaID)
	if err != nil {
		log.Error().Err(err).Str("factura_id", job.FacturaID.String()).Msg("email_worker: factura not found")
		return err
	}

	pdfPath, err := infra.GenerateFacturaPDF(factura, w.storagePath)
	if err != nil {
		log.Error().Err(err).Str("factura_id", job.FacturaID.String()).Msg("email_worker: pdf generation failed")
		return err
	}

	subject := fmt.Sprintf("Factura N° %s", factura.NumeroFactura)
	body := fmt.Sprintf("Adjuntamos su factura N° %s por un total de %s.", factura.NumeroFactura, factura.Total.StringFixed(2))
	if err := w.mailer.SendFactura(job.ToEmail, subject, body, pdfPath); err != nil {
		log.Error().Err(err).Str("to", job.ToEmail).Msg("email_worker: failed to send email")
		return err
	}

	log.Info().Str("factura_id", job.FacturaID.String()).Str("to", job.ToEmail).Msg("email_worker: factura enviada")
	return nil
}
