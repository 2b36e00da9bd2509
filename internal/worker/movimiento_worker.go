package worker

// movimiento_worker.go — audit event sink.
// Consumes stock-adjustment events emitted after a ledger write committed and
// appends the immutable movimiento record. The stock itself was already
// adjusted by the publisher, so this worker only writes history.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

type MovimientoWorker struct {
	repo repository.MovimientoRepository
}

func NewMovimientoWorker(repo repository.MovimientoRepository) *MovimientoWorker {
	return &MovimientoWorker{repo: repo}
}

// Process appends the movement record for one stock-adjustment event.
func (w *MovimientoWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var job MovimientoJob
	if err := json.Unmarshal(raw, &job); err != nil {
		log.Error().Err(err).Msg("movimiento_worker: invalid payload")
		return err
	}

	tipo := model.TipoMovimientoDe(job.Tipo)
	if tipo == "" {
		err := fmt.Errorf("movimiento_worker: tipo desconocido %q", job.Tipo)
		log.Error().Err(err).Msg("movimiento_worker: event dropped")
		return err
	}

	m := &model.Movimiento{
		Tipo:         string(tipo),
		ProductoID:   job.ProductoID,
		Cantidad:     job.Cantidad,
		RealizadoPor: job.RealizadoPor,
		CreadoEn:     time.Now().UTC(),
	}
	if job.Referencia != "" {
		m.Referencia = &job.Referencia
	}
	if job.Notas != "" {
		m.Notas = &job.Notas
	}

	if err := w.repo.Create(ctx, m); err != nil {
		log.Error().Err(err).
			Str("producto_id", job.ProductoID.String()).
			Str("tipo", job.Tipo).
			Msg("movimiento_worker: failed to persist movimiento")
		return err
	}

	log.Debug().
		Str("producto_id", job.ProductoID.String()).
		Str("tipo", string(tipo)).
		Int("cantidad", job.Cantidad).
		Msg("movimiento_worker: movimiento registrado")
	return nil
}
