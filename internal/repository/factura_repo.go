package repository

import (
	"context"
	"errors"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrEstadoNoCoincide signals that a conditional estado transition matched no
// row: the factura is gone or a concurrent caller already moved it out of the
// expected state.
var ErrEstadoNoCoincide = errors.New("factura: estado no coincide")

// FacturaRepository persists invoices. EMITIDA/ANULADA rows are immutable
// history: only estado transitions are allowed, deletes only for BORRADOR.
type FacturaRepository interface {
	CreateTx(tx *gorm.DB, f *model.Factura) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error)
	FindByNumero(ctx context.Context, numero string) (*model.Factura, error)
	ListPorUsuario(ctx context.Context, usuarioID uuid.UUID) ([]model.Factura, error)
	ListTodas(ctx context.Context) ([]model.Factura, error)
	Update(ctx context.Context, f *model.Factura) error

	// EmitirTx moves the row BORRADOR → EMITIDA with the state predicate in
	// the UPDATE itself; ErrEstadoNoCoincide when a concurrent emit or delete
	// got there first. The row lock it takes serializes racing emits.
	EmitirTx(tx *gorm.DB, f *model.Factura) error

	// EliminarBorrador deletes the row only while it is still a BORRADOR;
	// ErrEstadoNoCoincide otherwise.
	EliminarBorrador(ctx context.Context, id uuid.UUID) error

	DB() *gorm.DB
}

type facturaRepo struct{ db *gorm.DB }

func NewFacturaRepository(db *gorm.DB) FacturaRepository { return &facturaRepo{db: db} }

func (r *facturaRepo) CreateTx(tx *gorm.DB, f *model.Factura) error {
	return tx.Create(f).Error
}

func (r *facturaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Factura, error) {
	var f model.Factura
	err := r.db.WithContext(ctx).Preload("Items").First(&f, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *facturaRepo) FindByNumero(ctx context.Context, numero string) (*model.Factura, error) {
	var f model.Factura
	err := r.db.WithContext(ctx).Preload("Items").Where("numero_factura = ?", numero).First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListPorUsuario returns invoices where the user is either the buyer or the
// seller who settled them.
func (r *facturaRepo) ListPorUsuario(ctx context.Context, usuarioID uuid.UUID) ([]model.Factura, error) {
	var facturas []model.Factura
	err := r.db.WithContext(ctx).Preload("Items").
		Where("cliente_id = ? OR realizado_por = ?", usuarioID, usuarioID).
		Order("creado_en DESC").
		Find(&facturas).Error
	return facturas, err
}

func (r *facturaRepo) ListTodas(ctx context.Context) ([]model.Factura, error) {
	var facturas []model.Factura
	err := r.db.WithContext(ctx).Preload("Items").Order("creado_en DESC").Find(&facturas).Error
	return facturas, err
}

func (r *facturaRepo) Update(ctx context.Context, f *model.Factura) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *facturaRepo) EmitirTx(tx *gorm.DB, f *model.Factura) error {
	res := tx.Model(&model.Factura{}).
		Where("id = ? AND estado = ?", f.ID, model.EstadoBorrador).
		Updates(map[string]interface{}{
			"estado":        f.Estado,
			"emitida_en":    f.EmitidaEn,
			"realizado_por": f.RealizadoPor,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEstadoNoCoincide
	}
	return nil
}

func (r *facturaRepo) EliminarBorrador(ctx context.Context, id uuid.UUID) error {
	// Items go with the row via the FK cascade.
	res := r.db.WithContext(ctx).
		Where("id = ? AND estado = ?", id, model.EstadoBorrador).
		Delete(&model.Factura{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEstadoNoCoincide
	}
	return nil
}

func (r *facturaRepo) DB() *gorm.DB { return r.db }
