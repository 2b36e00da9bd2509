package repository

import (
	"gorm.io/gorm"
)

// SecuenciaRepository hands out monotonically increasing numbers. The
// increment is a single upsert statement, so concurrent callers can never
// observe the same value.
type SecuenciaRepository interface {
	NextTx(tx *gorm.DB, nombre string) (int64, error)
}

type secuenciaRepo struct{ db *gorm.DB }

func NewSecuenciaRepository(db *gorm.DB) SecuenciaRepository { return &secuenciaRepo{db: db} }

func (r *secuenciaRepo) NextTx(tx *gorm.DB, nombre string) (int64, error) {
	var valor int64
	err := tx.Raw(`
INSERT INTO secuencias (nombre, valor) VALUES (?, 1)
ON CONFLICT (nombre) DO UPDATE SET valor = secuencias.valor + 1
RETURNING valor`, nombre).Scan(&valor).Error
	return valor, err
}
