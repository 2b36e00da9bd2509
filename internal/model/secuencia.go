package model

// Secuencia backs the monotonic invoice-number generator. Incremented by a
// single INSERT … ON CONFLICT … RETURNING statement, never read-then-write.
type Secuencia struct {
	Nombre string `gorm:"primaryKey"`
	Valor  int64  `gorm:"not null;default:0"`
}

func (Secuencia) TableName() string { return "secuencias" }
