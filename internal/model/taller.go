package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles that may mutate stock on a taller's almacenes.
const (
	RolAdmin    = "ADMIN"
	RolVendedor = "VENDEDOR"
)

// Taller is the owning entity of one or more almacenes.
type Taller struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Direccion *string
	CreatedAt time.Time

	Almacenes []Almacen       `gorm:"foreignKey:TallerID"`
	Miembros  []TallerMiembro `gorm:"foreignKey:TallerID"`
}

func (Taller) TableName() string { return "talleres" }

// TallerMiembro links a user to a taller with a role.
type TallerMiembro struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TallerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_taller_usuario"`
	UsuarioID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_taller_usuario"`
	Rol       string    `gorm:"not null"` // ADMIN | VENDEDOR
	CreatedAt time.Time
}

func (TallerMiembro) TableName() string { return "taller_miembros" }

// Almacen is a physical/logical stock-holding location.
type Almacen struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TallerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre    string    `gorm:"not null"`
	Direccion *string
	CreatedAt time.Time
}

func (Almacen) TableName() string { return "almacenes" }
