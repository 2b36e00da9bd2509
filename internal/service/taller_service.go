package service

import (
	"context"
	"errors"

	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/apierror"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/dto"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/model"
	"github.com/SLarkZ01/inventario-repuestos-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TallerService administers talleres, their memberships and almacenes.
type TallerService interface {
	CrearTaller(ctx context.Context, req dto.CrearTallerRequest) (*model.Taller, error)
	ObtenerTaller(ctx context.Context, id uuid.UUID) (*model.Taller, error)
	AgregarMiembro(ctx context.Context, tallerID uuid.UUID, req dto.AgregarMiembroRequest) (*model.TallerMiembro, error)
	CrearAlmacen(ctx context.Context, tallerID uuid.UUID, req dto.CrearAlmacenRequest) (*model.Almacen, error)
	ListarAlmacenes(ctx context.Context, tallerID uuid.UUID) ([]model.Almacen, error)
}

type tallerService struct {
	almacenRepo repository.AlmacenRepository
}

func NewTallerService(almacenRepo repository.AlmacenRepository) TallerService {
	return &tallerService{almacenRepo: almacenRepo}
}

func (s *tallerService) CrearTaller(ctx context.Context, req dto.CrearTallerRequest) (*model.Taller, error) {
	t := &model.Taller{Nombre: req.Nombre, Direccion: req.Direccion}
	if err := s.almacenRepo.CreateTaller(ctx, t); err != nil {
		return nil, apierror.Interno(err)
	}
	return t, nil
}

func (s *tallerService) ObtenerTaller(ctx context.Context, id uuid.UUID) (*model.Taller, error) {
	t, err := s.almacenRepo.FindTallerByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontrado("Taller %s no encontrado", id)
		}
		return nil, apierror.Interno(err)
	}
	return t, nil
}

func (s *tallerService) AgregarMiembro(ctx context.Context, tallerID uuid.UUID, req dto.AgregarMiembroRequest) (*model.TallerMiembro, error) {
	if _, err := s.ObtenerTaller(ctx, tallerID); err != nil {
		return nil, err
	}
	usuarioID, err := uuid.Parse(req.UsuarioID)
	if err != nil {
		return nil, apierror.Validacion("usuario_id invalido")
	}

	m := &model.TallerMiembro{TallerID: tallerID, UsuarioID: usuarioID, Rol: req.Rol}
	if err := s.almacenRepo.AgregarMiembro(ctx, m); err != nil {
		// The (taller, usuario) pair is unique; a second insert is a caller error.
		return nil, apierror.Validacion("El usuario ya es miembro del taller")
	}
	return m, nil
}

func (s *tallerService) CrearAlmacen(ctx context.Context, tallerID uuid.UUID, req dto.CrearAlmacenRequest) (*model.Almacen, error) {
	if _, err := s.ObtenerTaller(ctx, tallerID); err != nil {
		return nil, err
	}
	a := &model.Almacen{TallerID: tallerID, Nombre: req.Nombre, Direccion: req.Direccion}
	if err := s.almacenRepo.CreateAlmacen(ctx, a); err != nil {
		return nil, apierror.Interno(err)
	}
	return a, nil
}

func (s *tallerService) ListarAlmacenes(ctx context.Context, tallerID uuid.UUID) ([]model.Almacen, error) {
	if _, err := s.ObtenerTaller(ctx, tallerID); err != nil {
		return nil, err
	}
	almacenes, err := s.almacenRepo.ListAlmacenesPorTaller(ctx, tallerID)
	if err != nil {
		return nil, apierror.Interno(err)
	}
	return almacenes, nil
}
