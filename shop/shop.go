// Package shop maps the shop API operations onto their stored procedures.
//
// Each repository method names one fixed procedure; request data only ever
// reaches the procedure as bound parameters. The procedures own all business
// rules. The only interpretation done here is the login result.
package shop

import (
	"context"
	"errors"

	"github.com/laropanostra/shopapp"
)

// Executor runs stored procedures. *sproc.Gateway implements it.
//
// Implementations must strip the cache-busting parameters, bind the rest by
// name and release their connection before returning.
type Executor interface {
	// Execute returns the first result set, or nil when the procedure
	// produced none.
	Execute(ctx context.Context, procedure string, params shopapp.Params) (shopapp.ResultSet, error)

	// ExecuteMulti returns every result set in database order.
	ExecuteMulti(ctx context.Context, procedure string, params shopapp.Params) ([]shopapp.ResultSet, error)
}

// Service groups the repositories of the shop API.
type Service struct {
	Productos  *ProductoRepo
	Carrito    *CarritoRepo
	Catalogo   *CatalogoRepo
	Documentos *DocumentoRepo
	Seguridad  *SeguridadRepo
	Ventas     *VentaRepo
}

// NewService creates the repositories over exec.
func NewService(exec Executor) (*Service, error) {
	if exec == nil {
		return nil, errors.New("executor cannot be nil")
	}
	return &Service{
		Productos:  &ProductoRepo{exec: exec},
		Carrito:    &CarritoRepo{exec: exec},
		Catalogo:   &CatalogoRepo{exec: exec},
		Documentos: &DocumentoRepo{exec: exec},
		Seguridad:  &SeguridadRepo{exec: exec},
		Ventas:     &VentaRepo{exec: exec},
	}, nil
}

// ProductoRepo reads and maintains the product catalog.
type ProductoRepo struct {
	exec Executor
}

func (r *ProductoRepo) Novedades(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcProductoNovedad, p)
}

func (r *ProductoRepo) Inventario(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcProductoInventario, p)
}

func (r *ProductoRepo) Genero(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcProductoGenero, p)
}

func (r *ProductoRepo) ValidaInventario(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcValidaInventario, p)
}

func (r *ProductoRepo) All(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcProductoAll, p)
}

// ByID returns the product and its related sets (sizes, gallery).
func (r *ProductoRepo) ByID(ctx context.Context, p shopapp.Params) ([]shopapp.ResultSet, error) {
	return r.exec.ExecuteMulti(ctx, ProcProductoID, p)
}

func (r *ProductoRepo) Agregar(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcInsProducto, p)
}

func (r *ProductoRepo) Editar(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcUpdProducto, p)
}

func (r *ProductoRepo) Eliminar(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcDelProducto, p)
}

// CarritoRepo manages a user's shopping cart.
type CarritoRepo struct {
	exec Executor
}

func (r *CarritoRepo) Obtener(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcSelCarrito, p)
}

func (r *CarritoRepo) Agregar(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcInsCarrito, p)
}

func (r *CarritoRepo) ActualizarCantidad(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcUpdCarritoCantidad, p)
}

func (r *CarritoRepo) Eliminar(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcDelCarrito, p)
}

// CatalogoRepo reads the lookup catalogs.
type CatalogoRepo struct {
	exec Executor
}

func (r *CatalogoRepo) Tallas(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcSelTallas, p)
}

func (r *CatalogoRepo) Generos(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcSelGeneros, p)
}

func (r *CatalogoRepo) TipoPrenda(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcSelTipoPrenda, p)
}

// DocumentoRepo records uploaded documents against their owning entity.
type DocumentoRepo struct {
	exec Executor
}

func (r *DocumentoRepo) Insertar(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcInsDocumento, p)
}

// VentaRepo records and queries sales.
type VentaRepo struct {
	exec Executor
}

func (r *VentaRepo) PorUsuario(ctx context.Context, p shopapp.Params) ([]shopapp.ResultSet, error) {
	return r.exec.ExecuteMulti(ctx, ProcSelVentaUsuario, p)
}

func (r *VentaRepo) Todas(ctx context.Context, p shopapp.Params) ([]shopapp.ResultSet, error) {
	return r.exec.ExecuteMulti(ctx, ProcSelVentas, p)
}

func (r *VentaRepo) Agregar(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcInsVenta, p)
}

func (r *VentaRepo) ActualizarEstatus(ctx context.Context, p shopapp.Params) (shopapp.ResultSet, error) {
	return r.exec.Execute(ctx, ProcUpdEstatusVenta, p)
}
