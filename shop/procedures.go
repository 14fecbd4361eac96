package shop

// Stored procedures called by the shop API, grouped by schema.
const (
	ProcProductoNovedad    = "[producto].[SEL_PRODUCTO_NOVEDAD_SP]"
	ProcProductoInventario = "[producto].[SEL_PRODUCTO_INVENTARIO_SP]"
	ProcProductoGenero     = "[producto].[SEL_PRODUCTO_GENERO_SP]"
	ProcValidaInventario   = "[producto].[SEL_VALIDA_INVENTARIO_SP]"
	ProcProductoAll        = "[producto].[SEL_PRODUCTO_ALL_SP]"
	ProcProductoID         = "[producto].[SEL_PRODUCTO_ID_SP]"
	ProcInsProducto        = "[producto].[INS_PRODUCTO_SP]"
	ProcUpdProducto        = "[producto].[UPD_PRODUCTO_SP]"
	ProcDelProducto        = "[producto].[DEL_PRODUCTO_SP]"

	ProcSelCarrito         = "venta.SEL_CARRITO_SP"
	ProcInsCarrito         = "[venta].[INS_CARRITO_SP]"
	ProcUpdCarritoCantidad = "[venta].[UPD_CARRITO_CANTIDAD_SP]"
	ProcDelCarrito         = "[venta].[DEL_CARRITO_SP]"

	ProcSelTallas     = "[catalogo].[SEL_TALLAS_SP]"
	ProcSelGeneros    = "[catalogo].[SEL_GENEROS_SP]"
	ProcSelTipoPrenda = "[catalogo].[SEL_TIPOPRENDA_SP]"

	ProcInsDocumento = "[fileserver].[INS_DOCUMENTO_SP]"

	ProcLogin      = "[seguridad].[SEL_LOGIN_SP]"
	ProcInsUsuario = "[seguridad].[INS_USUARIO_SP]"
	ProcUpdUsuario = "[seguridad].[UPD_USUARIO_SP]"

	ProcSelVentaUsuario = "[venta].[SEL_VENTAUSUARIO_SP]"
	ProcSelVentas       = "[venta].[SEL_VENTAS_SP]"
	ProcInsVenta        = "[venta].[INS_VENTA_SP]"
	ProcUpdEstatusVenta = "[venta].[UPD_ESTATUSVENTA_SP]"
)
