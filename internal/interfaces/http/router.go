package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Repuestos-api/internal/application/auth"
	"github.com/jhoicas/Repuestos-api/internal/application/carrito"
	"github.com/jhoicas/Repuestos-api/internal/application/taller"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	TallerUC  *taller.TallerUseCase
	CarritoUC *carrito.CarritoUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/oauth/:provider", authHandler.LoginOAuth)
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/logout", authHandler.Logout)

	// Auth (protegido)
	authProtected := authGroup.Group("/", AuthMiddleware(deps.JWTSecret))
	authProtected.Post("/revoke-all", authHandler.RevokeAll)
	authProtected.Get("/me", authHandler.Me)

	// Carritos: creación y edición por id son públicas (carrito anónimo);
	// el listado del usuario requiere token.
	carritoHandler := NewCarritoHandler(deps.CarritoUC)
	carritos := api.Group("/carritos")
	carritos.Post("/", carritoHandler.Create)
	carritos.Get("/", AuthMiddleware(deps.JWTSecret), carritoHandler.ListMine)
	carritos.Get("/:id", carritoHandler.GetByID)
	carritos.Delete("/:id", carritoHandler.Delete)
	carritos.Post("/:id/items", carritoHandler.AddItem)
	carritos.Delete("/:id/items", carritoHandler.Clear)
	carritos.Delete("/:id/items/:productoId", carritoHandler.RemoveItem)

	// Talleres (protegido)
	tallerHandler := NewTallerHandler(deps.TallerUC)
	talleres := api.Group("/talleres", AuthMiddleware(deps.JWTSecret))
	talleres.Post("/", tallerHandler.Create)
	talleres.Get("/", tallerHandler.List)
	talleres.Post("/invitaciones/accept", tallerHandler.AcceptInvitacion)
	talleres.Get("/:tallerId/miembros", tallerHandler.ListMembers)
	talleres.Post("/:tallerId/invitaciones/codigo", tallerHandler.CreateInvitacion)
	talleres.Post("/:tallerId/almacenes", tallerHandler.CreateAlmacen)
	talleres.Get("/:tallerId/almacenes", tallerHandler.ListAlmacenes)
}
