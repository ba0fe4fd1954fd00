package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router. Callers
// install authentication before mounting; signup and login are public.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth
		r.Post("/auth/signup", h.Signup)
		r.Post("/auth/login", h.Login)
		r.Get("/auth/me", h.Me)

		// Tasks
		r.Get("/tasks", h.ListTasks)
		r.Get("/tasks/summary", h.TaskSummary)
		r.Post("/tasks", h.createTask())
		r.Get("/tasks/{id}", h.getTask())
		r.Patch("/tasks/{id}", h.updateTask())
		r.Put("/tasks/{id}/text", h.EditTaskText)
		r.Post("/tasks/{id}/toggle", h.toggleTask())
		r.Delete("/tasks/{id}", h.deleteTask())

		// Clients
		r.Get("/clients", h.ListClients)
		r.Get("/clients/stats", h.ClientStats)
		r.Get("/clients/{id}", h.getClient())
		r.Put("/clients/{id}", h.updateClient())
		r.Put("/clients/{id}/status", h.updateClientStatus())

		// Employees
		r.Get("/employees", h.listEmployees())
		r.Get("/employees/{id}", h.getEmployee())

		r.Get("/options", h.Options)
		r.Get("/mutations/{kind}/{id}", h.MutationState)

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/clients", h.createClient())
			r.Delete("/clients/{id}", h.deleteClient())
			r.Post("/employees", h.createEmployee())
			r.Delete("/employees/{id}", h.deleteEmployee())
			r.Get("/settings", h.Settings)
		})
	})
}
