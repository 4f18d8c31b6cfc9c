package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/hr-portal/internal/attendance"
	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/balance"
	"github.com/frahmantamala/hr-portal/internal/department"
	"github.com/frahmantamala/hr-portal/internal/employee"
	"github.com/frahmantamala/hr-portal/internal/leave"
	"github.com/frahmantamala/hr-portal/internal/message"
	"github.com/frahmantamala/hr-portal/internal/notification"
	"github.com/frahmantamala/hr-portal/internal/realtime"
	"github.com/frahmantamala/hr-portal/internal/transport/middleware"
	"github.com/frahmantamala/hr-portal/internal/transport/swagger"
)

type Handlers struct {
	Auth         *auth.Handler
	Employee     *employee.Handler
	Department   *department.Handler
	Leave        *leave.Handler
	Balance      *balance.Handler
	Notification *notification.Handler
	Message      *message.Handler
	Attendance   *attendance.Handler
	Realtime     *realtime.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))

	// The websocket endpoint sits outside the logging middleware: the wrapped
	// response writer does not support hijacking the connection.
	router.Get("/ws", h.Realtime.Serve)

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Group(func(lr chi.Router) {
		lr.Use(middleware.LoggingMiddleware(logger))

		lr.Route("/api/v1", func(r chi.Router) {
			r.Get("/health", healthHandler.healthCheckHandler)
			r.Get("/ping", healthHandler.pingHandler)

			r.Post("/auth/login", h.Auth.Login)

			r.Group(func(pr chi.Router) {
				pr.Use(h.Auth.AuthMiddleware)

				pr.Get("/employees/me", h.Employee.Me)
				pr.Get("/employees", h.Employee.List)
				pr.Put("/employees/{id}", h.Employee.Update)

				pr.Route("/departments", func(dr chi.Router) {
					dr.Get("/", h.Department.List)
					dr.Post("/", h.Department.Create)
					dr.Put("/{id}/manager", h.Department.AssignManager)
					dr.Delete("/{id}", h.Department.Delete)
				})

				pr.Route("/leaves", func(lvr chi.Router) {
					lvr.Post("/", h.Leave.Apply)
					lvr.Get("/", h.Leave.List)
					lvr.Patch("/{id}/manager-approve", h.Leave.ManagerApprove)
					lvr.Patch("/{id}/manager-reject", h.Leave.ManagerReject)
					lvr.Patch("/{id}/hr-approve", h.Leave.HRApprove)
					lvr.Patch("/{id}/hr-reject", h.Leave.HRReject)
				})

				pr.Route("/balances", func(br chi.Router) {
					br.Get("/", h.Balance.List)
					br.Put("/{id}", h.Balance.UpdateTotals)
				})

				pr.Route("/notifications", func(nr chi.Router) {
					nr.Get("/", h.Notification.List)
					nr.Get("/unread-count", h.Notification.UnreadCount)
					nr.Put("/{id}/read", h.Notification.MarkRead)
					nr.Put("/read-all", h.Notification.MarkAllRead)
				})

				pr.Route("/messages", func(mr chi.Router) {
					mr.Post("/", h.Message.Send)
					mr.Get("/contacts", h.Message.Contacts)
					mr.Get("/unread-count", h.Message.UnreadTotal)
					mr.Get("/conversation/{userId}", h.Message.Conversation)
					mr.Put("/conversation/{userId}/read", h.Message.MarkRead)
				})

				pr.Route("/attendance", func(ar chi.Router) {
					ar.Post("/check-in", h.Attendance.CheckIn)
					ar.Post("/check-out", h.Attendance.CheckOut)
					ar.Get("/history", h.Attendance.History)
					ar.Get("/today", h.Attendance.Today)
				})
			})
		})
	})
}
