package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/dentist-sync/internal/auth"
	"github.com/harentsoaR/dentist-sync/internal/middleware"
)

// Register mounts the API on r.
func (h *Handler) Register(r gin.IRouter) {
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", h.RegisterUser)
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/logout", h.Logout)
		authRoutes.GET("/me", h.GetCurrentUser)
		authRoutes.GET("/account", h.AccountStatus)
	}

	apiRoutes := r.Group("/api")
	apiRoutes.Use(middleware.AuthMiddleware(h.Session.Issuer())) // Protect all /api routes
	{
		apiRoutes.GET("/snapshot", h.GetSnapshot)
		apiRoutes.POST("/clinic", h.SetupClinic)

		// Sync
		apiRoutes.GET("/sync/status", h.SyncStatus)
		apiRoutes.GET("/sync/events", h.SyncEvents)
		apiRoutes.POST("/sync/pull", h.Pull)
		apiRoutes.POST("/sync/push", h.Push)

		// Device
		apiRoutes.GET("/device/prefs", h.GetDevicePrefs)
		apiRoutes.PUT("/device/prefs", h.PutDevicePrefs)

		// Patients
		apiRoutes.POST("/patients", h.CreatePatient)
		apiRoutes.PUT("/patients/:id", h.UpdatePatient)
		apiRoutes.PATCH("/patients/:id/notes", h.UpdatePatientNotes)
		apiRoutes.PUT("/patients/:id/teeth/:tooth", h.SetTooth)
		apiRoutes.PUT("/patients/:id/queries", h.SetQueryAnswers)
		apiRoutes.POST("/patients/:id/appointments", h.CreateAppointment)

		// Other collections
		apiRoutes.POST("/memos", h.CreateMemo)
		apiRoutes.PUT("/collections/:kind/:id", h.UpsertItem)

		staff := apiRoutes.Group("", middleware.RequireRole(auth.RoleAdmin, auth.RoleDoctor))
		staff.DELETE("/patients/:id", h.DeletePatient)
		staff.DELETE("/patients/:id/appointments/:appointmentId", h.DeleteAppointment)
		staff.DELETE("/collections/:kind/:id", h.DeleteItem)

		admin := apiRoutes.Group("", middleware.RequireRole(auth.RoleAdmin))
		admin.PATCH("/settings", h.UpdateSettings)
		admin.POST("/backup/import", h.ImportBackup)
	}
}
