package routes

import (
	"github.com/Dosada05/competition-system/handlers"
	appMiddleware "github.com/Dosada05/competition-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	competitionHandler *handlers.CompetitionHandler,
	teamHandler *handlers.TeamHandler,
	inviteHandler *handlers.InviteHandler,
	registrationHandler *handlers.RegistrationHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := appMiddleware.Authenticate(jwtSecret)

	// Публичные маршруты
	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/competitions", func(r chi.Router) {
		r.Get("/", competitionHandler.List)
		r.Get("/{id}", competitionHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", competitionHandler.Create)
			r.Put("/{id}", competitionHandler.Update)
			r.Delete("/{id}", competitionHandler.Delete)
			r.Post("/{id}/poster", competitionHandler.UploadPoster)
			r.Post("/{id}/register", registrationHandler.Register)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{id}", teamHandler.GetByID)
		r.Get("/{id}/members", teamHandler.ListMembers)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", teamHandler.Create)
			r.Put("/{id}", teamHandler.Update)
			r.Post("/{id}/join", teamHandler.Join)
			r.Post("/{id}/members", teamHandler.AddMember)
			r.Delete("/{id}/members/{userID}", teamHandler.RemoveMember)
			r.Post("/{id}/invites", inviteHandler.Create)
			r.Get("/{id}/invites", inviteHandler.ListByTeam)
		})
	})

	router.Route("/invites", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/{id}/accept", inviteHandler.Accept)
	})

	router.Route("/users", func(r chi.Router) {
		r.Get("/{id}", userHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", userHandler.GetMe)
			r.Put("/me/profile", userHandler.UpdateProfile)
			r.Post("/me/avatar", userHandler.UploadAvatar)
			r.Get("/me/competitions", registrationHandler.ListMyCompetitions)
			r.Get("/me/teams", registrationHandler.ListMyTeams)
		})
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/dashboard", dashboardHandler.GetStats)
	})

	router.Get("/ws/teams/{id}", webSocketHandler.ServeTeam)
}
