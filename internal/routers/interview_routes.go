package routers

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"csacademy/interview/internal/auth"
	"csacademy/interview/internal/handlers"
	"csacademy/interview/internal/middleware"
	"csacademy/interview/internal/models"
)

func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, historyHandler *handlers.HistoryHandler, verifier *auth.Verifier, logger *zap.Logger) {
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireUser(verifier, logger))

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", interviewHandler.GetStateHandler)
			r.With(middleware.ValidateRequest[*models.CreateSessionBody]()).Post("/", interviewHandler.CreateSessionHandler)
			r.Delete("/", interviewHandler.ResetSessionHandler)
			r.Post("/start", interviewHandler.StartSessionHandler)
			r.With(middleware.ValidateRequest[*models.SendMessageBody]()).Post("/messages", interviewHandler.SendMessageHandler)
			r.Post("/end", interviewHandler.EndSessionHandler)
			r.Post("/refresh", interviewHandler.RefreshStatusHandler)
		})

		r.Get("/history", historyHandler.ListHandler)
		r.Get("/history/{sessionId}", historyHandler.TranscriptHandler)
	})
}
