package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
	"golang.org/x/crypto/bcrypt"

	"github.com/bomberos-dev/guardias/backend/internal/config"
	"github.com/bomberos-dev/guardias/backend/internal/service"
)

type Handler struct {
	validate          *validator.Validate
	config            *config.Config
	service           *service.Service
	translator        ut.Translator
	adminPasswordHash []byte

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, svc *service.Service) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	es := es.New()
	uni := ut.New(es, es)
	trans, _ := uni.GetTranslator("es")
	if err := es_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	adminPasswordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:          validate,
		config:            cfg,
		service:           svc,
		translator:        trans,
		adminPasswordHash: adminPasswordHash,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// everything below requires a session
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/groups/{id}/guardias", func(r chi.Router) {
			r.Use(h.groupID)
			r.Post("/", h.CreateAssignments)
			r.Get("/", h.GetAssignments)
			r.Delete("/", h.DeleteAssignmentsByRange)
			r.Put("/dia", h.ReplaceDay)
		})

		r.Route("/guardias", func(r chi.Router) {
			r.Get("/por-dni", h.GetAssignmentsByFirefighter)
			r.Delete("/", h.DeleteAssignmentsByIDs)
		})
	})
}
