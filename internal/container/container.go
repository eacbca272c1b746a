package container

import (
	app "shearzone/internal/application"
	"shearzone/internal/domain/port"
)

type Container struct {
	Sessions     *app.SessionService
	Analysis     *app.AnalysisService
	Registration *app.RegistrationService
	Quantify     *app.QuantifyService
	Projects     *app.ProjectService
	Images       port.ImageProcessor
}

// Deps адаптеры инфраструктуры, из которых собираются сервисы.
type Deps struct {
	Sessions   port.SessionRepository
	Images     port.ImageProcessor
	Analyzer   port.Analyzer
	Registrar  port.Registrar
	Quantifier port.Quantifier
	Reporter   port.Reporter
	Projects   port.ProjectStore
}

func New(deps Deps) *Container {
	guard := app.NewJobGuard()
	sessions := app.NewSessionService(deps.Sessions, deps.Images)

	return &Container{
		Sessions:     sessions,
		Analysis:     app.NewAnalysisService(sessions, deps.Analyzer, deps.Images, guard),
		Registration: app.NewRegistrationService(sessions, deps.Registrar, guard),
		Quantify:     app.NewQuantifyService(sessions, deps.Quantifier, deps.Reporter, deps.Images),
		Projects:     app.NewProjectService(sessions, deps.Projects),
		Images:       deps.Images,
	}
}
