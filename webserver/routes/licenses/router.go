package licenses

import (
	"github.com/Vousmeveyoz/discord-jixabot/webserver/routes/licenses/endpoints/validate_license"
	"github.com/go-chi/chi/v5"
	"github.com/infinitybotlist/eureka/uapi"
)

const tagName = "Licenses"

type Router struct{}

func (b Router) Tag() (string, string) {
	return tagName, "These API endpoints are related to license validation"
}

func (b Router) Routes(r *chi.Mux) {
	uapi.Route{
		Pattern: "/api/validate",
		OpId:    "validate_license",
		Method:  uapi.POST,
		Docs:    validate_license.Docs,
		Handler: validate_license.Route,
	}.Route(r)
}
