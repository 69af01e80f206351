// Binds onto eureka uapi
package api

import (
	"net/http"

	"github.com/Vousmeveyoz/discord-jixabot/state"
	"github.com/Vousmeveyoz/discord-jixabot/types"
	"github.com/Vousmeveyoz/discord-jixabot/webserver/constants"

	"github.com/infinitybotlist/eureka/uapi"
)

const TargetTypeClient = "Client"

type DefaultResponder struct{}

func (d DefaultResponder) New(err string, ctx map[string]string) any {
	return types.ApiError{
		Message: err,
		Context: ctx,
	}
}

// Authorizes a request. The license API is key-in-body authenticated, so
// every route is public at the transport level and this is a pass-through.
func Authorize(r uapi.Route, req *http.Request) (uapi.AuthData, uapi.HttpResponse, bool) {
	return uapi.AuthData{}, uapi.HttpResponse{}, true
}

func Setup() {
	uapi.SetupState(uapi.UAPIState{
		Logger:    state.Logger,
		Authorize: Authorize,
		AuthTypeMap: map[string]string{
			TargetTypeClient: TargetTypeClient,
		},
		Context: state.Context,
		Constants: &uapi.UAPIConstants{
			ResourceNotFound:    constants.ResourceNotFound,
			BadRequest:          constants.BadRequest,
			Forbidden:           constants.Forbidden,
			Unauthorized:        constants.Unauthorized,
			InternalServerError: constants.InternalServerError,
			MethodNotAllowed:    constants.MethodNotAllowed,
			BodyRequired:        constants.BodyRequired,
		},
		DefaultResponder: DefaultResponder{},
	})
}
