package validate_license

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Vousmeveyoz/discord-jixabot/state"
	"github.com/Vousmeveyoz/discord-jixabot/store"
	"github.com/Vousmeveyoz/discord-jixabot/types"
	"go.uber.org/zap"

	docs "github.com/infinitybotlist/eureka/doclib"
	"github.com/infinitybotlist/eureka/hotcache"
	"github.com/infinitybotlist/eureka/ratelimit"
	"github.com/infinitybotlist/eureka/uapi"
)

const cacheExpiry = 5 * time.Minute

func Docs() *docs.Doc {
	return &docs.Doc{
		Summary:     "Validate License",
		Description: "Validates a license key, optionally checking it against a Roblox user ID, and records the validation time.",
		Req:         types.ValidateRequest{},
		Resp:        types.ValidateResponse{},
		Params:      []docs.Parameter{},
	}
}

func Route(d uapi.RouteData, r *http.Request) uapi.HttpResponse {
	limit, err := ratelimit.Ratelimit{
		Expiry:      1 * time.Minute,
		MaxRequests: 30,
		Bucket:      "validate_license",
	}.Limit(d.Context, r)

	if err != nil {
		state.Logger.Error("Error while ratelimiting", zap.Error(err), zap.String("bucket", "validate_license"))
		return uapi.DefaultResponse(http.StatusInternalServerError)
	}

	if limit.Exceeded {
		return uapi.HttpResponse{
			Json: types.ApiError{
				Message: "You are being ratelimited. Please try again in " + limit.TimeToReset.String(),
			},
			Headers: limit.Headers(),
			Status:  http.StatusTooManyRequests,
		}
	}

	var req types.ValidateRequest

	hresp, ok := uapi.MarshalReq(r, &req)

	if !ok {
		return hresp
	}

	return Validate(d.Context, state.Licenses, state.LicenseCache, req, time.Now())
}

// Validate implements the lookup itself, split from Route so it can run
// against in-memory stores.
func Validate(ctx context.Context, licenses store.Licenses, cache hotcache.HotCache[types.License], req types.ValidateRequest, now time.Time) uapi.HttpResponse {
	key := strings.TrimSpace(req.Key)

	if key == "" {
		return uapi.HttpResponse{
			Status: http.StatusBadRequest,
			Json: types.ValidateResponse{
				Success: false,
				Message: "Missing required field: key",
			},
		}
	}

	license, err := cache.Get(ctx, key)

	if err != nil {
		if !errors.Is(err, hotcache.ErrHotCacheDataNotFound) {
			state.Logger.Error("Error while reading license cache", zap.Error(err))
		}

		license, err = licenses.FindByKey(ctx, key)

		if err != nil {
			state.Logger.Error("Error while looking up license", zap.Error(err))
			return uapi.DefaultResponse(http.StatusInternalServerError)
		}

		if license != nil {
			if err := cache.Set(ctx, key, license, cacheExpiry); err != nil {
				state.Logger.Error("Error while caching license", zap.Error(err))
			}
		}
	}

	if license == nil {
		return uapi.HttpResponse{
			Status: http.StatusOK,
			Json: types.ValidateResponse{
				Success: false,
				Message: "Invalid license key",
			},
		}
	}

	if req.RobloxID != "" && req.RobloxID != license.RobloxID {
		return uapi.HttpResponse{
			Status: http.StatusOK,
			Json: types.ValidateResponse{
				Success: false,
				Message: "License key does not match Roblox ID",
			},
		}
	}

	if err := licenses.TouchLastUsed(ctx, key, now); err != nil {
		state.Logger.Error("Error while recording license use", zap.Error(err))
	} else {
		license.LastUsed = &now
	}

	return uapi.HttpResponse{
		Status: http.StatusOK,
		Json: types.ValidateResponse{
			Success: true,
			Message: "License validated successfully",
			Data: &types.ValidatedLicense{
				RobloxID:       license.RobloxID,
				DiscordID:      license.DiscordID,
				CreatedAt:      license.CreatedAt,
				LastUsed:       license.LastUsed,
				WebhookURL:     license.WebhookURL,
				WebhookUserKey: license.WebhookUserKey,
			},
		},
	}
}
