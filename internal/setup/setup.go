package setup

import (
	"context"
	"fmt"

	"github.com/lectern-dev/lectern/internal/generator"
	"github.com/lectern-dev/lectern/internal/handler"
	"github.com/lectern-dev/lectern/internal/permissions"
	"github.com/lectern-dev/lectern/internal/service"
	"github.com/lectern-dev/lectern/internal/storage/forumhttp"
	"github.com/lectern-dev/lectern/internal/storage/pg"
	"github.com/lectern-dev/lectern/shared/config"
	"github.com/lectern-dev/lectern/shared/domain"
	"github.com/lectern-dev/lectern/shared/forum"
	"github.com/lectern-dev/lectern/shared/jwt"
	mw "github.com/lectern-dev/lectern/shared/middleware"
)

// Dependencies holds everything the router and the process lifecycle need.
type Dependencies struct {
	Store           forum.Store
	Handler         *handler.Handler
	Auth            *mw.Auth
	Jwt             jwt.JwtService
	SandboxSchoolId domain.SchoolId
	Cleanup         func() error
}

// SetupDependencies wires storage, services and the handler together.
// The sandbox school is provisioned here so the permission engine knows
// its id before the first request arrives.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	store, cleanup, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	membership := service.NewMembership(store)
	school := service.NewSchool(store, membership)
	catalog := service.NewCatalog(store)
	contributions := service.NewContributions(store)
	search := service.NewSearch(store, catalog)
	sandbox := service.NewSandbox(store, membership, cfg.SandboxSchoolName())

	gen := generator.NewOpenAI(cfg.Public.Generator, cfg.Private.GeneratorApiKey)
	governor := service.NewGovernor(store, gen)

	sandboxId, err := sandbox.EnsureProvisioned(context.Background())
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		return nil, fmt.Errorf("provisioning sandbox school: %w", err)
	}
	perms := permissions.New(sandboxId)

	jwtSvc := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	auth := mw.NewAuth(jwtSvc)

	h := handler.New(school, membership, catalog, contributions, governor, search, sandbox, perms, cfg)

	return &Dependencies{
		Store:           store,
		Handler:         h,
		Auth:            auth,
		Jwt:             jwtSvc,
		SandboxSchoolId: sandboxId,
		Cleanup:         cleanup,
	}, nil
}

func newStore(cfg *config.Config) (forum.Store, func() error, error) {
	switch cfg.Public.StoreBackend {
	case "", "pg":
		storage, err := pg.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		return storage, storage.Cleanup, nil
	case "http":
		if cfg.Public.ForumBaseUrl == "" {
			return nil, nil, fmt.Errorf("store_backend is \"http\" but forum_base_url is empty")
		}
		return forumhttp.New(cfg.Public.ForumBaseUrl), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store_backend: %q", cfg.Public.StoreBackend)
	}
}
