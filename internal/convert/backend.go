// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"

	"github.com/pdiddy/deck-merger/internal/container"
	"github.com/pdiddy/deck-merger/internal/httputil"
	"github.com/pdiddy/deck-merger/internal/secrets"
	"github.com/pdiddy/deck-merger/pkg/types"
)

// New builds the converter selected by cfg.Backend. creds holds the loaded
// secrets; only the gotenberg backend reads them.
func New(ctx context.Context, cfg types.ConverterConfig, creds map[string]string) (Converter, error) {
	switch cfg.Backend {
	case "", types.BackendSoffice:
		return NewSoffice(cfg.SofficePath), nil
	case types.BackendScript:
		return NewScript(cfg.ScriptHost, cfg.ScriptPath), nil
	case types.BackendContainer:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrToolMissing, err)
		}
		return NewContainer(rt, cfg.ContainerImage), nil
	case types.BackendGotenberg:
		user, pass, _ := secrets.BasicAuth(creds)
		return NewGotenberg(httputil.NewClient(cfg.HTTPConfig), cfg.GotenbergURL, user, pass), nil
	default:
		return nil, fmt.Errorf("unknown converter backend %q (want soffice, script, container, or gotenberg)", cfg.Backend)
	}
}
