package oauth

import (
	"fmt"
	"net/http"
	"strings"
)

// ProviderConfig carries the client credentials for one external identity
// provider as loaded from configuration.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

type ProviderArgs struct {
	Config ProviderConfig
	Client *http.Client
}

func decodeProviderArgs(args interface{}) (ProviderArgs, error) {
	if args == nil {
		return ProviderArgs{}, nil
	}
	cfg, ok := args.(ProviderArgs)
	if !ok {
		return ProviderArgs{}, fmt.Errorf("unexpected provider args type %T", args)
	}
	cfg.Config.ClientID = strings.TrimSpace(cfg.Config.ClientID)
	cfg.Config.ClientSecret = strings.TrimSpace(cfg.Config.ClientSecret)
	cfg.Config.RedirectURL = strings.TrimSpace(cfg.Config.RedirectURL)
	scopes := make([]string, 0, len(cfg.Config.Scopes))
	for _, scope := range cfg.Config.Scopes {
		if trimmed := strings.TrimSpace(scope); trimmed != "" {
			scopes = append(scopes, trimmed)
		}
	}
	cfg.Config.Scopes = scopes
	return cfg, nil
}
